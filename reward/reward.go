// Package reward converts in-game coins into SPL token payouts.
package reward

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"os"

	"github.com/gagliardetto/solana-go"
)

// Defaults used when no rate or decimals are configured.
const (
	TokensPer10Coins = 1
	Decimals         = 9
)

var (
	// ErrNoReward is returned when a coin count earns zero tokens.
	ErrNoReward = errors.New("reward: collect at least 10 coins to earn tokens")
	// ErrNotConfigured is returned when no mint or reward pool is loaded.
	ErrNotConfigured = errors.New("reward: token system not initialized")
	// ErrAmountOverflow is returned when a reward does not fit in a token amount.
	ErrAmountOverflow = errors.New("reward: amount overflows uint64")
)

// MaxDecimals is the largest decimals for which one whole token fits in a uint64.
const MaxDecimals = 19

// Calculate returns the whole tokens earned for coins at the default rate.
func Calculate(coins int) int {
	return CalculateRate(coins, TokensPer10Coins)
}

// CalculateRate returns floor(coins/10) * per10.
func CalculateRate(coins, per10 int) int {
	if coins <= 0 || per10 <= 0 {
		return 0
	}
	return coins / 10 * per10
}

// BaseUnits returns the reward for coins in the token's smallest unit.
func BaseUnits(coins int, decimals uint8) (uint64, error) {
	return ToBaseUnits(Calculate(coins), decimals)
}

// ToBaseUnits scales whole tokens by 10^decimals. It returns
// ErrAmountOverflow when the result does not fit in a uint64.
func ToBaseUnits(tokens int, decimals uint8) (uint64, error) {
	if tokens <= 0 {
		return 0, nil
	}
	units := uint64(tokens)
	for i := uint8(0); i < decimals; i++ {
		hi, lo := bits.Mul64(units, 10)
		if hi != 0 {
			return 0, fmt.Errorf("%w: %d tokens at %d decimals", ErrAmountOverflow, tokens, decimals)
		}
		units = lo
	}
	return units, nil
}

// TokenConfig is the token-config.json written by setup-token.
type TokenConfig struct {
	Mint       string `json:"mint"`
	RewardPool string `json:"rewardPool"`
	Decimals   uint8  `json:"decimals"`
	Network    string `json:"network"`
}

// LoadTokenConfig reads and validates a token config file.
func LoadTokenConfig(path string) (TokenConfig, error) {
	var tc TokenConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return tc, fmt.Errorf("reading token config: %w", err)
	}
	if err := json.Unmarshal(data, &tc); err != nil {
		return tc, fmt.Errorf("parsing token config %s: %w", path, err)
	}
	if _, err := solana.PublicKeyFromBase58(tc.Mint); err != nil {
		return tc, fmt.Errorf("token config mint %q: %w", tc.Mint, err)
	}
	if tc.Decimals > MaxDecimals {
		return tc, fmt.Errorf("token config decimals %d: at most %d supported", tc.Decimals, MaxDecimals)
	}
	return tc, nil
}

// WriteTokenConfig writes tc as indented JSON.
func WriteTokenConfig(path string, tc TokenConfig) error {
	data, err := json.MarshalIndent(tc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling token config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing token config: %w", err)
	}
	return nil
}

// LoadKeypair reads a solana-keygen style JSON array of 64 secret key bytes.
func LoadKeypair(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading keypair %s: %w", path, err)
	}
	return key, nil
}

// WriteKeypair writes key in the solana-keygen JSON array format.
func WriteKeypair(path string, key solana.PrivateKey) error {
	// []byte would marshal as base64
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	data, err := json.Marshal(ints)
	if err != nil {
		return fmt.Errorf("marshaling keypair: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing keypair: %w", err)
	}
	return nil
}
