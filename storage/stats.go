package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Fixed keys of the persisted values.
const (
	KeyHighScore  = "@poop_dodge_high_score"
	KeyTotalCoins = "@poop_dodge_total_coins"
	KeyWallet     = "@poop_dodge_wallet"
)

// Stats are the persisted lifetime numbers.
type Stats struct {
	HighScore  int
	TotalCoins int
}

// LoadStats reads stats from kv. Missing keys are zero. On a malformed value
// the other value is still returned along with the error.
func LoadStats(kv KV) (Stats, error) {
	var st Stats
	var errs []error

	if v, ok := kv.Get(KeyHighScore); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("high score %q: %w", v, err))
		} else {
			st.HighScore = n
		}
	}
	if v, ok := kv.Get(KeyTotalCoins); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("total coins %q: %w", v, err))
		} else {
			st.TotalCoins = n
		}
	}
	return st, errors.Join(errs...)
}

// SaveStats writes both values as decimal strings.
func SaveStats(kv KV, st Stats) error {
	if err := kv.Set(KeyHighScore, strconv.Itoa(st.HighScore)); err != nil {
		return fmt.Errorf("saving high score: %w", err)
	}
	if err := kv.Set(KeyTotalCoins, strconv.Itoa(st.TotalCoins)); err != nil {
		return fmt.Errorf("saving total coins: %w", err)
	}
	return nil
}

type walletRecord struct {
	PublicKey string `json:"publicKey"`
}

// LoadWallet returns the persisted wallet address, or "" when none is stored.
func LoadWallet(kv KV) (string, error) {
	v, ok := kv.Get(KeyWallet)
	if !ok || v == "" {
		return "", nil
	}
	var rec walletRecord
	if err := json.Unmarshal([]byte(v), &rec); err != nil {
		return "", fmt.Errorf("parsing wallet record: %w", err)
	}
	return rec.PublicKey, nil
}

// SaveWallet persists addr. An empty addr removes the record.
func SaveWallet(kv KV, addr string) error {
	if addr == "" {
		return kv.Delete(KeyWallet)
	}
	raw, err := json.Marshal(walletRecord{PublicKey: addr})
	if err != nil {
		return err
	}
	return kv.Set(KeyWallet, string(raw))
}
