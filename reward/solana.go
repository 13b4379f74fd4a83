package reward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPC is the subset of the Solana JSON-RPC client the reward service uses.
// *rpc.Client satisfies it.
type RPC interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Mint             solana.PublicKey
	Pool             solana.PrivateKey // reward pool; signs and pays for claims
	Decimals         uint8
	TokensPer10Coins int
	PollInterval     time.Duration // confirmation polling; default 500ms
}

// Service pays token rewards out of a reward pool account.
type Service struct {
	rpc    RPC
	cfg    ServiceConfig
	logger *slog.Logger
}

// NewService creates a reward service. A zero Mint or nil Pool yields a
// service that reports ErrNotConfigured from claim paths.
func NewService(client RPC, cfg ServiceConfig) *Service {
	if cfg.TokensPer10Coins <= 0 {
		cfg.TokensPer10Coins = TokensPer10Coins
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	return &Service{rpc: client, cfg: cfg, logger: slog.Default().With("component", "reward")}
}

// Ready reports whether a mint and reward pool are loaded.
func (s *Service) Ready() bool {
	return s != nil && !s.cfg.Mint.IsZero() && len(s.cfg.Pool) == 64
}

// Tokens returns the whole-token reward for coins at the configured rate.
func (s *Service) Tokens(coins int) int {
	return CalculateRate(coins, s.cfg.TokensPer10Coins)
}

// BaseUnits returns the reward for coins in the token's smallest unit.
func (s *Service) BaseUnits(coins int) (uint64, error) {
	return ToBaseUnits(s.Tokens(coins), s.cfg.Decimals)
}

// Mint returns the configured mint address.
func (s *Service) Mint() solana.PublicKey {
	return s.cfg.Mint
}

// PoolAddress returns the reward pool's public key.
func (s *Service) PoolAddress() solana.PublicKey {
	if len(s.cfg.Pool) != 64 {
		return solana.PublicKey{}
	}
	return s.cfg.Pool.PublicKey()
}

// Balance returns the SOL balance of addr.
func (s *Service) Balance(ctx context.Context, addr string) (float64, error) {
	pk, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		return 0, fmt.Errorf("parsing address %q: %w", addr, err)
	}
	out, err := s.rpc.GetBalance(ctx, pk, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("getting balance: %w", err)
	}
	return float64(out.Value) / float64(solana.LAMPORTS_PER_SOL), nil
}

// TokenBalance returns addr's reward token balance. It is 0 without error when
// no mint is configured or addr has no token account.
func (s *Service) TokenBalance(ctx context.Context, addr string) (float64, error) {
	if s.cfg.Mint.IsZero() {
		return 0, nil
	}
	ata, err := s.associatedAccount(addr)
	if err != nil {
		return 0, err
	}
	out, err := s.rpc.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		if isAccountMissing(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("getting token balance: %w", err)
	}
	if out == nil || out.Value == nil {
		return 0, nil
	}
	if out.Value.UiAmount != nil {
		return *out.Value.UiAmount, nil
	}
	return strconv.ParseFloat(out.Value.UiAmountString, 64)
}

// HasTokenAccount reports whether addr's associated token account exists.
func (s *Service) HasTokenAccount(ctx context.Context, addr string) (bool, error) {
	if s.cfg.Mint.IsZero() {
		return false, nil
	}
	ata, err := s.associatedAccount(addr)
	if err != nil {
		return false, err
	}
	return s.accountExists(ctx, ata)
}

// BuildClaimTx builds an unsigned transfer of the reward for coins from the
// pool's token account to addr's, creating addr's token account if missing.
// The pool pays fees.
func (s *Service) BuildClaimTx(ctx context.Context, addr string, coins int) (*solana.Transaction, error) {
	if !s.Ready() {
		return nil, ErrNotConfigured
	}
	amount, err := s.BaseUnits(coins)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, ErrNoReward
	}

	user, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		return nil, fmt.Errorf("parsing address %q: %w", addr, err)
	}
	pool := s.cfg.Pool.PublicKey()

	userATA, _, err := solana.FindAssociatedTokenAddress(user, s.cfg.Mint)
	if err != nil {
		return nil, fmt.Errorf("deriving user token account: %w", err)
	}
	poolATA, _, err := solana.FindAssociatedTokenAddress(pool, s.cfg.Mint)
	if err != nil {
		return nil, fmt.Errorf("deriving pool token account: %w", err)
	}

	var instrs []solana.Instruction
	exists, err := s.accountExists(ctx, userATA)
	if err != nil {
		return nil, err
	}
	if !exists {
		instrs = append(instrs, associatedtokenaccount.NewCreateInstruction(pool, user, s.cfg.Mint).Build())
	}
	instrs = append(instrs, token.NewTransferInstruction(amount, poolATA, userATA, pool, nil).Build())

	bh, err := s.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("getting blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instrs, bh.Value.Blockhash, solana.TransactionPayer(pool))
	if err != nil {
		return nil, fmt.Errorf("building transaction: %w", err)
	}
	return tx, nil
}

// Claim transfers the reward for coins to addr, waits for confirmation and
// returns the transaction signature. Once the transaction is sent its
// signature is returned even alongside an error, since it may still land.
func (s *Service) Claim(ctx context.Context, addr string, coins int) (string, error) {
	tx, err := s.BuildClaimTx(ctx, addr, coins)
	if err != nil {
		return "", err
	}

	pool := s.cfg.Pool
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pool.PublicKey()) {
			return &pool
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("signing claim: %w", err)
	}

	sig, err := s.rpc.SendTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("sending claim: %w", err)
	}
	s.logger.Info("claim sent", "wallet", addr, "coins", coins, "signature", sig.String())

	if err := s.Confirm(ctx, sig); err != nil {
		return sig.String(), err
	}
	return sig.String(), nil
}

// ErrTxFailed marks a transaction the chain executed and rejected. Nothing
// was transferred, so the claim may be sent again.
var ErrTxFailed = errors.New("transaction failed on chain")

// TxStatus is the chain's view of a sent transaction.
type TxStatus int

const (
	TxUnknown   TxStatus = iota // not found, or below confirmed commitment
	TxConfirmed                 // landed at confirmed or finalized commitment
	TxFailed                    // landed with an error
)

func (t TxStatus) String() string {
	switch t {
	case TxConfirmed:
		return "confirmed"
	case TxFailed:
		return "failed"
	}
	return "unknown"
}

// Confirm polls sig until it reaches confirmed commitment, fails, or ctx ends.
// A transaction the chain rejected yields an error wrapping ErrTxFailed.
func (s *Service) Confirm(ctx context.Context, sig solana.Signature) error {
	return waitConfirmed(ctx, s.rpc, sig, s.cfg.PollInterval, s.logger)
}

// SignatureStatus looks up a transaction sent earlier, searching the chain's
// full history rather than only recent blocks.
func (s *Service) SignatureStatus(ctx context.Context, sig string) (TxStatus, error) {
	parsed, err := solana.SignatureFromBase58(sig)
	if err != nil {
		return TxUnknown, fmt.Errorf("parsing signature %q: %w", sig, err)
	}
	out, err := s.rpc.GetSignatureStatuses(ctx, true, parsed)
	if err != nil {
		return TxUnknown, fmt.Errorf("getting status of %s: %w", sig, err)
	}
	st, _ := txStatus(out)
	return st, nil
}

// txStatus reduces a status reply for one signature. The second result is the
// chain's error for a failed transaction.
func txStatus(out *rpc.GetSignatureStatusesResult) (TxStatus, any) {
	if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
		return TxUnknown, nil
	}
	st := out.Value[0]
	if st.Err != nil {
		return TxFailed, st.Err
	}
	switch st.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return TxConfirmed, nil
	}
	return TxUnknown, nil
}

func waitConfirmed(ctx context.Context, client RPC, sig solana.Signature, every time.Duration, logger *slog.Logger) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		out, err := client.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			logger.Debug("signature status", "signature", sig.String(), "error", err)
		} else {
			switch st, chainErr := txStatus(out); st {
			case TxFailed:
				return fmt.Errorf("%w: %s: %v", ErrTxFailed, sig, chainErr)
			case TxConfirmed:
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for confirmation of %s: %w", sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *Service) associatedAccount(addr string) (solana.PublicKey, error) {
	owner, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("parsing address %q: %w", addr, err)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(owner, s.cfg.Mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("deriving token account: %w", err)
	}
	return ata, nil
}

func (s *Service) accountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	out, err := s.rpc.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("getting account info: %w", err)
	}
	return out != nil && out.Value != nil, nil
}

// isAccountMissing matches the RPC error for a token account that does not exist.
func isAccountMissing(err error) bool {
	return errors.Is(err, rpc.ErrNotFound) || strings.Contains(err.Error(), "could not find account")
}
