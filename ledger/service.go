// Package ledger issues run tickets and pays token rewards at most once per run.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/pthm-cable/poopdodge/reward"
)

var (
	ErrInvalidTicket    = errors.New("invalid or expired ticket")
	ErrImplausibleClaim = errors.New("coin count not plausible for run length")
	ErrReceiptNotFound  = errors.New("receipt not found")
	// ErrClaimUnconfirmed is returned while a sent transfer has not landed.
	// The run is not paid again until the chain settles it.
	ErrClaimUnconfirmed = errors.New("claim transfer not yet confirmed")
)

// Transferer pays the reward for coins to a wallet. Claim returns the
// signature of any transaction it sent, even together with an error.
type Transferer interface {
	Claim(ctx context.Context, addr string, coins int) (string, error)
	BaseUnits(coins int) (uint64, error)
	SignatureStatus(ctx context.Context, sig string) (reward.TxStatus, error)
}

// ClaimRequest is the body of POST /api/claims.
type ClaimRequest struct {
	Ticket string `json:"ticket"`
	Wallet string `json:"wallet"`
	Coins  int    `json:"coins"`
}

// ClaimService handles run tickets and claims.
type ClaimService interface {
	StartRun(ctx context.Context) (string, error)
	Claim(ctx context.Context, req ClaimRequest) (Receipt, error)
	Receipt(ctx context.Context, nonce string) (Receipt, error)
	Healthy(ctx context.Context) error
}

type claimService struct {
	db            ReceiptDB
	tickets       *TicketIssuer
	transfer      Transferer
	log           Logger
	bonusInterval time.Duration
	timeout       time.Duration
	now           func() time.Time
}

// NewClaimService wires the claim service.
func NewClaimService(db ReceiptDB, tickets *TicketIssuer, transfer Transferer, log Logger, bonusInterval, timeout time.Duration) ClaimService {
	if bonusInterval <= 0 {
		bonusInterval = 2 * time.Second
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &claimService{
		db:            db,
		tickets:       tickets,
		transfer:      transfer,
		log:           log,
		bonusInterval: bonusInterval,
		timeout:       timeout,
		now:           time.Now,
	}
}

func (s *claimService) StartRun(ctx context.Context) (string, error) {
	token, t, err := s.tickets.Issue()
	if err != nil {
		return "", err
	}
	s.log.Info("run ticket issued", zap.String("nonce", t.Nonce))
	return token, nil
}

// maxCoins bounds the coins a run of the given length can have collected.
func (s *claimService) maxCoins(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	return int(elapsed/s.bonusInterval) + 1
}

func (s *claimService) Claim(ctx context.Context, req ClaimRequest) (Receipt, error) {
	t, err := s.tickets.Verify(req.Ticket)
	if err != nil {
		return Receipt{}, err
	}
	amount, err := s.transfer.BaseUnits(req.Coins)
	if err != nil {
		return Receipt{}, err
	}
	if amount == 0 {
		return Receipt{}, reward.ErrNoReward
	}
	if amount > math.MaxInt64 {
		return Receipt{}, fmt.Errorf("%w: %d base units", reward.ErrAmountOverflow, amount)
	}
	if limit := s.maxCoins(s.now().Sub(t.IssuedAt)); req.Coins > limit {
		s.log.Warn("implausible claim",
			zap.String("nonce", t.Nonce), zap.Int("coins", req.Coins), zap.Int("max", limit))
		return Receipt{}, fmt.Errorf("%w: %d coins, at most %d", ErrImplausibleClaim, req.Coins, limit)
	}

	rc, proceed, err := s.reserve(ctx, t.Nonce, req, int64(amount))
	if err != nil || !proceed {
		return rc, err
	}

	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	sig, err := s.transfer.Claim(tctx, rc.Wallet, rc.Coins)

	rc.Signature = sig
	rc.Status = receiptStatus(sig, err)
	switch rc.Status {
	case StatusFailed:
		s.log.Error("transfer failed", zap.String("nonce", rc.Nonce), zap.String("wallet", rc.Wallet), zap.Error(err))
	case StatusUnconfirmed:
		s.log.Warn("transfer sent but not confirmed",
			zap.String("nonce", rc.Nonce), zap.String("signature", sig), zap.Error(err))
		err = fmt.Errorf("%w: %w", ErrClaimUnconfirmed, err)
	}
	if uerr := s.db.FinishReceipt(context.WithoutCancel(ctx), rc.Nonce, rc.Status, sig); uerr != nil {
		s.log.Error("failed to record transfer", zap.String("nonce", rc.Nonce), zap.Error(uerr))
		if err == nil {
			err = uerr
		}
	}
	if err != nil {
		return rc, fmt.Errorf("transfer for %s: %w", rc.Nonce, err)
	}

	s.log.Info("claim paid",
		zap.String("nonce", rc.Nonce), zap.String("wallet", rc.Wallet),
		zap.Int("coins", rc.Coins), zap.String("signature", sig))
	return rc, nil
}

// receiptStatus maps a transfer outcome to a receipt status. Only a transfer
// that was never sent or that the chain rejected counts as failed.
func receiptStatus(sig string, err error) string {
	switch {
	case err == nil:
		return StatusConfirmed
	case sig == "" || errors.Is(err, reward.ErrTxFailed):
		return StatusFailed
	}
	return StatusUnconfirmed
}

// reserve locks the nonce's receipt. It returns the stored receipt without
// proceeding when the nonce was already claimed, and a pending receipt to pay
// otherwise. A receipt holding the signature of an unsettled transfer is
// resolved against the chain first; failed receipts are retried.
func (s *claimService) reserve(ctx context.Context, nonce string, req ClaimRequest, amount int64) (Receipt, bool, error) {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return Receipt{}, false, err
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := s.db.GetReceiptForUpdate(ctx, tx, nonce)
	switch {
	case errors.Is(err, ErrReceiptNotFound):
	case err != nil:
		return Receipt{}, false, err
	case existing.Signature != "" && (existing.Status == StatusUnconfirmed || existing.Status == StatusFailed):
		return s.resolve(ctx, tx, existing, req.Wallet)
	case existing.Status == StatusFailed:
		return s.reopen(ctx, tx, existing, req.Wallet)
	default:
		s.log.Info("duplicate claim", zap.String("nonce", nonce), zap.String("status", existing.Status))
		return existing, false, nil
	}

	rc := Receipt{
		Nonce:     nonce,
		Wallet:    req.Wallet,
		Coins:     req.Coins,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.InsertReceipt(ctx, tx, rc); err != nil {
		return Receipt{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return Receipt{}, false, fmt.Errorf("failed to commit: %w", err)
	}
	return rc, true, nil
}

// resolve settles a receipt whose transfer was sent earlier. A transfer that
// landed finishes the receipt, one the chain rejected reopens it for payment,
// and anything else leaves it unconfirmed without sending again.
func (s *claimService) resolve(ctx context.Context, tx *sql.Tx, rc Receipt, wallet string) (Receipt, bool, error) {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	st, err := s.transfer.SignatureStatus(sctx, rc.Signature)
	if err != nil {
		s.log.Warn("signature status unavailable", zap.String("nonce", rc.Nonce), zap.String("signature", rc.Signature), zap.Error(err))
		return rc, false, fmt.Errorf("%w: %s: %w", ErrClaimUnconfirmed, rc.Signature, err)
	}

	switch st {
	case reward.TxConfirmed:
		rc.Status = StatusConfirmed
	case reward.TxFailed:
		s.log.Info("rejected transfer reopened", zap.String("nonce", rc.Nonce), zap.String("signature", rc.Signature))
		return s.reopen(ctx, tx, rc, wallet)
	default:
		// TODO: reopen once the blockhash of the lost transaction has expired
		rc.Status = StatusUnconfirmed
	}

	if err := s.db.SettleReceipt(ctx, tx, rc.Nonce, rc.Status); err != nil {
		return Receipt{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return Receipt{}, false, fmt.Errorf("failed to commit: %w", err)
	}
	if rc.Status != StatusConfirmed {
		return rc, false, fmt.Errorf("%w: %s", ErrClaimUnconfirmed, rc.Signature)
	}
	s.log.Info("unconfirmed claim landed", zap.String("nonce", rc.Nonce), zap.String("signature", rc.Signature))
	return rc, false, nil
}

// reopen resets a failed receipt to pending so it can be paid.
func (s *claimService) reopen(ctx context.Context, tx *sql.Tx, rc Receipt, wallet string) (Receipt, bool, error) {
	if err := s.db.SetPending(ctx, tx, rc.Nonce, wallet); err != nil {
		return Receipt{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return Receipt{}, false, fmt.Errorf("failed to commit: %w", err)
	}
	rc.Status = StatusPending
	rc.Wallet = wallet
	rc.Signature = ""
	return rc, true, nil
}

func (s *claimService) Receipt(ctx context.Context, nonce string) (Receipt, error) {
	return s.db.GetReceipt(ctx, nonce)
}

func (s *claimService) Healthy(ctx context.Context) error {
	return s.db.Ping(ctx)
}
