package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"github.com/pthm-cable/poopdodge/reward"
)

const testWallet = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

type nopLogger struct{}

func (nopLogger) Info(string, ...zap.Field)  {}
func (nopLogger) Warn(string, ...zap.Field)  {}
func (nopLogger) Error(string, ...zap.Field) {}
func (nopLogger) Sync() error                { return nil }

type fakeTransfer struct {
	mu    sync.Mutex
	calls int
	err   error
	sent  string // signature returned with err; empty when nothing was sent

	status    reward.TxStatus
	statusErr error
	lookups   []string
}

func (f *fakeTransfer) Claim(_ context.Context, _ string, _ int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.sent, f.err
	}
	return "sig-1", nil
}

func (f *fakeTransfer) BaseUnits(coins int) (uint64, error) {
	return reward.ToBaseUnits(reward.Calculate(coins), 9)
}

func (f *fakeTransfer) SignatureStatus(_ context.Context, sig string) (reward.TxStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, sig)
	return f.status, f.statusErr
}

// newMockService returns a claim service over sqlmock whose clock is elapsed
// past the issue time of the returned ticket.
func newMockService(t *testing.T, elapsed time.Duration) (*claimService, sqlmock.Sqlmock, *fakeTransfer, string, Ticket) {
	t.Helper()
	dbConn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { dbConn.Close() })

	issuer := NewTicketIssuer("test-secret", time.Hour)
	token, ticket, err := issuer.Issue()
	if err != nil {
		t.Fatal(err)
	}

	tr := &fakeTransfer{}
	svc := NewClaimService(NewReceiptDB(dbConn), issuer, tr, nopLogger{}, 2*time.Second, time.Second).(*claimService)
	svc.now = func() time.Time { return ticket.IssuedAt.Add(elapsed) }
	return svc, mock, tr, token, ticket
}

var receiptCols = []string{"nonce", "wallet", "coins", "amount", "signature", "status", "created_at"}

func TestClaimService_FirstClaimPays(t *testing.T) {
	svc, mock, tr, token, ticket := newMockService(t, 60*time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM claim_receipts WHERE nonce=\\$1 FOR UPDATE").
		WithArgs(ticket.Nonce).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO claim_receipts").
		WithArgs(ticket.Nonce, testWallet, 25, int64(2_000_000_000), StatusPending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE claim_receipts SET status=\\$1, signature=\\$2, updated_at=now\\(\\) WHERE nonce=\\$3").
		WithArgs(StatusConfirmed, "sig-1", ticket.Nonce).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rc, err := svc.Claim(context.Background(), ClaimRequest{Ticket: token, Wallet: testWallet, Coins: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.Status != StatusConfirmed || rc.Signature != "sig-1" || rc.Amount != 2_000_000_000 {
		t.Errorf("receipt = %+v", rc)
	}
	if tr.calls != 1 {
		t.Errorf("transfers = %d, want 1", tr.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestClaimService_DuplicateReturnsStoredReceipt(t *testing.T) {
	svc, mock, tr, token, ticket := newMockService(t, 60*time.Second)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM claim_receipts WHERE nonce=\\$1 FOR UPDATE").
		WithArgs(ticket.Nonce).
		WillReturnRows(sqlmock.NewRows(receiptCols).
			AddRow(ticket.Nonce, testWallet, 25, int64(2_000_000_000), "sig-0", StatusConfirmed, created))
	mock.ExpectRollback()

	rc, err := svc.Claim(context.Background(), ClaimRequest{Ticket: token, Wallet: testWallet, Coins: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.Signature != "sig-0" || rc.Status != StatusConfirmed {
		t.Errorf("receipt = %+v, want stored one", rc)
	}
	if tr.calls != 0 {
		t.Errorf("duplicate claim transferred %d times", tr.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestClaimService_FailedReceiptIsRetried(t *testing.T) {
	svc, mock, tr, token, ticket := newMockService(t, 60*time.Second)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM claim_receipts WHERE nonce=\\$1 FOR UPDATE").
		WithArgs(ticket.Nonce).
		WillReturnRows(sqlmock.NewRows(receiptCols).
			AddRow(ticket.Nonce, testWallet, 12, int64(1_000_000_000), "", StatusFailed, created))
	mock.ExpectExec("UPDATE claim_receipts SET status=\\$1, wallet=\\$2").
		WithArgs(StatusPending, testWallet, ticket.Nonce).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE claim_receipts SET status=\\$1, signature=\\$2").
		WithArgs(StatusConfirmed, "sig-1", ticket.Nonce).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rc, err := svc.Claim(context.Background(), ClaimRequest{Ticket: token, Wallet: testWallet, Coins: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.Status != StatusConfirmed || tr.calls != 1 {
		t.Errorf("receipt = %+v, transfers = %d", rc, tr.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestClaimService_UnconfirmedTransferIsNotResent(t *testing.T) {
	svc, mock, tr, token, ticket := newMockService(t, 60*time.Second)
	tr.err = fmt.Errorf("waiting for confirmation of sig-landed: %w", context.DeadlineExceeded)
	tr.sent = "sig-landed"
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	req := ClaimRequest{Ticket: token, Wallet: testWallet, Coins: 25}

	// first claim sends, then times out waiting
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FOR UPDATE").
		WithArgs(ticket.Nonce).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO claim_receipts").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE claim_receipts SET status=\\$1, signature=\\$2").
		WithArgs(StatusUnconfirmed, "sig-landed", ticket.Nonce).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rc, err := svc.Claim(context.Background(), req)
	if !errors.Is(err, ErrClaimUnconfirmed) {
		t.Fatalf("err = %v, want ErrClaimUnconfirmed", err)
	}
	if rc.Status != StatusUnconfirmed || rc.Signature != "sig-landed" {
		t.Errorf("receipt = %+v, want unconfirmed with signature", rc)
	}

	// retry while the chain has not settled it
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FOR UPDATE").
		WithArgs(ticket.Nonce).
		WillReturnRows(sqlmock.NewRows(receiptCols).
			AddRow(ticket.Nonce, testWallet, 25, int64(2_000_000_000), "sig-landed", StatusUnconfirmed, created))
	mock.ExpectExec("UPDATE claim_receipts SET status=\\$1, updated_at=now\\(\\) WHERE nonce=\\$2").
		WithArgs(StatusUnconfirmed, ticket.Nonce).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if _, err := svc.Claim(context.Background(), req); !errors.Is(err, ErrClaimUnconfirmed) {
		t.Fatalf("retry err = %v, want ErrClaimUnconfirmed", err)
	}

	// retry after the first transfer landed
	tr.status = reward.TxConfirmed
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FOR UPDATE").
		WithArgs(ticket.Nonce).
		WillReturnRows(sqlmock.NewRows(receiptCols).
			AddRow(ticket.Nonce, testWallet, 25, int64(2_000_000_000), "sig-landed", StatusUnconfirmed, created))
	mock.ExpectExec("UPDATE claim_receipts SET status=\\$1, updated_at").
		WithArgs(StatusConfirmed, ticket.Nonce).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rc, err = svc.Claim(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.Status != StatusConfirmed || rc.Signature != "sig-landed" {
		t.Errorf("receipt = %+v, want confirmed with the first signature", rc)
	}

	if tr.calls != 1 {
		t.Errorf("transfers sent for one run = %d, want 1", tr.calls)
	}
	if len(tr.lookups) != 2 || tr.lookups[0] != "sig-landed" {
		t.Errorf("status lookups = %v", tr.lookups)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestClaimService_RejectedTransferIsRetried(t *testing.T) {
	svc, mock, tr, token, ticket := newMockService(t, 60*time.Second)
	tr.status = reward.TxFailed
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FOR UPDATE").
		WithArgs(ticket.Nonce).
		WillReturnRows(sqlmock.NewRows(receiptCols).
			AddRow(ticket.Nonce, testWallet, 12, int64(1_000_000_000), "sig-0", StatusUnconfirmed, created))
	mock.ExpectExec("UPDATE claim_receipts SET status=\\$1, wallet=\\$2").
		WithArgs(StatusPending, testWallet, ticket.Nonce).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE claim_receipts SET status=\\$1, signature=\\$2").
		WithArgs(StatusConfirmed, "sig-1", ticket.Nonce).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rc, err := svc.Claim(context.Background(), ClaimRequest{Ticket: token, Wallet: testWallet, Coins: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.Status != StatusConfirmed || rc.Signature != "sig-1" || tr.calls != 1 {
		t.Errorf("receipt = %+v, transfers = %d", rc, tr.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestClaimService_StatusLookupErrorDoesNotPay(t *testing.T) {
	svc, mock, tr, token, ticket := newMockService(t, 60*time.Second)
	tr.statusErr = errors.New("rpc unavailable")
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FOR UPDATE").
		WithArgs(ticket.Nonce).
		WillReturnRows(sqlmock.NewRows(receiptCols).
			AddRow(ticket.Nonce, testWallet, 12, int64(1_000_000_000), "sig-0", StatusUnconfirmed, created))
	mock.ExpectRollback()

	rc, err := svc.Claim(context.Background(), ClaimRequest{Ticket: token, Wallet: testWallet, Coins: 12})
	if !errors.Is(err, ErrClaimUnconfirmed) {
		t.Fatalf("err = %v, want ErrClaimUnconfirmed", err)
	}
	if rc.Signature != "sig-0" || tr.calls != 0 {
		t.Errorf("receipt = %+v, transfers = %d", rc, tr.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReceiptStatus(t *testing.T) {
	tests := []struct {
		name string
		sig  string
		err  error
		want string
	}{
		{"paid", "sig", nil, StatusConfirmed},
		{"never sent", "", errors.New("sending claim: blockhash not found"), StatusFailed},
		{"rejected on chain", "sig", fmt.Errorf("%w: sig: InsufficientFunds", reward.ErrTxFailed), StatusFailed},
		{"wait timed out", "sig", fmt.Errorf("waiting for confirmation of sig: %w", context.DeadlineExceeded), StatusUnconfirmed},
		{"wait cancelled", "sig", context.Canceled, StatusUnconfirmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := receiptStatus(tt.sig, tt.err); got != tt.want {
				t.Errorf("receiptStatus = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClaimService_TransferFailureMarksReceipt(t *testing.T) {
	svc, mock, tr, token, ticket := newMockService(t, 60*time.Second)
	tr.err = errors.New("insufficient funds")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FOR UPDATE").
		WithArgs(ticket.Nonce).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO claim_receipts").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectExec("UPDATE claim_receipts SET status=\\$1, signature=\\$2").
		WithArgs(StatusFailed, "", ticket.Nonce).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rc, err := svc.Claim(context.Background(), ClaimRequest{Ticket: token, Wallet: testWallet, Coins: 10})
	if err == nil {
		t.Fatal("expected transfer error")
	}
	if rc.Status != StatusFailed || rc.Nonce != ticket.Nonce {
		t.Errorf("receipt = %+v", rc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestClaimService_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		ticket  func(valid string) string
		coins   int
		wantErr error
	}{
		{"bad ticket", time.Minute, func(string) string { return "garbage" }, 50, ErrInvalidTicket},
		{"tampered ticket", time.Minute, func(v string) string { return v + "x" }, 50, ErrInvalidTicket},
		{"zero reward", time.Minute, func(v string) string { return v }, 9, reward.ErrNoReward},
		// 10s of play allows at most 10/2+1 = 6 coins
		{"implausible", 10 * time.Second, func(v string) string { return v }, 20, ErrImplausibleClaim},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock, tr, token, _ := newMockService(t, tt.elapsed)

			_, err := svc.Claim(context.Background(), ClaimRequest{Ticket: tt.ticket(token), Wallet: testWallet, Coins: tt.coins})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if tr.calls != 0 {
				t.Error("rejected claim transferred")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("rejected claim touched the database: %v", err)
			}
		})
	}
}

func TestClaimService_MaxCoins(t *testing.T) {
	svc := &claimService{bonusInterval: 2 * time.Second}
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{-time.Second, 1},
		{0, 1},
		{1999 * time.Millisecond, 1},
		{2 * time.Second, 2},
		{60 * time.Second, 31},
	}
	for _, tt := range tests {
		if got := svc.maxCoins(tt.elapsed); got != tt.want {
			t.Errorf("maxCoins(%v) = %d, want %d", tt.elapsed, got, tt.want)
		}
	}
}

func TestClaimService_ReceiptNotFound(t *testing.T) {
	svc, mock, _, _, _ := newMockService(t, 0)
	mock.ExpectQuery("SELECT (.+) FROM claim_receipts WHERE nonce=\\$1$").
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	if _, err := svc.Receipt(context.Background(), "nope"); !errors.Is(err, ErrReceiptNotFound) {
		t.Errorf("err = %v, want ErrReceiptNotFound", err)
	}
}
