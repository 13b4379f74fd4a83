package ledger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Receipt statuses. An unconfirmed receipt keeps the signature of a transfer
// that was sent but neither confirmed nor rejected before the wait ended.
const (
	StatusPending     = "pending"
	StatusConfirmed   = "confirmed"
	StatusUnconfirmed = "unconfirmed"
	StatusFailed      = "failed"
)

// Receipt records a claim for one run nonce.
type Receipt struct {
	Nonce     string    `json:"nonce"`
	Wallet    string    `json:"wallet"`
	Coins     int       `json:"coins"`
	Amount    int64     `json:"amount"`
	Signature string    `json:"signature,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReceiptDB stores claim receipts.
type ReceiptDB interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	GetReceiptForUpdate(ctx context.Context, tx *sql.Tx, nonce string) (Receipt, error)
	InsertReceipt(ctx context.Context, tx *sql.Tx, r Receipt) error
	SetPending(ctx context.Context, tx *sql.Tx, nonce, wallet string) error
	SettleReceipt(ctx context.Context, tx *sql.Tx, nonce, status string) error
	FinishReceipt(ctx context.Context, nonce, status, signature string) error
	GetReceipt(ctx context.Context, nonce string) (Receipt, error)
	Ping(ctx context.Context) error
}

// Connect opens and pings the Postgres database.
func Connect(ctx context.Context, cfg *Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.DatabaseUser,
		cfg.DatabasePassword,
		cfg.DatabaseName,
		cfg.DatabaseSSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

type receiptDBImplementation struct {
	db *sql.DB
}

// NewReceiptDB returns a ReceiptDB over dbConn.
func NewReceiptDB(dbConn *sql.DB) ReceiptDB {
	return &receiptDBImplementation{db: dbConn}
}

func (r *receiptDBImplementation) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

const receiptColumns = "nonce, wallet, coins, amount, signature, status, created_at"

func (r *receiptDBImplementation) GetReceiptForUpdate(ctx context.Context, tx *sql.Tx, nonce string) (Receipt, error) {
	row := tx.QueryRowContext(ctx, "SELECT "+receiptColumns+" FROM claim_receipts WHERE nonce=$1 FOR UPDATE", nonce)
	return scanReceipt(row, nonce)
}

func (r *receiptDBImplementation) InsertReceipt(ctx context.Context, tx *sql.Tx, rc Receipt) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO claim_receipts (nonce, wallet, coins, amount, status, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		rc.Nonce, rc.Wallet, rc.Coins, rc.Amount, rc.Status, rc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert receipt %s: %w", rc.Nonce, err)
	}
	return nil
}

func (r *receiptDBImplementation) SetPending(ctx context.Context, tx *sql.Tx, nonce, wallet string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE claim_receipts SET status=$1, wallet=$2, signature='', updated_at=now() WHERE nonce=$3",
		StatusPending, wallet, nonce)
	if err != nil {
		return fmt.Errorf("failed to reset receipt %s: %w", nonce, err)
	}
	return nil
}

func (r *receiptDBImplementation) SettleReceipt(ctx context.Context, tx *sql.Tx, nonce, status string) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE claim_receipts SET status=$1, updated_at=now() WHERE nonce=$2",
		status, nonce)
	if err != nil {
		return fmt.Errorf("failed to settle receipt %s: %w", nonce, err)
	}
	return nil
}

func (r *receiptDBImplementation) FinishReceipt(ctx context.Context, nonce, status, signature string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE claim_receipts SET status=$1, signature=$2, updated_at=now() WHERE nonce=$3",
		status, signature, nonce)
	if err != nil {
		return fmt.Errorf("failed to update receipt %s: %w", nonce, err)
	}
	return nil
}

func (r *receiptDBImplementation) GetReceipt(ctx context.Context, nonce string) (Receipt, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+receiptColumns+" FROM claim_receipts WHERE nonce=$1", nonce)
	return scanReceipt(row, nonce)
}

func (r *receiptDBImplementation) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanReceipt(row *sql.Row, nonce string) (Receipt, error) {
	var rc Receipt
	err := row.Scan(&rc.Nonce, &rc.Wallet, &rc.Coins, &rc.Amount, &rc.Signature, &rc.Status, &rc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Receipt{}, ErrReceiptNotFound
	}
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to get receipt %s: %w", nonce, err)
	}
	return rc, nil
}
