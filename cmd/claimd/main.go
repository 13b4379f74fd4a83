// Command claimd issues run tickets and pays token rewards at most once per run.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pthm-cable/poopdodge/ledger"
	"github.com/pthm-cable/poopdodge/reward"
)

func main() {
	cfg, err := ledger.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := ledger.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("claimd stopped", zap.Error(err))
	}
}

func run(cfg *ledger.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := ledger.Connect(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer dbConn.Close()

	if err := ledger.Migrate(dbConn); err != nil {
		return err
	}

	transfer, err := newRewardService(cfg)
	if err != nil {
		return err
	}
	logger.Info("reward pool loaded",
		zap.String("mint", transfer.Mint().String()),
		zap.String("pool", transfer.PoolAddress().String()),
		zap.String("rpc", cfg.RPCURL))

	claims := ledger.NewClaimService(
		ledger.NewReceiptDB(dbConn),
		ledger.NewTicketIssuer(cfg.JWTSecret, cfg.TicketTTL),
		transfer,
		logger,
		cfg.BonusInterval,
		cfg.TransferTimeout,
	)

	gin.SetMode(gin.ReleaseMode)
	router := ledger.NewRouter(&ledger.Handlers{Claims: claims, Logger: logger}, ledger.NewIPLimiter(cfg.RateLimit, cfg.RateBurst))

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.TransferTimeout+5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRewardService(cfg *ledger.Config) (*reward.Service, error) {
	tc, err := reward.LoadTokenConfig(cfg.TokenConfigPath)
	if err != nil {
		return nil, err
	}
	pool, err := reward.LoadKeypair(cfg.KeypairPath)
	if err != nil {
		return nil, err
	}
	svc := reward.NewService(rpc.New(cfg.RPCURL), reward.ServiceConfig{
		Mint:     solana.MustPublicKeyFromBase58(tc.Mint),
		Pool:     pool,
		Decimals: tc.Decimals,
	})
	if !svc.Ready() {
		return nil, reward.ErrNotConfigured
	}
	return svc, nil
}
