package main

import (
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/pthm-cable/poopdodge/config"
	"github.com/pthm-cable/poopdodge/ledger"
	"github.com/pthm-cable/poopdodge/reward"
	"github.com/pthm-cable/poopdodge/storage"
	"github.com/pthm-cable/poopdodge/wallet"
)

// newWallet builds the wallet session from config. Missing token files leave
// the game playable with claims disabled.
func newWallet(cfg *config.Config, kv storage.KV, n wallet.Notifier) *wallet.Session {
	svc := newRewardService(cfg)

	var claimer wallet.Claimer = svc
	if cfg.Reward.ClaimURL != "" {
		timeout := cfg.Wallet.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		claimer = ledger.NewClient(cfg.Reward.ClaimURL, timeout)
		slog.Info("claims routed through ledger service", "url", cfg.Reward.ClaimURL)
	}

	return wallet.NewSession(wallet.Options{
		Connector:        wallet.ChooseConnector(cfg.Wallet.Address, cfg.Wallet.KeypairPath),
		Balances:         svc,
		Claimer:          claimer,
		Store:            kv,
		Notifier:         n,
		ExplorerURL:      cfg.Reward.ExplorerURL,
		TokensPer10Coins: cfg.Reward.TokensPer10Coins,
	})
}

func newRewardService(cfg *config.Config) *reward.Service {
	url := cfg.Reward.RPCURL
	if url == "" {
		url = rpc.DevNet_RPC
	}
	sc := reward.ServiceConfig{
		Decimals:         cfg.Reward.Decimals,
		TokensPer10Coins: cfg.Reward.TokensPer10Coins,
	}

	tc, err := reward.LoadTokenConfig(cfg.Reward.TokenConfigPath)
	if err != nil {
		slog.Warn("token not configured, rewards disabled (run setup-token)", "error", err)
	} else {
		sc.Mint = solana.MustPublicKeyFromBase58(tc.Mint)
		sc.Decimals = tc.Decimals
	}

	if cfg.Reward.ClaimURL == "" && cfg.Reward.KeypairPath != "" {
		pool, err := reward.LoadKeypair(cfg.Reward.KeypairPath)
		if err != nil {
			slog.Warn("reward pool keypair unavailable, claims disabled", "error", err)
		} else {
			sc.Pool = pool
		}
	}

	return reward.NewService(rpc.New(url), sc)
}
