// Command setup-token creates the reward pool, mints the reward token and
// writes the keypair and token config files the game and claimd read.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/pthm-cable/poopdodge/reward"
)

func main() {
	rpcURL := flag.String("rpc", rpc.DevNet_RPC, "Solana RPC endpoint")
	outDir := flag.String("out", ".", "Directory for reward-pool-keypair.json and token-config.json")
	network := flag.String("network", "devnet", "Network name recorded in token-config.json")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println("Setting up $POOP token on Solana", *network)

	p := &reward.Provisioner{
		RPC:     rpc.New(*rpcURL),
		OutDir:  *outDir,
		Network: *network,
		Logger:  logger,
	}
	out, err := p.Run(ctx)
	if errors.Is(err, reward.ErrInsufficientFunds) {
		printFunding(out)
		os.Exit(1)
	}
	if err != nil {
		logger.Error("setup failed", "error", err)
		os.Exit(1)
	}
	printSummary(out, *network)
}

func printFunding(out reward.Provisioned) {
	fmt.Println()
	fmt.Printf("Reward pool has %s SOL, at least %.1f SOL is needed.\n",
		humanize.FormatFloat("#,###.####", float64(out.PoolLamports)/float64(solana.LAMPORTS_PER_SOL)), reward.MinPoolSOL)
	fmt.Println("Fund it from https://faucet.solana.com using this address:")
	fmt.Println("  ", out.Pool)
	fmt.Println("Then run setup-token again.")
}

func printSummary(out reward.Provisioned, network string) {
	fmt.Println()
	fmt.Println("Token setup complete")
	fmt.Println("  Network:      ", network)
	fmt.Println("  Mint:         ", out.Mint)
	fmt.Println("  Reward pool:  ", out.Pool)
	fmt.Println("  Pool account: ", out.PoolATA)
	fmt.Println("  Supply:       ", humanize.Comma(int64(out.Supply)), "tokens")
	fmt.Println("  Decimals:     ", out.Decimals)
	fmt.Println("  Keypair:      ", out.KeypairPath)
	fmt.Println("  Token config: ", out.TokenConfPath)
	fmt.Println()
	fmt.Println("Keep the reward pool keypair secret. It signs every reward payout.")
}
