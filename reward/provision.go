package reward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
)

// Provisioning defaults.
const (
	PoolKeypairFile = "reward-pool-keypair.json"
	TokenConfigFile = "token-config.json"
	InitialSupply   = 1_000_000 // whole tokens minted to the pool
	AirdropSOL      = 2
	MinPoolSOL      = 0.1
)

// ErrInsufficientFunds stops provisioning when the pool cannot pay fees and rent.
var ErrInsufficientFunds = errors.New("reward: reward pool needs at least 0.1 SOL")

// ProvisionRPC is the RPC surface needed to create a reward token.
type ProvisionRPC interface {
	RPC
	RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64, commitment rpc.CommitmentType) (solana.Signature, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataSize uint64, commitment rpc.CommitmentType) (uint64, error)
}

// Provisioner creates a reward pool, mints the reward token and funds the pool.
type Provisioner struct {
	RPC          ProvisionRPC
	OutDir       string
	Network      string
	Decimals     uint8
	Supply       uint64 // whole tokens
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Provisioned describes the accounts created by Run.
type Provisioned struct {
	Pool          solana.PublicKey
	Mint          solana.PublicKey
	PoolATA       solana.PublicKey
	PoolLamports  uint64
	Supply        uint64
	Decimals      uint8
	KeypairPath   string
	TokenConfPath string
}

func (p *Provisioner) defaults() {
	if p.Decimals == 0 {
		p.Decimals = Decimals
	}
	if p.Supply == 0 {
		p.Supply = InitialSupply
	}
	if p.Network == "" {
		p.Network = "devnet"
	}
	if p.PollInterval <= 0 {
		p.PollInterval = 500 * time.Millisecond
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
}

// Run performs the full setup. When the pool is underfunded it returns
// ErrInsufficientFunds along with the partially filled result so the caller
// can print the pool address to fund.
func (p *Provisioner) Run(ctx context.Context) (Provisioned, error) {
	p.defaults()
	var out Provisioned
	if _, err := ToBaseUnits(int(p.Supply), p.Decimals); err != nil {
		return out, fmt.Errorf("initial supply: %w", err)
	}

	pool, err := solana.NewRandomPrivateKey()
	if err != nil {
		return out, fmt.Errorf("generating pool keypair: %w", err)
	}
	out.Pool = pool.PublicKey()
	out.Decimals = p.Decimals
	out.KeypairPath = filepath.Join(p.OutDir, PoolKeypairFile)
	if err := WriteKeypair(out.KeypairPath, pool); err != nil {
		return out, err
	}
	p.Logger.Info("reward pool created", "address", out.Pool.String(), "keypair", out.KeypairPath)

	p.airdrop(ctx, out.Pool)

	bal, err := p.RPC.GetBalance(ctx, out.Pool, rpc.CommitmentConfirmed)
	if err != nil {
		return out, fmt.Errorf("getting pool balance: %w", err)
	}
	out.PoolLamports = bal.Value
	if float64(bal.Value)/float64(solana.LAMPORTS_PER_SOL) < MinPoolSOL {
		return out, ErrInsufficientFunds
	}

	mint, err := p.createMint(ctx, pool)
	if err != nil {
		return out, err
	}
	out.Mint = mint
	out.TokenConfPath = filepath.Join(p.OutDir, TokenConfigFile)
	if err := WriteTokenConfig(out.TokenConfPath, TokenConfig{
		Mint:       mint.String(),
		RewardPool: out.Pool.String(),
		Decimals:   p.Decimals,
		Network:    p.Network,
	}); err != nil {
		return out, err
	}

	ata, err := p.createPoolAccount(ctx, pool, mint)
	if err != nil {
		return out, err
	}
	out.PoolATA = ata

	if err := p.mintSupply(ctx, pool, mint, ata); err != nil {
		return out, err
	}
	out.Supply = p.Supply
	return out, nil
}

func (p *Provisioner) airdrop(ctx context.Context, pool solana.PublicKey) {
	sig, err := p.RPC.RequestAirdrop(ctx, pool, AirdropSOL*solana.LAMPORTS_PER_SOL, rpc.CommitmentConfirmed)
	if err != nil {
		p.Logger.Warn("airdrop failed; fund the pool manually", "error", err)
		return
	}
	if err := waitConfirmed(ctx, p.RPC, sig, p.PollInterval, p.Logger); err != nil {
		p.Logger.Warn("airdrop not confirmed", "signature", sig.String(), "error", err)
		return
	}
	p.Logger.Info("airdrop confirmed", "sol", AirdropSOL, "signature", sig.String())
}

func (p *Provisioner) createMint(ctx context.Context, pool solana.PrivateKey) (solana.PublicKey, error) {
	mint, err := solana.NewRandomPrivateKey()
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("generating mint keypair: %w", err)
	}
	rent, err := p.RPC.GetMinimumBalanceForRentExemption(ctx, token.MINT_SIZE, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("getting mint rent: %w", err)
	}

	instrs := []solana.Instruction{
		system.NewCreateAccountInstruction(rent, token.MINT_SIZE, token.ProgramID, pool.PublicKey(), mint.PublicKey()).Build(),
		token.NewInitializeMintInstruction(p.Decimals, pool.PublicKey(), pool.PublicKey(), mint.PublicKey(), solana.SysVarRentPubkey).Build(),
	}
	if _, err := p.send(ctx, instrs, pool, mint); err != nil {
		return solana.PublicKey{}, fmt.Errorf("creating mint: %w", err)
	}
	p.Logger.Info("token mint created", "mint", mint.PublicKey().String(), "decimals", p.Decimals)
	return mint.PublicKey(), nil
}

func (p *Provisioner) createPoolAccount(ctx context.Context, pool solana.PrivateKey, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(pool.PublicKey(), mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("deriving pool token account: %w", err)
	}
	instrs := []solana.Instruction{
		associatedtokenaccount.NewCreateInstruction(pool.PublicKey(), pool.PublicKey(), mint).Build(),
	}
	if _, err := p.send(ctx, instrs, pool); err != nil {
		return solana.PublicKey{}, fmt.Errorf("creating pool token account: %w", err)
	}
	p.Logger.Info("pool token account created", "account", ata.String())
	return ata, nil
}

func (p *Provisioner) mintSupply(ctx context.Context, pool solana.PrivateKey, mint, ata solana.PublicKey) error {
	amount, err := ToBaseUnits(int(p.Supply), p.Decimals)
	if err != nil {
		return err
	}
	instrs := []solana.Instruction{
		token.NewMintToInstruction(amount, mint, ata, pool.PublicKey(), nil).Build(),
	}
	if _, err := p.send(ctx, instrs, pool); err != nil {
		return fmt.Errorf("minting supply: %w", err)
	}
	p.Logger.Info("supply minted", "tokens", p.Supply)
	return nil
}

// send builds, signs, submits and confirms a transaction paid by the first signer.
func (p *Provisioner) send(ctx context.Context, instrs []solana.Instruction, signers ...solana.PrivateKey) (solana.Signature, error) {
	bh, err := p.RPC.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("getting blockhash: %w", err)
	}
	tx, err := solana.NewTransaction(instrs, bh.Value.Blockhash, solana.TransactionPayer(signers[0].PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("building transaction: %w", err)
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if key.Equals(signers[i].PublicKey()) {
				return &signers[i]
			}
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("signing: %w", err)
	}
	sig, err := p.RPC.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sending: %w", err)
	}
	if err := waitConfirmed(ctx, p.RPC, sig, p.PollInterval, p.Logger); err != nil {
		return sig, err
	}
	return sig, nil
}
