// Package wallet tracks the connected wallet, its balances and reward claims.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pthm-cable/poopdodge/reward"
	"github.com/pthm-cable/poopdodge/storage"
)

// ErrNotConnected is returned by operations that need a wallet address.
var ErrNotConnected = errors.New("wallet: not connected")

// Connector yields the address of the wallet to use.
type Connector interface {
	Connect(ctx context.Context) (string, error)
}

// Balances reads SOL and reward token balances.
type Balances interface {
	Balance(ctx context.Context, addr string) (float64, error)
	TokenBalance(ctx context.Context, addr string) (float64, error)
}

// Claimer pays the reward for coins to addr and returns the transaction signature.
type Claimer interface {
	Claim(ctx context.Context, addr string, coins int) (string, error)
}

// Readier is implemented by claimers that may lack configuration.
type Readier interface {
	Ready() bool
}

// RunTicketer is implemented by claimers that bind claims to a server-issued run ticket.
type RunTicketer interface {
	BeginRun(ctx context.Context) error
}

// Alert is a user-facing message.
type Alert struct {
	Title   string
	Message string
	URL     string // optional link, e.g. a block explorer page
}

// Notifier shows alerts to the player.
type Notifier interface {
	Notify(a Alert)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Alert)

func (f NotifierFunc) Notify(a Alert) { f(a) }

// Options configures a Session. Nil collaborators disable the matching feature.
type Options struct {
	Connector        Connector
	Balances         Balances
	Claimer          Claimer
	Store            storage.KV
	Notifier         Notifier
	ExplorerURL      string // printf pattern taking the signature
	TokensPer10Coins int
	TokenSymbol      string
}

// State is a snapshot of the session for rendering.
type State struct {
	Address      string
	Connected    bool
	Connecting   bool
	Balance      float64
	TokenBalance float64
	Claiming     bool
	TokenReady   bool
}

// Session holds the wallet address and balances. Safe for concurrent use;
// network calls run without the lock held.
type Session struct {
	opts   Options
	logger *slog.Logger

	mu         sync.Mutex
	address    string
	balance    float64
	tokens     float64
	connecting bool
	claiming   bool
}

// NewSession creates a disconnected session.
func NewSession(opts Options) *Session {
	if opts.TokenSymbol == "" {
		opts.TokenSymbol = "$POOP"
	}
	if opts.TokensPer10Coins <= 0 {
		opts.TokensPer10Coins = reward.TokensPer10Coins
	}
	return &Session{opts: opts, logger: slog.Default().With("component", "wallet")}
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Address:      s.address,
		Connected:    s.address != "",
		Connecting:   s.connecting,
		Balance:      s.balance,
		TokenBalance: s.tokens,
		Claiming:     s.claiming,
		TokenReady:   s.tokenReady(),
	}
}

// Reward returns the whole-token reward coins would earn.
func (s *Session) Reward(coins int) int {
	return reward.CalculateRate(coins, s.opts.TokensPer10Coins)
}

// Symbol returns the reward token's display symbol.
func (s *Session) Symbol() string {
	return s.opts.TokenSymbol
}

func (s *Session) tokenReady() bool {
	if s.opts.Claimer == nil {
		return false
	}
	if r, ok := s.opts.Claimer.(Readier); ok {
		return r.Ready()
	}
	return true
}

// Connect obtains an address from the connector, persists it and refreshes balances.
func (s *Session) Connect(ctx context.Context) error {
	if s.opts.Connector == nil {
		err := errors.New("wallet: no connector configured")
		s.notify(Alert{Title: "Connection error", Message: err.Error()})
		return err
	}

	s.mu.Lock()
	if s.connecting {
		s.mu.Unlock()
		return nil
	}
	s.connecting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.connecting = false
		s.mu.Unlock()
	}()

	addr, err := s.opts.Connector.Connect(ctx)
	if err != nil {
		s.logger.Warn("connection error", "error", err)
		s.notify(Alert{Title: "Connection error", Message: err.Error()})
		return fmt.Errorf("connecting wallet: %w", err)
	}

	s.mu.Lock()
	s.address = addr
	s.mu.Unlock()
	s.persist(addr)
	s.logger.Info("wallet connected", "address", addr)

	s.Refresh(ctx)
	return nil
}

// Disconnect clears the address and balances and forgets the persisted record.
func (s *Session) Disconnect(ctx context.Context) {
	s.mu.Lock()
	s.address = ""
	s.balance = 0
	s.tokens = 0
	s.mu.Unlock()
	s.persist("")
}

// Restore loads a previously persisted address and refreshes its balances.
func (s *Session) Restore(ctx context.Context) {
	if s.opts.Store == nil {
		return
	}
	addr, err := storage.LoadWallet(s.opts.Store)
	if err != nil {
		s.logger.Warn("failed to load wallet", "error", err)
		return
	}
	if addr == "" {
		return
	}
	s.mu.Lock()
	s.address = addr
	s.mu.Unlock()
	s.Refresh(ctx)
}

// Refresh re-reads SOL and token balances. Failures are logged and leave the
// previous values.
func (s *Session) Refresh(ctx context.Context) {
	s.mu.Lock()
	addr := s.address
	s.mu.Unlock()
	if addr == "" || s.opts.Balances == nil {
		return
	}

	bal, err := s.opts.Balances.Balance(ctx, addr)
	if err != nil {
		s.logger.Warn("failed to get balance", "error", err)
	} else {
		s.mu.Lock()
		if s.address == addr {
			s.balance = bal
		}
		s.mu.Unlock()
	}

	s.refreshTokens(ctx, addr)
}

func (s *Session) refreshTokens(ctx context.Context, addr string) {
	if s.opts.Balances == nil || !s.tokenReady() {
		return
	}
	tok, err := s.opts.Balances.TokenBalance(ctx, addr)
	if err != nil {
		s.logger.Warn("failed to get token balance", "error", err)
		return
	}
	s.mu.Lock()
	if s.address == addr {
		s.tokens = tok
	}
	s.mu.Unlock()
}

// Claim pays out the reward for coins to the connected wallet. It reports
// success and alerts the player either way.
func (s *Session) Claim(ctx context.Context, coins int) bool {
	s.mu.Lock()
	addr := s.address
	s.mu.Unlock()

	if addr == "" {
		s.notify(Alert{Title: "Error", Message: "Please connect your wallet first"})
		return false
	}
	if !s.tokenReady() {
		s.notify(Alert{Title: "Error", Message: "Token system not initialized. Please try again later."})
		return false
	}
	amount := s.Reward(coins)
	if amount <= 0 {
		s.notify(Alert{Title: "No Rewards", Message: fmt.Sprintf("Collect at least 10 coins to earn %s tokens!", s.opts.TokenSymbol)})
		return false
	}

	s.mu.Lock()
	if s.claiming {
		s.mu.Unlock()
		return false
	}
	s.claiming = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.claiming = false
		s.mu.Unlock()
	}()

	sig, err := s.opts.Claimer.Claim(ctx, addr, coins)
	if err != nil {
		s.logger.Error("claim error", "error", err, "coins", coins)
		s.notify(Alert{Title: "Claim Failed", Message: "Failed to claim rewards. Please try again."})
		return false
	}

	s.refreshTokens(ctx, addr)

	a := Alert{
		Title:   "Rewards Claimed!",
		Message: fmt.Sprintf("You received %d %s tokens!\n\nTransaction: %s", amount, s.opts.TokenSymbol, ShortSignature(sig)),
	}
	if s.opts.ExplorerURL != "" {
		a.URL = fmt.Sprintf(s.opts.ExplorerURL, sig)
	}
	s.notify(a)
	s.logger.Info("rewards claimed", "coins", coins, "tokens", amount, "signature", sig)
	return true
}

// BeginRun asks a ticketing claimer for a run ticket. Errors are logged; claims
// for the run will then be rejected by the server.
func (s *Session) BeginRun(ctx context.Context) {
	t, ok := s.opts.Claimer.(RunTicketer)
	if !ok {
		return
	}
	if err := t.BeginRun(ctx); err != nil {
		s.logger.Warn("failed to start run ticket", "error", err)
	}
}

func (s *Session) persist(addr string) {
	if s.opts.Store == nil {
		return
	}
	if err := storage.SaveWallet(s.opts.Store, addr); err != nil {
		s.logger.Warn("failed to save wallet", "error", err)
	}
}

func (s *Session) notify(a Alert) {
	if s.opts.Notifier != nil {
		s.opts.Notifier.Notify(a)
	}
}

// ShortSignature truncates a signature to its first 20 characters for display.
func ShortSignature(sig string) string {
	if len(sig) <= 20 {
		return sig
	}
	return sig[:20] + "..."
}

// ShortAddress abbreviates an address as "abcd...wxyz".
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:4] + "..." + addr[len(addr)-4:]
}
