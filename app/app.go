// Package app switches between the home, game and game-over screens and keeps
// the persisted player stats.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pthm-cable/poopdodge/game"
	"github.com/pthm-cable/poopdodge/reward"
	"github.com/pthm-cable/poopdodge/storage"
	"github.com/pthm-cable/poopdodge/telemetry"
	"github.com/pthm-cable/poopdodge/wallet"
)

// Screen is the screen currently shown.
type Screen uint8

const (
	ScreenHome Screen = iota
	ScreenGame
	ScreenGameOver
)

func (s Screen) String() string {
	switch s {
	case ScreenHome:
		return "home"
	case ScreenGame:
		return "game"
	case ScreenGameOver:
		return "game_over"
	}
	return "unknown"
}

// Result is the outcome of the last finished run.
type Result struct {
	Score        int
	Coins        int
	NewHighScore bool
	Duration     time.Duration
}

// Options configures an App. Nil collaborators disable the matching feature.
type Options struct {
	Rules   game.Rules
	Store   storage.KV
	Wallet  *wallet.Session
	History *telemetry.History
	Effects Emitter
	Bursts  Bursts
	Seed    uint64
	Timeout time.Duration // per network call; default 30s

	// Go runs background work. Defaults to starting a goroutine.
	Go  func(func())
	Now func() time.Time
}

// App is the screen navigator. All methods except ClaimReward and Claimed
// must be called from the render goroutine.
type App struct {
	opts   Options
	logger *slog.Logger
	ctx    context.Context

	screen  Screen
	stats   storage.Stats
	session *game.Session
	runs    uint64
	last    Result

	saveMu   sync.Mutex
	saveGen  uint64 // bumped per game over
	savedGen uint64 // generation of the stats last written

	claimMu    sync.Mutex
	claimGen   uint64 // bumped per run so stale claims cannot mark a new screen
	claimCoins int
	claiming   bool
	claimed    bool
}

// New creates an App on the home screen with zeroed stats.
func New(opts Options) *App {
	if opts.Go == nil {
		opts.Go = func(f func()) { go f() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &App{
		opts:   opts,
		logger: slog.Default().With("component", "app"),
		ctx:    context.Background(),
	}
}

// Load reads persisted stats and restores a saved wallet. ctx bounds all
// background work started later by the App.
func (a *App) Load(ctx context.Context) {
	a.ctx = ctx
	if a.opts.Store != nil {
		stats, err := storage.LoadStats(a.opts.Store)
		if err != nil {
			a.logger.Warn("failed to load stats", "error", err)
		}
		a.stats = stats
	}
	if w := a.opts.Wallet; w != nil {
		a.background(func(ctx context.Context) { w.Restore(ctx) })
	}
}

// Screen returns the current screen.
func (a *App) Screen() Screen { return a.screen }

// Stats returns the persisted high score and total coins.
func (a *App) Stats() storage.Stats { return a.stats }

// LastResult returns the most recent finished run.
func (a *App) LastResult() Result { return a.last }

// Session returns the active run, or nil outside the game screen.
func (a *App) Session() *game.Session {
	if a.screen != ScreenGame {
		return nil
	}
	return a.session
}

// Wallet returns the wallet session, which may be nil.
func (a *App) Wallet() *wallet.Session { return a.opts.Wallet }

// Start begins a new run.
func (a *App) Start() {
	if a.session != nil {
		a.session.Stop()
	}
	a.runs++
	a.session = game.NewSession(a.opts.Rules, a.opts.Seed+a.runs, a.GameOver, a.BackFromGame)
	a.screen = ScreenGame
	a.resetClaim()
	if a.opts.Effects != nil {
		a.opts.Effects.Clear()
	}
	if w := a.opts.Wallet; w != nil {
		a.background(func(ctx context.Context) { w.BeginRun(ctx) })
	}
	a.logger.Debug("run started", "run", a.runs)
}

// Restart plays again from the game-over screen.
func (a *App) Restart() { a.Start() }

// Home returns to the home screen.
func (a *App) Home() {
	if a.session != nil {
		a.session.Stop()
		a.session = nil
	}
	a.screen = ScreenHome
}

// BackFromGame abandons the current run without recording it.
func (a *App) BackFromGame() {
	a.Home()
}

// Update advances the active run by elapsedMs and turns its events into effects.
func (a *App) Update(elapsedMs float64) []game.Event {
	s := a.Session()
	if s == nil {
		return nil
	}
	events := s.Update(elapsedMs)
	if a.opts.Effects != nil {
		EmitEvents(a.opts.Effects, a.opts.Bursts, events)
	}
	return events
}

// GameOver records a finished run: the high score only moves on strict
// improvement, coins always accumulate. Persistence and history failures are
// logged.
func (a *App) GameOver(score, coins int) {
	newHigh := score > a.stats.HighScore
	if newHigh {
		a.stats.HighScore = score
	}
	a.stats.TotalCoins += coins

	var dur time.Duration
	if a.session != nil {
		dur = time.Duration(a.session.State().ElapsedSeconds() * float64(time.Second))
	}
	a.last = Result{Score: score, Coins: coins, NewHighScore: newHigh, Duration: dur}
	a.screen = ScreenGameOver
	a.claimMu.Lock()
	a.claimCoins = coins
	a.claimMu.Unlock()

	stats := a.stats
	a.saveMu.Lock()
	a.saveGen++
	gen := a.saveGen
	a.saveMu.Unlock()
	rec := telemetry.RunRecord{
		FinishedAt:   a.opts.Now(),
		DurationSec:  dur.Seconds(),
		Score:        score,
		Coins:        coins,
		HighScore:    stats.HighScore,
		NewHighScore: newHigh,
		RewardTokens: a.rewardFor(coins),
	}
	a.opts.Go(func() {
		a.saveStats(gen, stats)
		if err := a.opts.History.Append(rec); err != nil {
			a.logger.Error("failed to append run history", "error", err)
		}
	})

	a.logger.Info("game over", "score", score, "coins", coins, "new_high_score", newHigh, "duration", dur)
}

// saveStats writes stats unless a later game over already wrote newer ones.
func (a *App) saveStats(gen uint64, stats storage.Stats) {
	if a.opts.Store == nil {
		return
	}
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	if gen <= a.savedGen {
		a.logger.Debug("skipping stale stats save", "generation", gen, "saved", a.savedGen)
		return
	}
	if err := storage.SaveStats(a.opts.Store, stats); err != nil {
		a.logger.Error("failed to save stats", "error", err)
		return
	}
	a.savedGen = gen
}

// Reward returns the tokens the last run can claim.
func (a *App) Reward() int {
	return a.rewardFor(a.last.Coins)
}

func (a *App) rewardFor(coins int) int {
	if a.opts.Wallet != nil {
		return a.opts.Wallet.Reward(coins)
	}
	return reward.Calculate(coins)
}

// CanClaim reports whether the claim button should be enabled.
func (a *App) CanClaim() bool {
	if a.screen != ScreenGameOver || a.opts.Wallet == nil || a.Reward() <= 0 {
		return false
	}
	if !a.opts.Wallet.State().Connected {
		return false
	}
	a.claimMu.Lock()
	defer a.claimMu.Unlock()
	return !a.claiming && !a.claimed
}

// Claimed reports whether the last run's reward was paid.
func (a *App) Claimed() bool {
	a.claimMu.Lock()
	defer a.claimMu.Unlock()
	return a.claimed
}

// ClaimReward pays the last run's reward to the connected wallet, at most once
// per game-over screen. Safe to call from a background goroutine.
func (a *App) ClaimReward(ctx context.Context) bool {
	w := a.opts.Wallet
	if w == nil {
		return false
	}
	a.claimMu.Lock()
	if a.claiming || a.claimed {
		a.claimMu.Unlock()
		return false
	}
	a.claiming = true
	coins, gen := a.claimCoins, a.claimGen
	a.claimMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()
	ok := w.Claim(ctx, coins)

	a.claimMu.Lock()
	if a.claimGen == gen {
		a.claiming = false
		a.claimed = ok
	}
	a.claimMu.Unlock()
	return ok
}

// ConnectWallet connects the wallet in the background. Failures are shown to
// the player by the wallet session.
func (a *App) ConnectWallet() {
	if w := a.opts.Wallet; w != nil {
		a.background(func(ctx context.Context) { _ = w.Connect(ctx) })
	}
}

// DisconnectWallet forgets the connected wallet.
func (a *App) DisconnectWallet() {
	if w := a.opts.Wallet; w != nil {
		a.background(func(ctx context.Context) { w.Disconnect(ctx) })
	}
}

// RefreshWallet re-reads balances in the background.
func (a *App) RefreshWallet() {
	if w := a.opts.Wallet; w != nil {
		a.background(func(ctx context.Context) { w.Refresh(ctx) })
	}
}

// StartClaim runs ClaimReward in the background.
func (a *App) StartClaim() {
	ctx := a.ctx
	a.opts.Go(func() { a.ClaimReward(ctx) })
}

func (a *App) resetClaim() {
	a.claimMu.Lock()
	a.claimGen++
	a.claimCoins = 0
	a.claiming = false
	a.claimed = false
	a.claimMu.Unlock()
}

// background runs f with a request timeout derived from the App context.
func (a *App) background(f func(ctx context.Context)) {
	parent := a.ctx
	timeout := a.opts.Timeout
	a.opts.Go(func() {
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		f(ctx)
	})
}
