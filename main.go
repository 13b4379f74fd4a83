package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/poopdodge/app"
	"github.com/pthm-cable/poopdodge/config"
	"github.com/pthm-cable/poopdodge/game"
	"github.com/pthm-cable/poopdodge/storage"
	"github.com/pthm-cable/poopdodge/systems"
	"github.com/pthm-cable/poopdodge/telemetry"
	"github.com/pthm-cable/poopdodge/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Play autopilot runs without graphics")
	runs := flag.Int("runs", 10, "Number of headless runs")
	maxSeconds := flag.Float64("max-seconds", 600, "Cap on game time per headless run (0 = none)")
	outputDir := flag.String("output-dir", "", "Output directory for history, perf samples, summary and config snapshot")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	debug := flag.Bool("debug", false, "Debug logging and perf overlay")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = uint64(time.Now().UnixNano())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *headless {
		slog.Info("starting headless runs", "seed", rngSeed, "runs", *runs, "max_seconds", *maxSeconds)
		if err := runHeadless(ctx, cfg, headlessOptions{
			Runs:      *runs,
			MaxMs:     *maxSeconds * 1000,
			Seed:      rngSeed,
			OutputDir: *outputDir,
		}); err != nil {
			slog.Error("headless runs failed", "error", err)
			os.Exit(1)
		}
		return
	}

	runWindow(ctx, cfg, rngSeed, *debug)
}

// runWindow opens the game window and drives the frame loop until the window
// closes or ctx is cancelled.
func runWindow(ctx context.Context, cfg *config.Config, seed uint64, debug bool) {
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		slog.Warn("failed to open storage, progress will not be saved", "path", cfg.Storage.Path, "error", err)
	}
	var kv storage.KV = storage.NewMemStore()
	if store != nil {
		kv = store
	}

	toasts := ui.NewToasts()
	world := ecs.NewWorld()
	effects := systems.NewEffectSystem(world, cfg.Effects.MaxParticles, rand.New(rand.NewSource(int64(seed))))

	a := app.New(app.Options{
		Rules:   game.RulesFromConfig(cfg),
		Store:   kv,
		Wallet:  newWallet(cfg, kv, toasts),
		History: telemetry.NewHistory(cfg.Telemetry.HistoryFile),
		Effects: effects,
		Bursts:  app.BurstsFromConfig(cfg.Effects),
		Seed:    seed,
		Timeout: cfg.Wallet.RequestTimeout,
	})
	a.Load(ctx)

	rl.SetConfigFlags(rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	rl.SetExitKey(0) // Esc leaves a run instead of closing the window

	screens := ui.NewScreens(int32(cfg.Screen.Width), int32(cfg.Screen.Height), toasts)
	screens.Debug = debug

	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	if cfg.Screen.TargetFPS > 0 {
		perf.SetBudget(time.Second / time.Duration(cfg.Screen.TargetFPS))
	}
	lastPerfLog := time.Now()
	perfEvery := time.Duration(cfg.Telemetry.PerfLogInterval * float64(time.Second))

	for !rl.WindowShouldClose() && ctx.Err() == nil {
		elapsedMs := float64(rl.GetFrameTime()) * 1000
		perf.RecordFrame()
		perf.StartTick()

		perf.StartPhase(telemetry.PhaseInput)
		screens.HandleGameInput(a.Session())

		perf.StartPhase(telemetry.PhaseStep)
		events := a.Update(elapsedMs)

		perf.StartPhase(telemetry.PhaseEffects)
		frames := float32(elapsedMs / cfg.Derived.FrameMs)
		effects.Update(frames)
		screens.React(events, frames)

		perf.StartPhase(telemetry.PhaseDraw)
		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)
		screens.Draw(a, ui.Frame{
			Time:      float32(rl.GetTime()),
			Effects:   effects,
			Particles: effects.Count(),
			Perf:      perf.Stats(),
		})
		rl.EndDrawing()

		perf.EndTick()

		if perfEvery > 0 && time.Since(lastPerfLog) >= perfEvery {
			perf.Stats().LogStats()
			lastPerfLog = time.Now()
		}
	}

	if s := a.Session(); s != nil {
		s.Stop()
	}
}
