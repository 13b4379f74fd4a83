package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/poopdodge/app"
	"github.com/pthm-cable/poopdodge/config"
	"github.com/pthm-cable/poopdodge/game"
	"github.com/pthm-cable/poopdodge/storage"
	"github.com/pthm-cable/poopdodge/systems"
	"github.com/pthm-cable/poopdodge/telemetry"
)

type headlessOptions struct {
	Runs      int
	MaxMs     float64 // per-run cap on game time; 0 = none
	Seed      uint64
	OutputDir string
}

// runHeadless plays opts.Runs autopilot runs through the same App the window
// drives, one reference frame per step, and writes the run history, perf
// samples and a summary.
func runHeadless(ctx context.Context, cfg *config.Config, opts headlessOptions) error {
	out, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := out.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	history := out.History()
	if history == nil {
		history = telemetry.NewHistory(cfg.Telemetry.HistoryFile)
	}

	rules := game.RulesFromConfig(cfg)
	pilot := game.AutopilotFromConfig(cfg)
	effects := systems.NewEffectSystem(ecs.NewWorld(), cfg.Effects.MaxParticles, rand.New(rand.NewSource(int64(opts.Seed))))

	a := app.New(app.Options{
		Rules:   rules,
		Store:   storage.NewMemStore(),
		History: history,
		Effects: effects,
		Bursts:  app.BurstsFromConfig(cfg.Effects),
		Seed:    opts.Seed,
		Go:      func(f func()) { f() },
	})
	a.Load(ctx)

	var records []telemetry.RunRecord
	for run := 1; run <= opts.Runs; run++ {
		if err := ctx.Err(); err != nil {
			slog.Info("headless runs interrupted", "completed", run-1)
			break
		}

		perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
		a.Start()
		capped := false
		for a.Screen() == app.ScreenGame {
			perf.RecordFrame()
			perf.StartTick()

			perf.StartPhase(telemetry.PhaseInput)
			sess := a.Session()
			st := sess.State()
			if opts.MaxMs > 0 && st.ClockMs >= opts.MaxMs {
				perf.EndTick()
				capped = true
				sess.Stop()
				a.GameOver(st.FinalScore(), st.Coins)
				break
			}
			sess.PointerMoved(pilot.Target(st))

			perf.StartPhase(telemetry.PhaseStep)
			a.Update(rules.FrameMs)

			perf.StartPhase(telemetry.PhaseEffects)
			effects.Update(1)

			perf.EndTick()
		}

		res := a.LastResult()
		records = append(records, telemetry.RunRecord{
			DurationSec:  res.Duration.Seconds(),
			Score:        res.Score,
			Coins:        res.Coins,
			HighScore:    a.Stats().HighScore,
			NewHighScore: res.NewHighScore,
			RewardTokens: a.Reward(),
		})
		slog.Info("headless run finished",
			"run", run,
			"score", res.Score,
			"coins", res.Coins,
			"seconds", res.Duration.Seconds(),
			"capped", capped,
		)

		if err := out.WritePerf(perf.Stats(), run); err != nil {
			slog.Warn("failed to write perf", "run", run, "error", err)
		}
	}

	summary := telemetry.Summarize(records)
	slog.Info("headless summary", "summary", summary)
	if err := out.WriteSummary(summary); err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	if dir := out.Dir(); dir != "" {
		slog.Info("output written", "dir", dir)
	}
	return nil
}
