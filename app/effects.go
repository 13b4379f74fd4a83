package app

import (
	"github.com/pthm-cable/poopdodge/config"
	"github.com/pthm-cable/poopdodge/game"
)

// Emitter spawns particle bursts. *systems.EffectSystem implements it.
type Emitter interface {
	EmitSplat(x, y float32, n int)
	EmitSparkle(x, y float32, n int)
	EmitDust(x, y float32, n int)
	Clear()
}

// Bursts sets how many particles each event spawns.
type Bursts struct {
	Hazard int
	Bonus  int
}

// BurstsFromConfig reads burst sizes from the effects config.
func BurstsFromConfig(c config.EffectsConfig) Bursts {
	return Bursts{Hazard: c.HazardBurst, Bonus: c.BonusBurst}
}

// EmitEvents spawns the effects for one frame's events: a splat where a hazard
// hit the player, a sparkle where a coin was caught and a dust cloud at game over.
func EmitEvents(e Emitter, b Bursts, events []game.Event) {
	for _, ev := range events {
		switch ev.Type {
		case game.EventHazardHit:
			e.EmitSplat(ev.X, ev.Y, b.Hazard)
		case game.EventBonusCollected:
			e.EmitSparkle(ev.X, ev.Y, b.Bonus)
		case game.EventGameOver:
			e.EmitDust(ev.X, ev.Y, b.Hazard*2)
		}
	}
}
