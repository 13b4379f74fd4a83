package game

import (
	"math"

	"github.com/pthm-cable/poopdodge/config"
)

// AutopilotParams weights the lane scoring of the autopilot.
type AutopilotParams struct {
	Lookahead     float64 // pixels above the player considered
	Lanes         int     // candidate positions across the screen
	HazardCost    float64
	BonusReward   float64
	MoveCost      float64 // per pixel of travel
	HazardPadding float64 // fraction of player width added around hazards
}

// DefaultAutopilot returns the built-in weights.
func DefaultAutopilot() AutopilotParams {
	return AutopilotParams{
		Lookahead:     260,
		Lanes:         24,
		HazardCost:    1000,
		BonusReward:   120,
		MoveCost:      0.4,
		HazardPadding: 0.25,
	}
}

// AutopilotFromConfig reads weights from cfg, falling back to defaults for
// unusable values.
func AutopilotFromConfig(cfg *config.Config) AutopilotParams {
	a := cfg.Autopilot
	p := AutopilotParams{
		Lookahead:     a.Lookahead,
		Lanes:         a.Lanes,
		HazardCost:    a.HazardCost,
		BonusReward:   a.BonusReward,
		MoveCost:      a.MoveCost,
		HazardPadding: a.HazardPadding,
	}
	def := DefaultAutopilot()
	if p.Lookahead <= 0 {
		p.Lookahead = def.Lookahead
	}
	if p.Lanes <= 0 {
		p.Lanes = def.Lanes
	}
	return p
}

// Autopilot picks a pointer X with the default weights.
func Autopilot(s State) float32 {
	return DefaultAutopilot().Target(s)
}

// Target picks a pointer X for the player: the lane that avoids the nearest
// incoming hazards, prefers lanes with coins and stays close to the current
// position. Used by headless runs.
func (ap AutopilotParams) Target(s State) float32 {
	p := s.Player
	curCenter := p.X + p.Width/2

	span := s.Rules.ScreenW - p.Width
	best := curCenter
	bestCost := math.Inf(1)
	pad := p.Width * float32(ap.HazardPadding)

	for lane := 0; lane <= ap.Lanes; lane++ {
		x := span * float32(lane) / float32(ap.Lanes)
		center := x + p.Width/2

		cost := ap.MoveCost * math.Abs(float64(center-curCenter))
		for _, o := range s.Objects {
			dy := float64(p.Y - (o.Y + o.Height))
			if dy < -float64(p.Height) || dy > ap.Lookahead {
				continue
			}
			var objPad float32
			if o.Kind == KindHazard {
				objPad = pad
			}
			if o.X-objPad >= x+p.Width || o.X+o.Width+objPad <= x {
				continue
			}
			urgency := 1 - math.Max(dy, 0)/ap.Lookahead
			if o.Kind == KindHazard {
				cost += ap.HazardCost * (0.2 + urgency)
			} else {
				cost -= ap.BonusReward * (0.2 + urgency)
			}
		}

		if cost < bestCost {
			bestCost = cost
			best = center
		}
	}
	return best
}
