package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/poopdodge/game"
	"github.com/pthm-cable/poopdodge/telemetry"
)

// HUDData holds what the in-game heads-up display shows.
type HUDData struct {
	Score       int
	Coins       int
	Lives       int
	MaxLives    int
	HazardSpeed float64
	ScreenWidth int32
}

// HUDDataFrom extracts HUD values from a run snapshot.
func HUDDataFrom(s game.State, screenW int32) HUDData {
	return HUDData{
		Score:       s.FinalScore(),
		Coins:       s.Coins,
		Lives:       s.Lives,
		MaxLives:    s.Rules.InitialLives,
		HazardSpeed: s.HazardSpeed,
		ScreenWidth: screenW,
	}
}

// HUD renders the in-game heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD(r *Renderer) *HUD {
	return &HUD{renderer: r}
}

// Draw renders score, coins and remaining lives along the top edge.
func (h *HUD) Draw(data HUDData) {
	th := h.renderer.Theme
	pad := th.Padding

	h.renderer.DrawPanel(pad/2, pad/2, data.ScreenWidth-pad, th.LineHeight*2+pad)

	rl.DrawText(fmt.Sprintf("Score: %s", FormatCount(data.Score)), pad, pad, th.FontSize+2, th.ValueColor)
	rl.DrawText(fmt.Sprintf("Coins: %s", FormatCount(data.Coins)), pad, pad+th.LineHeight, th.FontSize, th.CoinShade)

	// lives as hearts on the right
	const r = 8
	x := data.ScreenWidth - pad - r
	for i := data.MaxLives - 1; i >= 0; i-- {
		c := th.LifeOff
		if i < data.Lives {
			c = th.LifeOn
		}
		rl.DrawCircle(x, pad+r+2, r, c)
		x -= r*2 + 6
	}
	speed := fmt.Sprintf("x%.1f", data.HazardSpeed)
	sw := rl.MeasureText(speed, th.FontSize-4)
	rl.DrawText(speed, data.ScreenWidth-pad-sw, pad+th.LineHeight, th.FontSize-4, th.LabelColor)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	th := h.renderer.Theme
	w := rl.MeasureText(controls, th.FontSize-6)
	rl.DrawText(controls, (screenWidth-w)/2, screenHeight-th.LineHeight, th.FontSize-6, th.LabelColor)
}

// PerfPanel renders frame phase timings in debug mode.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(r *Renderer, x, y int32) *PerfPanel {
	return &PerfPanel{renderer: r, x: x, y: y}
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats, particles int) {
	x, y := p.x, p.y
	const size = 12

	rl.DrawText(fmt.Sprintf("FPS %.0f  frame %s", stats.FPS, stats.AvgTickDuration.Round(time.Microsecond)), x, y, size, rl.DarkGray)
	y += size + 2
	for _, phase := range telemetry.Phases() {
		pct := stats.PhasePct[phase]
		color := rl.DarkGray
		if pct > 50 {
			color = rl.Red
		}
		rl.DrawText(fmt.Sprintf("%-8s %6s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct), x, y, size, color)
		y += size + 2
	}
	rl.DrawText(fmt.Sprintf("particles %d", particles), x, y, size, rl.DarkGray)
}
