// Package renderer draws the game world: sky, falling objects, player and particles.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/poopdodge/game"
)

// Palette colors the world sprites.
type Palette struct {
	Player, PlayerShade rl.Color
	Hazard, HazardShade rl.Color
	Coin, CoinShade     rl.Color
}

// SpriteRenderer draws the player and falling objects from primitives.
type SpriteRenderer struct {
	pal Palette
}

// NewSpriteRenderer creates a sprite renderer.
func NewSpriteRenderer(pal Palette) *SpriteRenderer {
	return &SpriteRenderer{pal: pal}
}

// Draw renders every falling object, then the player on top.
func (r *SpriteRenderer) Draw(s game.State) {
	for _, o := range s.Objects {
		switch o.Kind {
		case game.KindHazard:
			r.drawHazard(o)
		case game.KindBonus:
			r.drawCoin(o)
		}
	}
	r.drawPlayer(s.Player)
}

// drawHazard stacks three shrinking blobs.
func (r *SpriteRenderer) drawHazard(o game.FallingObject) {
	cx := o.X + o.Width/2
	base := o.Y + o.Height*0.72
	w := o.Width / 2
	rl.DrawEllipse(int32(cx), int32(base), w, o.Height*0.26, r.pal.HazardShade)
	rl.DrawEllipse(int32(cx), int32(base-o.Height*0.06), w*0.95, o.Height*0.22, r.pal.Hazard)
	rl.DrawEllipse(int32(cx), int32(base-o.Height*0.3), w*0.7, o.Height*0.18, r.pal.Hazard)
	rl.DrawCircleV(rl.Vector2{X: cx, Y: o.Y + o.Height*0.18}, w*0.38, r.pal.Hazard)
}

func (r *SpriteRenderer) drawCoin(o game.FallingObject) {
	c := rl.Vector2{X: o.X + o.Width/2, Y: o.Y + o.Height/2}
	rad := o.Width / 2
	rl.DrawCircleV(c, rad, r.pal.CoinShade)
	rl.DrawCircleV(c, rad*0.78, r.pal.Coin)
	size := int32(rad * 1.1)
	w := rl.MeasureText("$", size)
	rl.DrawText("$", int32(c.X)-w/2, int32(c.Y)-size/2, size, r.pal.CoinShade)
}

func (r *SpriteRenderer) drawPlayer(p game.Player) {
	rect := rl.Rectangle{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
	rl.DrawRectangleRounded(rect, 0.3, 6, r.pal.Player)
	rl.DrawRectangleRoundedLines(rect, 0.3, 6, r.pal.PlayerShade)

	eyeY := p.Y + p.Height*0.38
	for _, ex := range []float32{p.X + p.Width*0.32, p.X + p.Width*0.68} {
		rl.DrawCircleV(rl.Vector2{X: ex, Y: eyeY}, p.Width*0.1, rl.White)
		rl.DrawCircleV(rl.Vector2{X: ex, Y: eyeY - 1}, p.Width*0.05, rl.Black)
	}
}
