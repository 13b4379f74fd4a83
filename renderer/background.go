package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type cloud struct {
	x, y, scale, speed float32
}

// BackgroundRenderer renders a sky gradient with slowly drifting clouds.
type BackgroundRenderer struct {
	screenW, screenH int32
	top, bottom      rl.Color
	clouds           []cloud
}

// NewBackgroundRenderer creates a background for a screen of the given size.
func NewBackgroundRenderer(screenW, screenH int32, top, bottom rl.Color) *BackgroundRenderer {
	w, h := float32(screenW), float32(screenH)
	return &BackgroundRenderer{
		screenW: screenW,
		screenH: screenH,
		top:     top,
		bottom:  bottom,
		clouds: []cloud{
			{x: 0.1 * w, y: 0.18 * h, scale: 1.0, speed: 8},
			{x: 0.6 * w, y: 0.35 * h, scale: 0.7, speed: 5},
			{x: 0.3 * w, y: 0.6 * h, scale: 0.85, speed: 6.5},
		},
	}
}

// Draw renders the background at time t seconds.
func (b *BackgroundRenderer) Draw(t float32) {
	rl.DrawRectangleGradientV(0, 0, b.screenW, b.screenH, b.top, b.bottom)

	span := float32(b.screenW) + 160
	white := rl.Color{R: 255, G: 255, B: 255, A: 170}
	for _, c := range b.clouds {
		x := float32(math.Mod(float64(c.x+c.speed*t), float64(span))) - 80
		r := 22 * c.scale
		rl.DrawCircleV(rl.Vector2{X: x, Y: c.y}, r, white)
		rl.DrawCircleV(rl.Vector2{X: x + r, Y: c.y - r*0.5}, r*1.1, white)
		rl.DrawCircleV(rl.Vector2{X: x + r*2.1, Y: c.y}, r*0.9, white)
	}
}
