// Package camera provides the play-field camera: a fixed viewport that shakes
// briefly when the player is hit.
package camera

import "math"

// Camera offsets the play field from the screen origin.
type Camera struct {
	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// MaxOffset bounds the shake displacement in pixels.
	MaxOffset float32
	// Decay is the trauma lost per reference frame.
	Decay float32

	trauma float32 // 0..1, shake strength is trauma squared
	phase  float32
}

// New creates a resting camera for a viewport of the given size.
func New(viewportW, viewportH float32) *Camera {
	return &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		MaxOffset: 10,
		Decay:     0.04,
	}
}

// Kick adds trauma in [0, 1]; the total is capped at 1.
func (c *Camera) Kick(amount float32) {
	c.trauma = clamp(c.trauma+amount, 0, 1)
}

// Update ages the shake by frames reference frames.
func (c *Camera) Update(frames float32) {
	if frames <= 0 {
		return
	}
	c.phase += frames
	c.trauma = clamp(c.trauma-c.Decay*frames, 0, 1)
}

// Shaking reports whether the camera is displaced.
func (c *Camera) Shaking() bool {
	return c.trauma > 0
}

// Offset returns the current displacement of the play field.
func (c *Camera) Offset() (dx, dy float32) {
	if c.trauma <= 0 {
		return 0, 0
	}
	s := c.trauma * c.trauma * c.MaxOffset
	p := float64(c.phase)
	dx = s * float32(math.Sin(p*1.7))
	dy = s * float32(math.Cos(p*2.3))
	return dx, dy
}

// ScreenToWorld converts a pointer position to play-field coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	dx, dy := c.Offset()
	return clamp(sx-dx, 0, c.ViewportW), clamp(sy-dy, 0, c.ViewportH)
}

// Resize updates the viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Reset stops any shake.
func (c *Camera) Reset() {
	c.trauma = 0
	c.phase = 0
}

func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
