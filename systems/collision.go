// Package systems contains collision helpers and ECS systems for the game.
package systems

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H float32
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float32 { return r.X + r.W }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float32 { return r.Y + r.H }

// Center returns the center point of the rectangle.
func (r Rect) Center() (float32, float32) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Collides reports whether a and b overlap on both axes.
// Edges that merely touch do not collide.
func Collides(a, b Rect) bool {
	return a.X < b.Right() &&
		a.Right() > b.X &&
		a.Y < b.Bottom() &&
		a.Bottom() > b.Y
}

// OutOfScreen reports whether r's top edge has passed the bottom of the screen.
func OutOfScreen(r Rect, screenHeight float32) bool {
	return r.Y > screenHeight
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
