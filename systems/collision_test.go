package systems

import (
	"math/rand"
	"testing"
)

func TestCollides(t *testing.T) {
	player := Rect{X: 100, Y: 700, W: 50, H: 50}

	tests := []struct {
		name string
		obj  Rect
		want bool
	}{
		{"full overlap", Rect{X: 105, Y: 705, W: 40, H: 40}, true},
		{"partial overlap top-left", Rect{X: 70, Y: 670, W: 40, H: 40}, true},
		{"partial overlap bottom-right", Rect{X: 140, Y: 740, W: 40, H: 40}, true},
		{"touching left edge", Rect{X: 60, Y: 700, W: 40, H: 40}, false},
		{"touching top edge", Rect{X: 100, Y: 660, W: 40, H: 40}, false},
		{"left of player", Rect{X: 0, Y: 700, W: 40, H: 40}, false},
		{"right of player", Rect{X: 200, Y: 700, W: 40, H: 40}, false},
		{"above player", Rect{X: 100, Y: 500, W: 40, H: 40}, false},
		{"below player", Rect{X: 100, Y: 800, W: 40, H: 40}, false},
		{"same column, overlapping rows", Rect{X: 100, Y: 740, W: 50, H: 50}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Collides(tt.obj, player); got != tt.want {
				t.Errorf("Collides(%+v, player) = %v, want %v", tt.obj, got, tt.want)
			}
		})
	}
}

func TestCollidesSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	randRect := func() Rect {
		return Rect{
			X: rng.Float32()*400 - 50,
			Y: rng.Float32()*800 - 50,
			W: 1 + rng.Float32()*80,
			H: 1 + rng.Float32()*80,
		}
	}

	for i := 0; i < 5000; i++ {
		a, b := randRect(), randRect()
		if Collides(a, b) != Collides(b, a) {
			t.Fatalf("asymmetric result for a=%+v b=%+v", a, b)
		}
	}
}

func TestSeparatedRectsNeverCollide(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		a := Rect{X: rng.Float32() * 300, Y: rng.Float32() * 600, W: 1 + rng.Float32()*60, H: 1 + rng.Float32()*60}
		gap := rng.Float32() * 20
		w, h := 1+rng.Float32()*60, 1+rng.Float32()*60

		separated := []Rect{
			{X: a.Right() + gap, Y: a.Y, W: w, H: h},    // right
			{X: a.X - w - gap, Y: a.Y, W: w, H: h},      // left
			{X: a.X, Y: a.Bottom() + gap, W: w, H: h},   // below
			{X: a.X, Y: a.Y - h - gap, W: w, H: h},      // above
		}
		for _, b := range separated {
			if Collides(a, b) {
				t.Fatalf("separated rects collided: a=%+v b=%+v", a, b)
			}
		}
	}
}

func TestOutOfScreen(t *testing.T) {
	const screenH = 800
	tests := []struct {
		y    float32
		want bool
	}{
		{-50, false},
		{799, false},
		{800, false},
		{800.5, true},
		{1200, true},
	}
	for _, tt := range tests {
		if got := OutOfScreen(Rect{Y: tt.y, W: 40, H: 40}, screenH); got != tt.want {
			t.Errorf("OutOfScreen(y=%v) = %v, want %v", tt.y, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-5, 0, 10); got != 0 {
		t.Errorf("Clamp(-5) = %v, want 0", got)
	}
	if got := Clamp(15, 0, 10); got != 10 {
		t.Errorf("Clamp(15) = %v, want 10", got)
	}
	if got := Clamp(4, 0, 10); got != 4 {
		t.Errorf("Clamp(4) = %v, want 4", got)
	}
}
