package ui

import (
	"strings"
	"sync"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/poopdodge/wallet"
)

const (
	toastLifetime = 5 * time.Second
	toastFade     = 400 * time.Millisecond
	maxToasts     = 3
)

type toast struct {
	alert   wallet.Alert
	shownAt time.Time
}

// Toasts queues wallet alerts for display. Notify may be called from any
// goroutine; Draw runs on the render goroutine.
type Toasts struct {
	mu    sync.Mutex
	items []toast
	now   func() time.Time
}

// NewToasts creates an empty toast queue.
func NewToasts() *Toasts {
	return &Toasts{now: time.Now}
}

// Notify implements wallet.Notifier.
func (t *Toasts) Notify(a wallet.Alert) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, toast{alert: a, shownAt: t.now()})
	if len(t.items) > maxToasts {
		t.items = t.items[len(t.items)-maxToasts:]
	}
}

// Active returns the alerts still on screen, oldest first, dropping expired ones.
func (t *Toasts) Active() []wallet.Alert {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expire()
	out := make([]wallet.Alert, len(t.items))
	for i, it := range t.items {
		out[i] = it.alert
	}
	return out
}

func (t *Toasts) expire() {
	now := t.now()
	kept := t.items[:0]
	for _, it := range t.items {
		if now.Sub(it.shownAt) < toastLifetime {
			kept = append(kept, it)
		}
	}
	t.items = kept
}

// Dismiss removes the toast at index i of Active.
func (t *Toasts) Dismiss(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if i >= 0 && i < len(t.items) {
		t.items = append(t.items[:i], t.items[i+1:]...)
	}
}

// Draw renders the toasts stacked from the top of the screen. Clicking a toast
// with a URL opens it; clicking any toast dismisses it.
func (t *Toasts) Draw(r *Renderer, screenW int32) {
	t.mu.Lock()
	t.expire()
	items := append([]toast(nil), t.items...)
	now := t.now()
	t.mu.Unlock()

	th := r.Theme
	width := screenW - 2*th.Padding
	y := th.Padding
	clicked := -1
	for i, it := range items {
		lines := strings.Split(it.alert.Message, "\n")
		height := th.Padding*2 + th.LineHeight*int32(1+len(lines))
		if it.alert.URL != "" {
			height += th.LineHeight
		}

		bg := th.ToastBg
		if isErrorTitle(it.alert.Title) {
			bg = th.ToastError
		}
		bg.A = fadeAlpha(bg.A, now.Sub(it.shownAt))

		rect := rl.Rectangle{X: float32(th.Padding), Y: float32(y), Width: float32(width), Height: float32(height)}
		rl.DrawRectangleRounded(rect, 0.15, 8, bg)

		ty := y + th.Padding
		rl.DrawText(it.alert.Title, th.Padding*2, ty, th.FontSize, rl.White)
		ty += th.LineHeight
		for _, line := range lines {
			rl.DrawText(line, th.Padding*2, ty, th.FontSize-4, rl.RayWhite)
			ty += th.LineHeight
		}
		if it.alert.URL != "" {
			rl.DrawText("View on explorer", th.Padding*2, ty, th.FontSize-4, th.Coin)
		}

		if rl.IsMouseButtonPressed(rl.MouseButtonLeft) && rl.CheckCollisionPointRec(rl.GetMousePosition(), rect) {
			clicked = i
			if it.alert.URL != "" {
				rl.OpenURL(it.alert.URL)
			}
		}
		y += height + th.Padding/2
	}
	if clicked >= 0 {
		t.Dismiss(clicked)
	}
}

func isErrorTitle(title string) bool {
	switch title {
	case "Error", "Claim Failed", "Connection error":
		return true
	}
	return false
}

// fadeAlpha scales alpha down over the last toastFade of a toast's life.
func fadeAlpha(a uint8, age time.Duration) uint8 {
	left := toastLifetime - age
	if left >= toastFade {
		return a
	}
	if left <= 0 {
		return 0
	}
	return uint8(float64(a) * float64(left) / float64(toastFade))
}
