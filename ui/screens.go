package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/poopdodge/app"
	"github.com/pthm-cable/poopdodge/camera"
	"github.com/pthm-cable/poopdodge/game"
	"github.com/pthm-cable/poopdodge/renderer"
	"github.com/pthm-cable/poopdodge/telemetry"
)

// Screens draws whichever screen the app is on and turns button presses into
// app actions.
type Screens struct {
	r          *Renderer
	hud        *HUD
	perf       *PerfPanel
	toasts     *Toasts
	background *renderer.BackgroundRenderer
	sprites    *renderer.SpriteRenderer
	particles  *renderer.ParticleRenderer
	cam        *camera.Camera

	width, height int32
	Debug         bool
}

// NewScreens creates the screen renderer for a window of the given size.
func NewScreens(width, height int32, toasts *Toasts) *Screens {
	r := NewRenderer()
	th := r.Theme
	return &Screens{
		r:          r,
		hud:        NewHUD(r),
		perf:       NewPerfPanel(r, th.Padding, height-140),
		toasts:     toasts,
		background: renderer.NewBackgroundRenderer(width, height, th.SkyTop, th.SkyBottom),
		sprites: renderer.NewSpriteRenderer(renderer.Palette{
			Player: th.Player, PlayerShade: th.PlayerShade,
			Hazard: th.Hazard, HazardShade: th.HazardShade,
			Coin: th.Coin, CoinShade: th.CoinShade,
		}),
		particles: renderer.NewParticleRenderer(),
		cam:       camera.New(float32(width), float32(height)),
		width:     width,
		height:    height,
	}
}

// Frame is what the render loop passes to Draw each frame.
type Frame struct {
	Time      float32
	Effects   renderer.ParticleSource // may be nil
	Particles int
	Perf      telemetry.PerfStats
}

// hitShake is the camera trauma added per hazard hit.
const hitShake = 0.6

// React shakes the play field on hazard hits and ages the shake by frames
// reference frames.
func (s *Screens) React(events []game.Event, frames float32) {
	for _, ev := range events {
		if ev.Type == game.EventHazardHit {
			s.cam.Kick(hitShake)
		}
	}
	s.cam.Update(frames)
}

// Draw renders the current screen and handles its buttons.
func (s *Screens) Draw(a *app.App, f Frame) {
	if a.Screen() != app.ScreenGame {
		s.cam.Reset()
	}
	s.background.Draw(f.Time)

	switch a.Screen() {
	case app.ScreenHome:
		s.drawHome(a)
	case app.ScreenGame:
		s.drawGame(a, f)
	case app.ScreenGameOver:
		s.drawGameOver(a)
	}

	if s.toasts != nil {
		s.toasts.Draw(s.r, s.width)
	}
	if s.Debug {
		s.perf.Draw(f.Perf, f.Particles)
	}
}

func (s *Screens) drawHome(a *app.App) {
	th := s.r.Theme
	y := s.height / 6
	y = s.r.DrawCentered("Poop Dodge", s.width, y, th.TitleSize, th.Title)
	y = s.r.DrawCentered("Dodge the poop, catch the coins!", s.width, y, th.FontSize, th.LabelColor)
	y += th.LineHeight

	stats := a.Stats()
	panelW := s.width - 4*th.Padding
	px := 2 * th.Padding
	s.r.DrawPanel(px, y, panelW, th.LineHeight*2+2*th.Padding)
	iy := y + th.Padding
	iy = s.r.DrawLabelValue(px+th.Padding, iy, "High Score", FormatCount(stats.HighScore), panelW-2*th.Padding)
	s.r.DrawLabelValue(px+th.Padding, iy, "Total Coins", FormatCount(stats.TotalCoins), panelW-2*th.Padding)
	y += th.LineHeight*2 + 3*th.Padding

	btnY := float32(y)
	btnW := float32(s.width) * 0.6
	if s.r.Button("Play", s.width, btnY, btnW, true) || rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
		a.Start()
		return
	}
	btnY += th.ButtonHeight + float32(th.Padding)

	if w := a.Wallet(); w != nil {
		st := w.State()
		label := "Connect Wallet"
		if st.Connected {
			label = "Disconnect Wallet"
		}
		if s.r.Button(label, s.width, btnY, btnW, !st.Connecting) {
			if st.Connected {
				a.DisconnectWallet()
			} else {
				a.ConnectWallet()
			}
		}
		btnY += th.ButtonHeight + float32(th.Padding)
		wy := int32(btnY)
		for _, line := range WalletLines(st, w.Symbol()) {
			wy = s.r.DrawCentered(line, s.width, wy, th.FontSize-2, th.LabelColor)
		}
	}

	s.hud.DrawControls(s.width, s.height, "Drag or use arrow keys to move")
}

func (s *Screens) drawGame(a *app.App, f Frame) {
	sess := a.Session()
	if sess == nil {
		return
	}
	st := sess.State()
	dx, dy := s.cam.Offset()
	rl.BeginMode2D(rl.Camera2D{Offset: rl.Vector2{X: dx, Y: dy}, Zoom: 1})
	s.sprites.Draw(st)
	if f.Effects != nil {
		s.particles.Draw(f.Effects)
	}
	rl.EndMode2D()
	s.hud.Draw(HUDDataFrom(st, s.width))
	s.hud.DrawControls(s.width, s.height, "Esc to quit")
}

func (s *Screens) drawGameOver(a *app.App) {
	th := s.r.Theme
	res := a.LastResult()
	y := s.height / 8
	y = s.r.DrawCentered("Game Over", s.width, y, th.TitleSize, th.Title)
	if res.NewHighScore {
		y = s.r.DrawCentered("New High Score!", s.width, y, th.HeadlineSize, th.Accent)
	}

	panelW := s.width - 4*th.Padding
	px := 2 * th.Padding
	inner := panelW - 2*th.Padding
	s.r.DrawPanel(px, y, panelW, th.LineHeight*4+2*th.Padding)
	iy := y + th.Padding
	iy = s.r.DrawLabelValue(px+th.Padding, iy, "Score", FormatCount(res.Score), inner)
	iy = s.r.DrawLabelValue(px+th.Padding, iy, "Coins", FormatCount(res.Coins), inner)
	iy = s.r.DrawLabelValue(px+th.Padding, iy, "Time", FormatRunTime(res.Duration), inner)
	s.r.DrawLabelValue(px+th.Padding, iy, "Best", FormatCount(a.Stats().HighScore), inner)
	y += th.LineHeight*4 + 3*th.Padding

	btnW := float32(s.width) * 0.7
	btnY := float32(y)
	if w := a.Wallet(); w != nil {
		st := w.State()
		tokens := a.Reward()
		y = s.r.DrawCentered(RewardLine(tokens, w.Symbol()), s.width, y, th.FontSize, th.CoinShade)
		btnY = float32(y)
		if tokens > 0 {
			label := ClaimLabel(st.Claiming, a.Claimed(), tokens, w.Symbol())
			if !st.Connected {
				label = "Connect wallet to claim"
			}
			if s.r.Button(label, s.width, btnY, btnW, a.CanClaim()) {
				a.StartClaim()
			}
			btnY += th.ButtonHeight + float32(th.Padding)
		}
	}

	if s.r.Button("Play Again", s.width, btnY, btnW, true) || rl.IsKeyPressed(rl.KeyEnter) {
		a.Restart()
		return
	}
	btnY += th.ButtonHeight + float32(th.Padding)
	if s.r.Button("Home", s.width, btnY, btnW, true) || rl.IsKeyPressed(rl.KeyEscape) {
		a.Home()
	}
}

// HandleGameInput feeds mouse drag and keyboard input to the active run.
func (s *Screens) HandleGameInput(sess *game.Session) {
	if sess == nil {
		return
	}
	if rl.IsKeyPressed(rl.KeyEscape) {
		sess.Back()
		return
	}
	if rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		x, _ := s.cam.ScreenToWorld(float32(rl.GetMouseX()), float32(rl.GetMouseY()))
		sess.PointerMoved(x)
	} else if n := rl.GetTouchPointCount(); n > 0 {
		p := rl.GetTouchPosition(0)
		x, _ := s.cam.ScreenToWorld(p.X, p.Y)
		sess.PointerMoved(x)
	}
	dir := 0
	if rl.IsKeyDown(rl.KeyLeft) || rl.IsKeyDown(rl.KeyA) {
		dir--
	}
	if rl.IsKeyDown(rl.KeyRight) || rl.IsKeyDown(rl.KeyD) {
		dir++
	}
	sess.Nudge(dir)
}
