package game

import (
	"math"
	"testing"

	"github.com/pthm-cable/poopdodge/config"
)

// dropHazardOnPlayer queues a hazard that will hit the player on the next frame.
func dropHazardOnPlayer(s *Session, id uint64) {
	p := s.state.Player
	s.state.Objects = append(s.state.Objects, FallingObject{
		ID: id, Kind: KindHazard, X: p.X, Y: p.Y - 42, Width: 40, Height: 40,
	})
}

func TestSessionThreeHazardsEndsRunOnce(t *testing.T) {
	var calls, gotScore, gotCoins int
	s := NewSession(quietRules(), 1, func(score, coins int) {
		calls++
		gotScore, gotCoins = score, coins
	}, nil)

	// survive 4 seconds, then take three hits a second apart
	for i := 0; i < 240; i++ {
		s.Update(frameMs)
	}
	for hit := 0; hit < 3; hit++ {
		dropHazardOnPlayer(s, uint64(100+hit))
		s.Update(frameMs)
		for i := 0; i < 59 && s.Running(); i++ {
			s.Update(frameMs)
		}
	}

	// further frames after the end must not report again
	for i := 0; i < 30; i++ {
		s.Update(frameMs)
	}

	if calls != 1 {
		t.Fatalf("onGameOver called %d times, want 1", calls)
	}
	if gotCoins != 0 {
		t.Errorf("coins = %d, want 0", gotCoins)
	}
	// 4s before the hits + 2 full seconds between them + the final frame
	elapsed := s.State().ElapsedSeconds()
	if math.Abs(float64(gotScore)-math.Floor(elapsed)) > 1 {
		t.Errorf("score = %d, want ~%v survival points", gotScore, elapsed)
	}
	if s.State().Lives != 0 {
		t.Errorf("Lives = %d, want 0", s.State().Lives)
	}
	if s.Running() {
		t.Error("session still running after game over")
	}
}

func TestSessionPointerInputAppliedNextFrame(t *testing.T) {
	r := quietRules()
	s := NewSession(r, 1, nil, nil)

	s.PointerMoved(100)
	if s.State().Player.X == 100-r.PlayerW/2 {
		t.Fatal("pointer applied before the next frame")
	}
	s.Update(frameMs)
	if got := s.State().Player.X; got != 100-r.PlayerW/2 {
		t.Errorf("Player.X = %v, want %v", got, 100-r.PlayerW/2)
	}

	s.PointerMoved(-500)
	s.Update(frameMs)
	if got := s.State().Player.X; got != 0 {
		t.Errorf("Player.X = %v, want clamped 0", got)
	}
}

func TestSessionKeyboardNudge(t *testing.T) {
	r := quietRules()
	s := NewSession(r, 1, nil, nil)
	start := s.State().Player.X

	s.Nudge(1)
	s.Update(frameMs)
	if got := s.State().Player.X - start; math.Abs(float64(got-r.PlayerSpeed)) > 1e-3 {
		t.Errorf("moved %v, want %v", got, r.PlayerSpeed)
	}

	// nudge is consumed by the frame
	x := s.State().Player.X
	s.Update(frameMs)
	if s.State().Player.X != x {
		t.Error("nudge repeated without new input")
	}
}

func TestSessionBackStopsWithoutReporting(t *testing.T) {
	reported, back := false, false
	s := NewSession(quietRules(), 1, func(int, int) { reported = true }, func() { back = true })

	s.Update(frameMs)
	s.Back()
	clock := s.State().ClockMs
	s.Update(frameMs)

	if !back {
		t.Error("onBack not called")
	}
	if reported {
		t.Error("onGameOver called after Back")
	}
	if s.State().ClockMs != clock {
		t.Error("session advanced after Back")
	}
}

func TestSessionClampsLongFrames(t *testing.T) {
	r := quietRules()
	s := NewSession(r, 1, nil, nil)

	s.Update(5000)
	if got := s.State().ClockMs; got != r.MaxStepMs {
		t.Errorf("ClockMs = %v, want clamped %v", got, r.MaxStepMs)
	}
}

func TestAutopilotAvoidsHazard(t *testing.T) {
	r := quietRules()
	s := NewState(r, 1)
	p := s.Player
	s.Objects = []FallingObject{{ID: 1, Kind: KindHazard, X: p.X + 5, Y: p.Y - 120, Width: 40, Height: 40}}

	target := Autopilot(s)
	moved := MovePlayerToPointer(s, target)
	hz := s.Objects[0]
	if moved.Player.X < hz.X+hz.Width && moved.Player.X+moved.Player.Width > hz.X {
		t.Errorf("autopilot stayed under the hazard: player x=%v hazard x=%v", moved.Player.X, hz.X)
	}
}

func TestAutopilotSurvivesLongerThanStandingStill(t *testing.T) {
	play := func(steer bool) float64 {
		r := testRules()
		s := NewSession(r, 3, nil, nil)
		for i := 0; i < 60*120 && s.Running(); i++ {
			if steer {
				s.PointerMoved(Autopilot(s.State()))
			}
			s.Update(frameMs)
		}
		return s.State().ElapsedSeconds()
	}

	idle, steered := play(false), play(true)
	if steered < idle {
		t.Errorf("autopilot survived %.1fs, idle player %.1fs", steered, idle)
	}
}

func TestAutopilotFromConfig(t *testing.T) {
	cfg := config.Default()
	if got, want := AutopilotFromConfig(cfg), DefaultAutopilot(); got != want {
		t.Errorf("AutopilotFromConfig(defaults) = %+v, want %+v", got, want)
	}

	cfg.Autopilot.Lanes = 0
	cfg.Autopilot.Lookahead = -1
	cfg.Autopilot.MoveCost = 2
	got := AutopilotFromConfig(cfg)
	if got.Lanes != 24 || got.Lookahead != 260 {
		t.Errorf("unusable values not replaced: %+v", got)
	}
	if got.MoveCost != 2 {
		t.Errorf("MoveCost = %v, want 2", got.MoveCost)
	}
}

func TestRunHeadless(t *testing.T) {
	r := testRules()
	r.InitialLives = 1
	const limit = 120_000

	var hits int
	end := RunHeadless(r, DefaultAutopilot(), 7, limit, func(events []Event) {
		for _, e := range events {
			if e.Type == EventHazardHit {
				hits++
			}
		}
	})
	switch {
	case end.Over && hits != 1:
		t.Errorf("run ended with %d hazard hits, want 1", hits)
	case !end.Over && end.ClockMs < limit:
		t.Errorf("run stopped early at %vms", end.ClockMs)
	}

	capped := RunHeadless(r, DefaultAutopilot(), 7, 2000, nil)
	if capped.ClockMs < 2000 || capped.ClockMs > 2000+r.FrameMs {
		t.Errorf("capped run stopped at %vms", capped.ClockMs)
	}

	again := RunHeadless(r, DefaultAutopilot(), 7, limit, nil)
	if again.ClockMs != end.ClockMs || again.Coins != end.Coins {
		t.Error("same seed produced a different run")
	}
}
