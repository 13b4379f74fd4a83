package game

import (
	"math"
	"testing"

	"github.com/pthm-cable/poopdodge/config"
)

const frameMs = 1000.0 / 60.0

func testRules() Rules {
	return RulesFromConfig(config.Default())
}

// quietRules never spawns anything on its own.
func quietRules() Rules {
	r := testRules()
	r.HazardSpawnMs = math.Inf(1)
	r.BonusSpawnMs = math.Inf(1)
	return r
}

func TestNewState(t *testing.T) {
	r := testRules()
	s := NewState(r, 1)

	if s.Lives != 3 {
		t.Errorf("Lives = %d, want 3", s.Lives)
	}
	if s.Score != 0 || s.Coins != 0 || len(s.Objects) != 0 {
		t.Errorf("expected empty run, got score=%v coins=%d objects=%d", s.Score, s.Coins, len(s.Objects))
	}
	wantX := r.ScreenW/2 - r.PlayerW/2
	if s.Player.X != wantX {
		t.Errorf("Player.X = %v, want %v", s.Player.X, wantX)
	}
	if s.Player.Y != r.ScreenH-r.PlayerH-50 {
		t.Errorf("Player.Y = %v, want %v", s.Player.Y, r.ScreenH-r.PlayerH-50)
	}
}

func TestHazardSpeedRamp(t *testing.T) {
	r := testRules()
	tests := []struct {
		sec  float64
		want float64
	}{
		{0, 5},
		{9.99, 5},
		{10, 5.5},
		{19.5, 5.5},
		{20, 6},
		{95, 9.5},
	}
	for _, tt := range tests {
		got := r.HazardSpeedAt(tt.sec * 1000)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("HazardSpeedAt(%vs) = %v, want %v", tt.sec, got, tt.want)
		}
	}

	prev := r.HazardSpeedAt(0)
	for ms := 0.0; ms < 300_000; ms += 137 {
		cur := r.HazardSpeedAt(ms)
		if cur < prev {
			t.Fatalf("speed decreased at %vms: %v < %v", ms, cur, prev)
		}
		prev = cur
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	s := NewState(quietRules(), 1)
	s.Objects = []FallingObject{{ID: 1, Kind: KindHazard, X: 0, Y: 10, Width: 40, Height: 40}}

	next := Step(s, frameMs)

	if s.Objects[0].Y != 10 {
		t.Errorf("input object moved: Y = %v", s.Objects[0].Y)
	}
	if s.ClockMs != 0 || s.Score != 0 {
		t.Errorf("input state changed: clock=%v score=%v", s.ClockMs, s.Score)
	}
	if next.Objects[0].Y != 15 {
		t.Errorf("next object Y = %v, want 15", next.Objects[0].Y)
	}
}

func TestStepMovesByKindSpeed(t *testing.T) {
	s := NewState(quietRules(), 1)
	s.Objects = []FallingObject{
		{ID: 1, Kind: KindHazard, X: 0, Y: 0, Width: 40, Height: 40},
		{ID: 2, Kind: KindBonus, X: 100, Y: 0, Width: 30, Height: 30},
	}

	s = Step(s, frameMs)
	if math.Abs(float64(s.Objects[0].Y)-5) > 1e-4 {
		t.Errorf("hazard Y = %v, want 5", s.Objects[0].Y)
	}
	if math.Abs(float64(s.Objects[1].Y)-4) > 1e-4 {
		t.Errorf("bonus Y = %v, want 4", s.Objects[1].Y)
	}
}

func TestSpawnIntervals(t *testing.T) {
	r := testRules()
	r.InitialLives = 1000
	s := NewState(r, 42)
	var hazards, bonuses int
	// 10 seconds of frames
	for i := 0; i < 600; i++ {
		s = Step(s, frameMs)
		for _, ev := range s.Events {
			if ev.Type != EventSpawn {
				continue
			}
			if ev.Kind == KindHazard {
				hazards++
			} else {
				bonuses++
			}
		}
	}

	// strictly-greater interval checks at 60 Hz: one hazard per 49 frames,
	// one bonus per 121 frames
	if hazards < 11 || hazards > 13 {
		t.Errorf("hazard spawns in 10s = %d, want ~12", hazards)
	}
	if bonuses < 4 || bonuses > 5 {
		t.Errorf("bonus spawns in 10s = %d, want ~4", bonuses)
	}
}

func TestSpawnedObjectsStayOnScreenHorizontally(t *testing.T) {
	r := testRules()
	s := NewState(r, 99)
	for i := 0; i < 3000 && !s.Over; i++ {
		s = Step(s, frameMs)
		for _, o := range s.Objects {
			if o.X < 0 || o.X+o.Width > r.ScreenW {
				t.Fatalf("object %d outside screen columns: x=%v w=%v", o.ID, o.X, o.Width)
			}
		}
	}
}

func TestObjectsRemovedOffScreen(t *testing.T) {
	r := quietRules()
	s := NewState(r, 1)
	s = MovePlayer(s, r.ScreenW-r.PlayerW) // out of the object's column
	s.Objects = []FallingObject{{ID: 7, Kind: KindHazard, X: 0, Y: r.ScreenH - 2, Width: 40, Height: 40}}

	s = Step(s, frameMs)
	if len(s.Objects) != 0 {
		t.Fatalf("object past the bottom was kept: %+v", s.Objects)
	}
	for i := 0; i < 120; i++ {
		s = Step(s, frameMs)
		for _, o := range s.Objects {
			if o.ID == 7 {
				t.Fatalf("removed object reappeared at step %d", i)
			}
		}
	}
	if s.Lives != 3 {
		t.Errorf("Lives = %d, want 3", s.Lives)
	}
}

func TestHazardCollisionCostsLife(t *testing.T) {
	r := quietRules()
	s := NewState(r, 1)
	p := s.Player
	s.Objects = []FallingObject{{ID: 1, Kind: KindHazard, X: p.X, Y: p.Y - 42, Width: 40, Height: 40}}

	s = Step(s, frameMs)

	if s.Lives != 2 {
		t.Errorf("Lives = %d, want 2", s.Lives)
	}
	if len(s.Objects) != 0 {
		t.Errorf("collided hazard not removed")
	}
	if len(s.Events) != 1 || s.Events[0].Type != EventHazardHit {
		t.Errorf("Events = %+v, want one hazard hit", s.Events)
	}
}

func TestBonusCollisionAddsCoinAndPoints(t *testing.T) {
	r := quietRules()
	s := NewState(r, 1)
	p := s.Player
	s.Objects = []FallingObject{
		{ID: 1, Kind: KindBonus, X: p.X + 5, Y: p.Y - 31, Width: 30, Height: 30},
		{ID: 2, Kind: KindBonus, X: p.X + 10, Y: p.Y - 32, Width: 30, Height: 30},
	}

	s = Step(s, frameMs)

	if s.Coins != 2 {
		t.Errorf("Coins = %d, want 2", s.Coins)
	}
	wantScore := 20 + 1.0/60
	if math.Abs(s.Score-wantScore) > 1e-9 {
		t.Errorf("Score = %v, want %v", s.Score, wantScore)
	}
	if s.Lives != 3 {
		t.Errorf("Lives = %d, want 3", s.Lives)
	}
}

func TestSurvivalScore(t *testing.T) {
	for _, seconds := range []int{1, 5, 30} {
		s := NewState(quietRules(), 1)
		for i := 0; i < seconds*60; i++ {
			s = Step(s, frameMs)
		}
		if math.Abs(s.Score-float64(seconds)) > 1e-6 {
			t.Errorf("%ds: Score = %v, want %d", seconds, s.Score, seconds)
		}
		if s.FinalScore() != seconds && s.FinalScore() != seconds-1 {
			t.Errorf("%ds: FinalScore = %d", seconds, s.FinalScore())
		}
	}
}

func TestLivesNeverNegative(t *testing.T) {
	r := quietRules()
	s := NewState(r, 1)
	p := s.Player
	for i := 0; i < 5; i++ {
		s.Objects = append(s.Objects, FallingObject{ID: uint64(i), Kind: KindHazard, X: p.X, Y: p.Y - 41, Width: 40, Height: 40})
	}

	s = Step(s, frameMs)

	if s.Lives != 0 {
		t.Errorf("Lives = %d, want 0", s.Lives)
	}
	if !s.Over {
		t.Error("expected run to be over")
	}
	last := s.Events[len(s.Events)-1]
	if last.Type != EventGameOver {
		t.Errorf("last event = %v, want game_over", last.Type)
	}

	after := Step(s, frameMs)
	if after.ClockMs != s.ClockMs || after.Score != s.Score {
		t.Error("finished run advanced")
	}
}

func TestStepDeterministicForSeed(t *testing.T) {
	a := NewState(testRules(), 5)
	b := NewState(testRules(), 5)
	for i := 0; i < 400; i++ {
		a = Step(a, frameMs)
		b = Step(b, frameMs)
	}
	if len(a.Objects) != len(b.Objects) {
		t.Fatalf("object counts differ: %d vs %d", len(a.Objects), len(b.Objects))
	}
	for i := range a.Objects {
		if a.Objects[i] != b.Objects[i] {
			t.Fatalf("object %d differs: %+v vs %+v", i, a.Objects[i], b.Objects[i])
		}
	}
}

func TestMovePlayerClamps(t *testing.T) {
	r := testRules()
	s := NewState(r, 1)

	if got := MovePlayer(s, -100).Player.X; got != 0 {
		t.Errorf("MovePlayer(-100).X = %v, want 0", got)
	}
	if got := MovePlayer(s, 10_000).Player.X; got != r.ScreenW-r.PlayerW {
		t.Errorf("MovePlayer(10000).X = %v, want %v", got, r.ScreenW-r.PlayerW)
	}
	if got := MovePlayerToPointer(s, 200).Player.X; got != 200-r.PlayerW/2 {
		t.Errorf("MovePlayerToPointer(200).X = %v, want %v", got, 200-r.PlayerW/2)
	}

	nudged := NudgePlayer(s, -1, frameMs)
	if math.Abs(float64(s.Player.X-nudged.Player.X-r.PlayerSpeed)) > 1e-3 {
		t.Errorf("NudgePlayer moved %v, want %v", s.Player.X-nudged.Player.X, r.PlayerSpeed)
	}
	if NudgePlayer(s, 0, frameMs).Player.X != s.Player.X {
		t.Error("zero nudge moved the player")
	}
}
