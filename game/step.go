package game

import (
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/poopdodge/systems"
)

// Step advances s by elapsedMs milliseconds and returns the new state.
// s itself is left untouched. A finished run is returned unchanged apart from
// its events being cleared.
//
// Order within a step: clock and speed ramp, survival score, spawning, motion,
// collision against the player, off-screen removal, life/coin bookkeeping.
// Objects spawned in this step move in this step too.
func Step(s State, elapsedMs float64) State {
	if s.Over {
		s.Events = nil
		return s
	}
	if elapsedMs < 0 {
		elapsedMs = 0
	}

	next := s
	next.Events = nil
	next.ClockMs = s.ClockMs + elapsedMs
	next.HazardSpeed = s.Rules.HazardSpeedAt(next.ClockMs)
	next.Score = s.Score + s.Rules.SurvivalPerSec*elapsedMs/1000

	frames := elapsedMs / s.Rules.FrameMs

	pcg := s.rng
	rng := rand.New(&pcg)

	objects := make([]FallingObject, len(s.Objects), len(s.Objects)+2)
	copy(objects, s.Objects)

	if next.ClockMs-s.LastHazardSpawnMs > s.Rules.HazardSpawnMs {
		o := next.spawn(KindHazard, rng)
		objects = append(objects, o)
		next.LastHazardSpawnMs = next.ClockMs
		next.Events = append(next.Events, objectEvent(EventSpawn, next.ClockMs, o))
	}
	if next.ClockMs-s.LastBonusSpawnMs > s.Rules.BonusSpawnMs {
		o := next.spawn(KindBonus, rng)
		objects = append(objects, o)
		next.LastBonusSpawnMs = next.ClockMs
		next.Events = append(next.Events, objectEvent(EventSpawn, next.ClockMs, o))
	}
	next.rng = pcg

	player := s.Player.Rect()
	livesLost, collected := 0, 0
	kept := objects[:0]
	for _, o := range objects {
		speed := s.Rules.BonusSpeed
		if o.Kind == KindHazard {
			speed = next.HazardSpeed
		}
		o.Y += float32(speed * frames)

		if systems.Collides(o.Rect(), player) {
			if o.Kind == KindHazard {
				livesLost++
				next.Events = append(next.Events, objectEvent(EventHazardHit, next.ClockMs, o))
			} else {
				collected++
				next.Events = append(next.Events, objectEvent(EventBonusCollected, next.ClockMs, o))
			}
			continue
		}

		if systems.OutOfScreen(o.Rect(), s.Rules.ScreenH) {
			continue
		}
		kept = append(kept, o)
	}
	next.Objects = kept

	if livesLost > 0 {
		next.Lives = max(0, s.Lives-livesLost)
	}
	if collected > 0 {
		next.Coins = s.Coins + collected
		next.Score += float64(collected * s.Rules.BonusPoints)
	}

	if next.Lives <= 0 {
		next.Over = true
		next.Events = append(next.Events, Event{
			Type:    EventGameOver,
			ClockMs: next.ClockMs,
			X:       player.X + player.W/2,
			Y:       player.Y + player.H/2,
		})
	}

	return next
}

// spawn creates a new object of the given kind at a random column above the screen.
func (s *State) spawn(kind Kind, rng *rand.Rand) FallingObject {
	w, h := s.Rules.HazardW, s.Rules.HazardH
	if kind == KindBonus {
		w, h = s.Rules.BonusW, s.Rules.BonusH
	}
	span := s.Rules.ScreenW - w
	if span < 0 {
		span = 0
	}

	o := FallingObject{
		ID:     s.NextID,
		Kind:   kind,
		X:      rng.Float32() * span,
		Y:      s.Rules.SpawnY,
		Width:  w,
		Height: h,
	}
	s.NextID++
	return o
}

// MovePlayer places the player's left edge at x, clamped to the screen.
func MovePlayer(s State, x float32) State {
	s.Player.X = systems.Clamp(x, 0, s.Rules.ScreenW-s.Player.Width)
	return s
}

// MovePlayerToPointer centers the player under a pointer or touch at pointerX.
func MovePlayerToPointer(s State, pointerX float32) State {
	return MovePlayer(s, pointerX-s.Player.Width/2)
}

// NudgePlayer moves the player one keyboard step; dir is -1 (left) or +1 (right).
// The step is scaled by elapsedMs relative to the reference frame.
func NudgePlayer(s State, dir int, elapsedMs float64) State {
	if dir == 0 {
		return s
	}
	frames := elapsedMs / s.Rules.FrameMs
	dx := float32(math.Copysign(float64(s.Rules.PlayerSpeed)*frames, float64(dir)))
	return MovePlayer(s, s.Player.X+dx)
}
