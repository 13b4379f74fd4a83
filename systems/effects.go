package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/poopdodge/components"
)

// EffectSystem spawns and ages particle bursts in an ECS world.
type EffectSystem struct {
	world  *ecs.World
	mapper *ecs.Map3[components.Position, components.Velocity, components.Particle]
	filter *ecs.Filter3[components.Position, components.Velocity, components.Particle]
	rng    *rand.Rand

	maxParticles int
	count        int
	dead         []ecs.Entity
}

// NewEffectSystem creates an effect system in w holding at most maxParticles.
func NewEffectSystem(w *ecs.World, maxParticles int, rng *rand.Rand) *EffectSystem {
	if maxParticles <= 0 {
		maxParticles = 400
	}
	return &EffectSystem{
		world:        w,
		mapper:       ecs.NewMap3[components.Position, components.Velocity, components.Particle](w),
		filter:       ecs.NewFilter3[components.Position, components.Velocity, components.Particle](w),
		rng:          rng,
		maxParticles: maxParticles,
	}
}

// EmitSplat emits a radial burst of n heavy particles at (x, y).
func (s *EffectSystem) EmitSplat(x, y float32, n int) {
	for i := 0; i < n; i++ {
		angle := s.rng.Float64() * 2 * math.Pi
		speed := float32(1.5 + s.rng.Float64()*2.5)
		vx := float32(math.Cos(angle)) * speed
		vy := float32(math.Sin(angle))*speed - 1.5 // kick upward before gravity
		life := 30 + float32(s.rng.Intn(20))
		s.emit(components.ParticleSplat, x, y, vx, vy, life, 3+s.rng.Float32()*3)
	}
}

// EmitSparkle emits n light particles rising from (x, y).
func (s *EffectSystem) EmitSparkle(x, y float32, n int) {
	for i := 0; i < n; i++ {
		vx := (s.rng.Float32() - 0.5) * 2.5
		vy := -1 - s.rng.Float32()*1.5
		life := 25 + float32(s.rng.Intn(20))
		s.emit(components.ParticleSparkle, x, y, vx, vy, life, 1.5+s.rng.Float32()*2)
	}
}

// EmitDust emits a slow ring of n particles around (x, y).
func (s *EffectSystem) EmitDust(x, y float32, n int) {
	for i := 0; i < n; i++ {
		angle := float64(i) / float64(max(n, 1)) * 2 * math.Pi
		speed := float32(0.4 + s.rng.Float64()*0.6)
		vx := float32(math.Cos(angle)) * speed
		vy := float32(math.Sin(angle)) * speed
		life := 60 + float32(s.rng.Intn(40))
		s.emit(components.ParticleDust, x, y, vx, vy, life, 4+s.rng.Float32()*4)
	}
}

func (s *EffectSystem) emit(kind components.ParticleKind, x, y, vx, vy, life, size float32) {
	if s.count >= s.maxParticles {
		return
	}
	pos := components.Position{
		X: x + (s.rng.Float32()-0.5)*6,
		Y: y + (s.rng.Float32()-0.5)*6,
	}
	vel := components.Velocity{X: vx, Y: vy}
	p := components.Particle{Kind: kind, Life: life, MaxLife: life, Size: size}
	s.mapper.NewEntity(&pos, &vel, &p)
	s.count++
}

// Update ages and moves all particles by frames reference frames and removes
// expired ones.
func (s *EffectSystem) Update(frames float32) {
	if frames <= 0 {
		return
	}

	s.dead = s.dead[:0]
	query := s.filter.Query()
	for query.Next() {
		pos, vel, p := query.Get()

		p.Life -= frames
		if p.Life <= 0 {
			s.dead = append(s.dead, query.Entity())
			continue
		}

		switch p.Kind {
		case components.ParticleSplat:
			vel.Y += 0.25 * frames
		case components.ParticleSparkle:
			vel.Y -= 0.02 * frames
		case components.ParticleDust:
			vel.Y += 0.005 * frames
		}

		drag := float32(math.Pow(0.96, float64(frames)))
		vel.X *= drag
		vel.Y *= drag

		pos.X += vel.X * frames
		pos.Y += vel.Y * frames
	}

	// Remove after the query has finished; the world is locked while iterating.
	for _, e := range s.dead {
		s.world.RemoveEntity(e)
	}
	s.count -= len(s.dead)
}

// Each calls fn for every live particle.
func (s *EffectSystem) Each(fn func(pos components.Position, p components.Particle)) {
	query := s.filter.Query()
	for query.Next() {
		pos, _, p := query.Get()
		fn(*pos, *p)
	}
}

// Clear removes all particles.
func (s *EffectSystem) Clear() {
	s.dead = s.dead[:0]
	query := s.filter.Query()
	for query.Next() {
		s.dead = append(s.dead, query.Entity())
	}
	for _, e := range s.dead {
		s.world.RemoveEntity(e)
	}
	s.count = 0
}

// Count returns the current number of live particles.
func (s *EffectSystem) Count() int {
	return s.count
}
