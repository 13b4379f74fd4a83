// Package components defines ECS components for visual effects.
package components

// ParticleKind identifies the look and motion of an effect particle.
type ParticleKind uint8

const (
	ParticleSplat   ParticleKind = iota // hazard hit: heavy, falls
	ParticleSparkle                     // coin pickup: light, floats up
	ParticleDust                        // game over: slow drift
)

// Position represents a particle's screen position.
type Position struct {
	X, Y float32
}

// Velocity represents a particle's velocity in pixels per frame.
type Velocity struct {
	X, Y float32
}

// Particle holds lifetime and appearance of an effect particle.
type Particle struct {
	Kind    ParticleKind
	Life    float32 // frames remaining
	MaxLife float32
	Size    float32
}

// LifeRatio returns remaining life in [0, 1].
func (p Particle) LifeRatio() float32 {
	if p.MaxLife <= 0 {
		return 0
	}
	r := p.Life / p.MaxLife
	if r < 0 {
		return 0
	}
	return r
}
