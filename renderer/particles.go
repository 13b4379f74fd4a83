package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/poopdodge/components"
)

// ParticleSource yields live particles. *systems.EffectSystem implements it.
type ParticleSource interface {
	Each(fn func(pos components.Position, p components.Particle))
}

// ParticleRenderer renders effect particles.
type ParticleRenderer struct{}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{}
}

// Draw renders all particles, fading and shrinking them as they age.
func (r *ParticleRenderer) Draw(src ParticleSource) {
	src.Each(func(pos components.Position, p components.Particle) {
		lifeRatio := p.LifeRatio()

		var color rl.Color
		switch p.Kind {
		case components.ParticleSplat:
			color = rl.Color{R: 110, G: 75, B: 50, A: uint8(lifeRatio * 230)}
		case components.ParticleSparkle:
			color = rl.Color{R: 255, G: 223, B: 70, A: uint8(lifeRatio * 255)}
		case components.ParticleDust:
			color = rl.Color{R: 160, G: 150, B: 140, A: uint8(lifeRatio * 160)}
		}

		size := p.Size * (0.4 + 0.6*lifeRatio)
		if size < 0.5 {
			size = 0.5
		}
		rl.DrawCircleV(rl.Vector2{X: pos.X, Y: pos.Y}, size, color)
	})
}
