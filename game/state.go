// Package game implements the falling-object dodge loop as a pure per-frame update.
package game

import (
	"math"
	"math/rand/v2"

	"github.com/pthm-cable/poopdodge/config"
	"github.com/pthm-cable/poopdodge/systems"
)

// Kind identifies the type of a falling object.
type Kind uint8

const (
	KindHazard Kind = iota // costs a life on contact
	KindBonus              // coin: grants score and a claimable credit
)

func (k Kind) String() string {
	switch k {
	case KindHazard:
		return "poop"
	case KindBonus:
		return "coin"
	}
	return "unknown"
}

// FallingObject is a hazard or bonus moving straight down the screen.
type FallingObject struct {
	ID            uint64
	Kind          Kind
	X, Y          float32
	Width, Height float32
}

// Rect returns the object's bounding box.
func (o FallingObject) Rect() systems.Rect {
	return systems.Rect{X: o.X, Y: o.Y, W: o.Width, H: o.Height}
}

// Player is the single rectangle steered by the user. Y never changes.
type Player struct {
	X, Y          float32
	Width, Height float32
}

// Rect returns the player's bounding box.
func (p Player) Rect() systems.Rect {
	return systems.Rect{X: p.X, Y: p.Y, W: p.Width, H: p.Height}
}

// Rules is the immutable parameter set a run is played with.
type Rules struct {
	ScreenW, ScreenH float32

	PlayerW, PlayerH float32
	PlayerY          float32
	PlayerSpeed      float32

	HazardW, HazardH      float32
	HazardBaseSpeed       float64
	HazardSpeedIncrement  float64
	HazardRampIntervalSec float64
	HazardSpawnMs         float64

	BonusW, BonusH float32
	BonusSpeed     float64
	BonusSpawnMs   float64
	BonusPoints    int

	InitialLives   int
	SurvivalPerSec float64
	SpawnY         float32
	FrameMs        float64
	MaxStepMs      float64
}

// RulesFromConfig extracts run rules from the loaded configuration.
func RulesFromConfig(cfg *config.Config) Rules {
	return Rules{
		ScreenW:     cfg.Derived.ScreenW32,
		ScreenH:     cfg.Derived.ScreenH32,
		PlayerW:     float32(cfg.Player.Width),
		PlayerH:     float32(cfg.Player.Height),
		PlayerY:     cfg.Derived.PlayerY,
		PlayerSpeed: float32(cfg.Player.Speed),

		HazardW:               float32(cfg.Hazard.Width),
		HazardH:               float32(cfg.Hazard.Height),
		HazardBaseSpeed:       cfg.Hazard.InitialSpeed,
		HazardSpeedIncrement:  cfg.Hazard.SpeedIncrement,
		HazardRampIntervalSec: cfg.Hazard.RampInterval,
		HazardSpawnMs:         cfg.Hazard.SpawnIntervalMs,

		BonusW:       float32(cfg.Bonus.Width),
		BonusH:       float32(cfg.Bonus.Height),
		BonusSpeed:   cfg.Bonus.Speed,
		BonusSpawnMs: cfg.Bonus.SpawnIntervalMs,
		BonusPoints:  cfg.Bonus.Points,

		InitialLives:   cfg.Game.InitialLives,
		SurvivalPerSec: cfg.Game.SurvivalPointsPerSecond,
		SpawnY:         float32(cfg.Game.SpawnY),
		FrameMs:        cfg.Derived.FrameMs,
		MaxStepMs:      cfg.Game.MaxStepMs,
	}
}

// HazardSpeedAt returns the hazard fall speed (pixels per frame) after
// clockMs milliseconds of play. It is a step function of elapsed seconds.
func (r Rules) HazardSpeedAt(clockMs float64) float64 {
	steps := math.Floor(clockMs / 1000 / r.HazardRampIntervalSec)
	return r.HazardBaseSpeed + steps*r.HazardSpeedIncrement
}

// State is a complete snapshot of one run.
type State struct {
	Rules Rules

	Player  Player
	Objects []FallingObject

	Score       float64 // survival points accrue fractionally
	Coins       int
	Lives       int
	ClockMs     float64
	HazardSpeed float64

	LastHazardSpawnMs float64
	LastBonusSpawnMs  float64
	NextID            uint64

	Over   bool
	Events []Event // events produced by the most recent Step

	rng rand.PCG
}

// NewState returns the initial state of a run: player centered, full lives,
// nothing falling yet.
func NewState(rules Rules, seed uint64) State {
	return State{
		Rules: rules,
		Player: Player{
			X:      rules.ScreenW/2 - rules.PlayerW/2,
			Y:      rules.PlayerY,
			Width:  rules.PlayerW,
			Height: rules.PlayerH,
		},
		Lives:       rules.InitialLives,
		HazardSpeed: rules.HazardBaseSpeed,
		rng:         *rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
}

// FinalScore returns the score reported at game over.
func (s State) FinalScore() int {
	return int(math.Floor(s.Score))
}

// ElapsedSeconds returns the run length in seconds.
func (s State) ElapsedSeconds() float64 {
	return s.ClockMs / 1000
}

// Count returns how many live objects of the given kind are falling.
func (s State) Count(kind Kind) int {
	n := 0
	for i := range s.Objects {
		if s.Objects[i].Kind == kind {
			n++
		}
	}
	return n
}
