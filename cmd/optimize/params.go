package main

import (
	"math"

	"github.com/pthm-cable/poopdodge/config"
	"github.com/pthm-cable/poopdodge/game"
)

// ParamSpec defines a single optimizable autopilot weight.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the parameter set, with defaults taken from cfg.
func NewParamVector(cfg *config.Config) *ParamVector {
	ap := game.AutopilotFromConfig(cfg)
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "lookahead", Path: "autopilot.lookahead", Min: 60, Max: 600, Default: ap.Lookahead},
			{Name: "lanes", Path: "autopilot.lanes", Min: 6, Max: 48, Default: float64(ap.Lanes)},
			{Name: "hazard_cost", Path: "autopilot.hazard_cost", Min: 50, Max: 5000, Default: ap.HazardCost},
			{Name: "bonus_reward", Path: "autopilot.bonus_reward", Min: 0, Max: 800, Default: ap.BonusReward},
			{Name: "move_cost", Path: "autopilot.move_cost", Min: 0, Max: 3, Default: ap.MoveCost},
			{Name: "hazard_padding", Path: "autopilot.hazard_padding", Min: 0, Max: 1, Default: ap.HazardPadding},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Min(math.Max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// Autopilot converts raw values into autopilot weights. Order must match Specs.
func (pv *ParamVector) Autopilot(values []float64) game.AutopilotParams {
	c := pv.Clamp(values)
	return game.AutopilotParams{
		Lookahead:     c[0],
		Lanes:         int(math.Round(c[1])),
		HazardCost:    c[2],
		BonusReward:   c[3],
		MoveCost:      c[4],
		HazardPadding: c[5],
	}
}

// ApplyToConfig writes the weights for values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	ap := pv.Autopilot(values)
	cfg.Autopilot = config.AutopilotConfig{
		Lookahead:     ap.Lookahead,
		Lanes:         ap.Lanes,
		HazardCost:    ap.HazardCost,
		BonusReward:   ap.BonusReward,
		MoveCost:      ap.MoveCost,
		HazardPadding: ap.HazardPadding,
	}
}
