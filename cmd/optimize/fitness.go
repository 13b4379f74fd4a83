package main

import (
	"math"
	"sync"

	"github.com/pthm-cable/poopdodge/config"
	"github.com/pthm-cable/poopdodge/game"
)

// coinWeight converts collected coins into seconds of survival in the fitness.
const coinWeight = 0.5

// FitnessEvaluator plays headless autopilot runs and scores the weights.
type FitnessEvaluator struct {
	params *ParamVector
	rules  game.Rules
	maxMs  float64
	seeds  []uint64

	mu          sync.Mutex
	lastSeconds float64
	lastCoins   float64
}

// NewFitnessEvaluator creates an evaluator playing every candidate on the same seeds.
func NewFitnessEvaluator(params *ParamVector, maxSeconds float64, seeds []uint64, cfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params: params,
		rules:  game.RulesFromConfig(cfg),
		maxMs:  maxSeconds * 1000,
		seeds:  seeds,
	}
}

// Last returns the mean survival seconds and coins of the most recent evaluation.
func (fe *FitnessEvaluator) Last() (seconds, coins float64) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSeconds, fe.lastCoins
}

// runResult holds the outcome of one seed.
type runResult struct {
	seconds float64
	coins   int
}

// Evaluate computes fitness for raw parameter values (lower = better):
// negative mean survival time plus a bonus per collected coin.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	ap := fe.params.Autopilot(x)

	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			st := game.RunHeadless(fe.rules, ap, s, fe.maxMs, nil)
			results[idx] = runResult{seconds: st.ElapsedSeconds(), coins: st.Coins}
		}(i, seed)
	}
	wg.Wait()

	seconds, coins := aggregate(results)

	fe.mu.Lock()
	fe.lastSeconds, fe.lastCoins = seconds, coins
	fe.mu.Unlock()

	return fitness(seconds, coins)
}

func aggregate(results []runResult) (seconds, coins float64) {
	if len(results) == 0 {
		return 0, 0
	}
	for _, r := range results {
		seconds += r.seconds
		coins += float64(r.coins)
	}
	n := float64(len(results))
	return seconds / n, coins / n
}

func fitness(seconds, coins float64) float64 {
	f := -(seconds + coinWeight*coins)
	if math.IsNaN(f) {
		return 0
	}
	return f
}
