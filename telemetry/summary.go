package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a set of finished runs.
type Summary struct {
	Runs         int
	MeanScore    float64
	StdDevScore  float64
	P50Score     float64
	P90Score     float64
	BestScore    int
	MeanDuration float64 // seconds
	TotalCoins   int
	TotalReward  int
	NewHighs     int
}

// Summarize computes score and coin statistics over records.
func Summarize(records []RunRecord) Summary {
	n := len(records)
	if n == 0 {
		return Summary{}
	}

	scores := make([]float64, n)
	durations := make([]float64, n)
	var s Summary
	s.Runs = n
	for i, r := range records {
		scores[i] = float64(r.Score)
		durations[i] = r.DurationSec
		s.TotalCoins += r.Coins
		s.TotalReward += r.RewardTokens
		if r.Score > s.BestScore {
			s.BestScore = r.Score
		}
		if r.NewHighScore {
			s.NewHighs++
		}
	}

	s.MeanScore = stat.Mean(scores, nil)
	if n > 1 {
		s.StdDevScore = stat.StdDev(scores, nil)
	}
	s.MeanDuration = stat.Mean(durations, nil)

	sort.Float64s(scores)
	s.P50Score = stat.Quantile(0.5, stat.Empirical, scores, nil)
	s.P90Score = stat.Quantile(0.9, stat.Empirical, scores, nil)

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("runs", s.Runs),
		slog.Float64("mean_score", round2(s.MeanScore)),
		slog.Float64("stddev_score", round2(s.StdDevScore)),
		slog.Float64("p50_score", s.P50Score),
		slog.Float64("p90_score", s.P90Score),
		slog.Int("best_score", s.BestScore),
		slog.Float64("mean_duration_sec", round2(s.MeanDuration)),
		slog.Int("total_coins", s.TotalCoins),
		slog.Int("total_reward", s.TotalReward),
		slog.Int("new_highs", s.NewHighs),
	)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
