package telemetry

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	records := []RunRecord{
		{Score: 10, Coins: 1, DurationSec: 10},
		{Score: 20, Coins: 2, DurationSec: 20, NewHighScore: true},
		{Score: 30, Coins: 12, DurationSec: 30, RewardTokens: 1, NewHighScore: true},
		{Score: 40, Coins: 4, DurationSec: 40, NewHighScore: true},
		{Score: 50, Coins: 25, DurationSec: 50, RewardTokens: 2, NewHighScore: true},
	}

	s := Summarize(records)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"runs", float64(s.Runs), 5},
		{"mean", s.MeanScore, 30},
		{"stddev", s.StdDevScore, math.Sqrt(250)},
		{"p50", s.P50Score, 30},
		{"p90", s.P90Score, 50},
		{"best", float64(s.BestScore), 50},
		{"duration", s.MeanDuration, 30},
		{"coins", float64(s.TotalCoins), 44},
		{"reward", float64(s.TotalReward), 3},
		{"new highs", float64(s.NewHighs), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 0.001 {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestSummarizeSingleAndEmpty(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", s)
	}

	s := Summarize([]RunRecord{{Score: 7, Coins: 3}})
	if s.StdDevScore != 0 {
		t.Errorf("single-run stddev = %v, want 0", s.StdDevScore)
	}
	if s.P50Score != 7 || s.P90Score != 7 || s.MeanScore != 7 {
		t.Errorf("single-run summary = %+v", s)
	}
}
