package telemetry

import (
	"log/slog"
	"time"
)

// Phase names within one frame.
const (
	PhaseInput   = "input"
	PhaseStep    = "step"
	PhaseEffects = "effects"
	PhaseDraw    = "draw"
)

var phases = [...]string{PhaseInput, PhaseStep, PhaseEffects, PhaseDraw}

// Phases returns the frame phases in execution order.
func Phases() []string {
	return append([]string(nil), phases[:]...)
}

func phaseIndex(name string) int {
	for i, p := range phases {
		if p == name {
			return i
		}
	}
	return -1
}

// frameSample is the timing of one frame. Phases are indexed like phases.
type frameSample struct {
	total  time.Duration
	phases [len(phases)]time.Duration
}

// PerfCollector times the phases of each frame over a rolling window.
// Only the names returned by Phases are tracked; other phase names still end
// the previous phase but are not recorded.
type PerfCollector struct {
	window []frameSample
	next   int
	filled int
	budget time.Duration

	cur        frameSample
	tickStart  time.Time
	phaseStart time.Time
	phase      int

	lastPresent time.Time
	presented   time.Duration

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		window: make([]frameSample, windowSize),
		phase:  -1,
		now:    time.Now,
	}
}

// SetBudget sets the frame time above which a frame counts as over budget.
// Zero disables the count.
func (p *PerfCollector) SetBudget(d time.Duration) {
	p.budget = d
}

// StartTick begins timing a frame.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.cur = frameSample{}
	p.phase = -1
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phaseIndex(phase)
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase >= 0 {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.phase = -1
}

// EndTick finishes the frame and adds it to the window.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.window[p.next] = p.cur
	p.next = (p.next + 1) % len(p.window)
	if p.filled < len(p.window) {
		p.filled++
	}
}

// RecordFrame records wall time between presented frames.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastPresent.IsZero() {
		p.presented = now.Sub(p.lastPresent)
	}
	p.lastPresent = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Per-phase average duration and share of the average frame, in percent.
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64
	OverBudget     int // frames in the window slower than the budget

	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the frames currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration, len(phases)),
		PhasePct:      make(map[string]float64, len(phases)),
		FrameDuration: p.presented,
	}
	if p.presented > 0 {
		s.FPS = float64(time.Second) / float64(p.presented)
	}
	if p.filled == 0 {
		return s
	}

	var total time.Duration
	var phaseSum [len(phases)]time.Duration
	for i, f := range p.window[:p.filled] {
		total += f.total
		if i == 0 || f.total < s.MinTickDuration {
			s.MinTickDuration = f.total
		}
		if f.total > s.MaxTickDuration {
			s.MaxTickDuration = f.total
		}
		if p.budget > 0 && f.total > p.budget {
			s.OverBudget++
		}
		for j, d := range f.phases {
			phaseSum[j] += d
		}
	}

	n := time.Duration(p.filled)
	s.AvgTickDuration = total / n
	for j, name := range phases {
		if phaseSum[j] == 0 {
			continue
		}
		avg := phaseSum[j] / n
		s.PhaseAvg[name] = avg
		if s.AvgTickDuration > 0 {
			s.PhasePct[name] = float64(avg) / float64(s.AvgTickDuration) * 100
		}
	}
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// LogStats logs the stats at debug level.
func (s PerfStats) LogStats() {
	slog.Debug("perf", "stats", s)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("over_budget", s.OverBudget),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, name := range phases {
		if pct := s.PhasePct[name]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(name+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	Run         int     `csv:"run"`
	AvgTickUS   int64   `csv:"avg_tick_us"`
	MinTickUS   int64   `csv:"min_tick_us"`
	MaxTickUS   int64   `csv:"max_tick_us"`
	TicksPerSec float64 `csv:"ticks_per_sec"`
	OverBudget  int     `csv:"over_budget"`
	InputPct    float64 `csv:"input_pct"`
	StepPct     float64 `csv:"step_pct"`
	EffectsPct  float64 `csv:"effects_pct"`
	DrawPct     float64 `csv:"draw_pct"`
}

// ToCSV flattens the stats for run into a perf.csv row.
func (s PerfStats) ToCSV(run int) PerfStatsCSV {
	return PerfStatsCSV{
		Run:         run,
		AvgTickUS:   s.AvgTickDuration.Microseconds(),
		MinTickUS:   s.MinTickDuration.Microseconds(),
		MaxTickUS:   s.MaxTickDuration.Microseconds(),
		TicksPerSec: s.TicksPerSecond,
		OverBudget:  s.OverBudget,
		InputPct:    s.PhasePct[PhaseInput],
		StepPct:     s.PhasePct[PhaseStep],
		EffectsPct:  s.PhasePct[PhaseEffects],
		DrawPct:     s.PhasePct[PhaseDraw],
	}
}
