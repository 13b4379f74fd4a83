package game

// GameOverFunc receives the final score and coin count of a finished run.
type GameOverFunc func(score, coins int)

// Session drives one run on screen: it feeds frame time and player input into
// Step and reports the end of the run exactly once.
type Session struct {
	state      State
	onGameOver GameOverFunc
	onBack     func()

	pointerX   float32
	hasPointer bool
	nudge      int

	stopped  bool
	reported bool
}

// NewSession starts a run with the given rules. onGameOver and onBack may be nil.
func NewSession(rules Rules, seed uint64, onGameOver GameOverFunc, onBack func()) *Session {
	return &Session{
		state:      NewState(rules, seed),
		onGameOver: onGameOver,
		onBack:     onBack,
	}
}

// State returns the current snapshot.
func (s *Session) State() State {
	return s.state
}

// Running reports whether the session still accepts frames.
func (s *Session) Running() bool {
	return !s.stopped && !s.state.Over
}

// PointerMoved records a drag or touch position; it is applied on the next frame.
func (s *Session) PointerMoved(x float32) {
	s.pointerX = x
	s.hasPointer = true
}

// Nudge sets keyboard direction for the next frame: -1 left, +1 right, 0 none.
func (s *Session) Nudge(dir int) {
	s.nudge = dir
}

// Update advances one frame. It returns the events of that frame.
func (s *Session) Update(elapsedMs float64) []Event {
	if !s.Running() {
		return nil
	}
	if limit := s.state.Rules.MaxStepMs; limit > 0 && elapsedMs > limit {
		elapsedMs = limit
	}

	st := s.state
	if s.hasPointer {
		st = MovePlayerToPointer(st, s.pointerX)
		s.hasPointer = false
	}
	if s.nudge != 0 {
		st = NudgePlayer(st, s.nudge, elapsedMs)
		s.nudge = 0
	}

	s.state = Step(st, elapsedMs)

	if s.state.Over && !s.reported {
		s.reported = true
		if s.onGameOver != nil {
			s.onGameOver(s.state.FinalScore(), s.state.Coins)
		}
	}
	return s.state.Events
}

// Back abandons the run without reporting a result.
func (s *Session) Back() {
	s.Stop()
	if s.onBack != nil {
		s.onBack()
	}
}

// Stop cancels any further frames. Safe to call more than once.
func (s *Session) Stop() {
	s.stopped = true
}
