package game

// RunHeadless plays one run with the autopilot steering, one reference frame
// per step, until the run ends or maxMs of game time has passed. maxMs <= 0
// means no cap. onFrame, if non-nil, sees the events of every frame.
func RunHeadless(rules Rules, ap AutopilotParams, seed uint64, maxMs float64, onFrame func([]Event)) State {
	s := NewSession(rules, seed, nil, nil)
	for s.Running() {
		if maxMs > 0 && s.state.ClockMs >= maxMs {
			break
		}
		s.PointerMoved(ap.Target(s.state))
		events := s.Update(rules.FrameMs)
		if onFrame != nil && len(events) > 0 {
			onFrame(events)
		}
	}
	s.Stop()
	return s.state
}
