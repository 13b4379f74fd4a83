package game

// EventType identifies something that happened during a step.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventHazardHit
	EventBonusCollected
	EventGameOver
)

func (t EventType) String() string {
	switch t {
	case EventSpawn:
		return "spawn"
	case EventHazardHit:
		return "hazard_hit"
	case EventBonusCollected:
		return "bonus_collected"
	case EventGameOver:
		return "game_over"
	}
	return "unknown"
}

// Event is a single occurrence inside a step, positioned where it happened so
// effects can be drawn there.
type Event struct {
	Type     EventType
	ClockMs  float64
	ObjectID uint64
	Kind     Kind
	X, Y     float32 // center of the object involved
}

func objectEvent(t EventType, clockMs float64, o FallingObject) Event {
	cx, cy := o.Rect().Center()
	return Event{
		Type:     t,
		ClockMs:  clockMs,
		ObjectID: o.ID,
		Kind:     o.Kind,
		X:        cx,
		Y:        cy,
	}
}
