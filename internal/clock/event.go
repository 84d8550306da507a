package clock

import "time"

// EventKind identifies the kind of a clock event.
type EventKind int

const (
	EventTimeUpdate EventKind = iota
	EventPlay
	EventPause
	EventEnded
	EventSeeking
	EventSeeked
	EventDurationChange
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventTimeUpdate:
		return "time_update"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventEnded:
		return "ended"
	case EventSeeking:
		return "seeking"
	case EventSeeked:
		return "seeked"
	case EventDurationChange:
		return "duration_change"
	default:
		return "unknown"
	}
}

// Event is an immutable snapshot of the timeline at the moment of emission.
// Events are created by the Clock and never mutated afterwards.
type Event struct {
	Kind      EventKind
	Timestamp time.Time
	Position  time.Duration
	Duration  time.Duration
	Paused    bool
	Rate      float64
}
