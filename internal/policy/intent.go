// Package policy defines the per-tick intent model and the policy modules
// that propose intents from the playback context.
package policy

import "time"

// Domain is the disjoint concern an intent addresses. The reducer picks one
// winner per domain per tick.
type Domain string

const (
	DomainTransport Domain = "transport"
	DomainSeek      Domain = "seek"
	DomainSubtitle  Domain = "subtitle"
	DomainLoop      Domain = "loop"
	DomainSchedule  Domain = "schedule"
	DomainUI        Domain = "ui"
)

// Reason attributes an intent to the condition that produced it.
type Reason string

const (
	ReasonCueChanged    Reason = "cue_changed"
	ReasonLoopRestart   Reason = "loop_restart"
	ReasonLoopExhausted Reason = "loop_exhausted"
	ReasonSentenceEnd   Reason = "sentence_end"
	ReasonAutoResume    Reason = "auto_resume"
)

// Intent priorities. Within a domain the highest priority wins; ties go to
// the earliest-registered policy.
const (
	PriorityLow    = 10
	PriorityNormal = 50
	PriorityHigh   = 100
)

// TransportAction is a play/pause request.
type TransportAction int

const (
	TransportPlay TransportAction = iota
	TransportPause
)

// String returns the action name.
func (a TransportAction) String() string {
	if a == TransportPlay {
		return "play"
	}
	return "pause"
}

// TransportIntent proposes starting or stopping playback.
type TransportIntent struct {
	Action TransportAction
}

// SeekIntent proposes moving the playback position.
type SeekIntent struct {
	Target time.Duration
}

// SubtitleIntent proposes a new active cue index (-1 for none).
type SubtitleIntent struct {
	Index int
}

// LoopIntent proposes updating the loop bookkeeping.
type LoopIntent struct {
	Remaining int
	Disable   bool
}

// ScheduleAction identifies a deferred action to arm.
type ScheduleAction int

const (
	// ScheduleResume resumes playback after the auto-pause hold.
	ScheduleResume ScheduleAction = iota
)

// String returns the action name.
func (a ScheduleAction) String() string {
	if a == ScheduleResume {
		return "resume"
	}
	return "unknown"
}

// ScheduleIntent proposes arming a deferred action.
type ScheduleIntent struct {
	Delay  time.Duration
	Action ScheduleAction
}

// UIIntent proposes a user-visible status note.
type UIIntent struct {
	Note string
}

// Intent is one policy's proposal for the current tick. Exactly one payload
// field matching Domain is set; the rest are nil. Intents live from collect
// to reduce and are discarded at end of tick.
type Intent struct {
	Domain   Domain
	Priority int
	Reason   Reason
	Policy   string // emitting policy, for trace attribution

	Transport *TransportIntent
	Seek      *SeekIntent
	Subtitle  *SubtitleIntent
	Loop      *LoopIntent
	Schedule  *ScheduleIntent
	UI        *UIIntent
}
