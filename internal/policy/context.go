package policy

import (
	"time"

	"github.com/llehouerou/cuesync/internal/subtitle"
)

// LoopMode selects between endless and counted looping.
type LoopMode int

const (
	LoopInfinite LoopMode = iota
	LoopFinite
)

// String returns the mode name.
func (m LoopMode) String() string {
	switch m {
	case LoopInfinite:
		return "infinite"
	case LoopFinite:
		return "finite"
	default:
		return "unknown"
	}
}

// LoopConfig controls looping over the active cue.
type LoopConfig struct {
	Enabled   bool
	Mode      LoopMode
	Remaining int // passes left in finite mode
}

// AutoPauseConfig controls pausing at the end of each cue.
type AutoPauseConfig struct {
	Enabled     bool
	AutoResume  bool
	ResumeAfter time.Duration
}

// Context is the single source of truth the pipeline reads each tick.
//
// ActiveIndex is always -1 or a valid index into Cues, consistent with Time
// within tolerance. The orchestrator's commit phase is the only writer;
// policies treat the context as read-only.
type Context struct {
	Time     time.Duration
	PrevTime time.Duration
	Duration time.Duration

	Paused  bool
	Ended   bool
	Seeking bool
	Rate    float64
	Volume  float64
	Muted   bool

	ActiveIndex int
	Cues        []subtitle.Cue

	Loop      LoopConfig
	AutoPause AutoPauseConfig
}

// ActiveCue returns the cue at ActiveIndex, or nil.
func (c *Context) ActiveCue() *subtitle.Cue {
	if c.ActiveIndex < 0 || c.ActiveIndex >= len(c.Cues) {
		return nil
	}
	return &c.Cues[c.ActiveIndex]
}
