// Package subtitle provides the cue model and active-cue resolution.
package subtitle

import "time"

// Cue is a single timed subtitle entry.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// Duration returns the display duration of the cue.
func (c Cue) Duration() time.Duration {
	return c.End - c.Start
}

// Track is an ordered, non-overlapping list of cues.
type Track struct {
	Cues     []Cue
	Language string
}

// IsEmpty returns true if the track has no cues.
func (t *Track) IsEmpty() bool {
	return t == nil || len(t.Cues) == 0
}
