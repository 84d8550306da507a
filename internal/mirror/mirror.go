// Package mirror defines the one-way state surface the engine pushes to a
// UI layer.
package mirror

import "time"

// Interface receives engine state for rendering. Calls arrive only from the
// pipeline's updateFacts and commit phases; the engine never reads the
// mirror back, so implementations are free to coalesce or debounce.
type Interface interface {
	SetCurrentTime(t time.Duration)
	SetDuration(d time.Duration)
	SetPlaying(playing bool)
	SetPlaybackRate(rate float64)
	SetVolume(v float64)
	SetMuted(muted bool)
	SetSeeking(seeking bool)
	SetEnded(ended bool)
	SetActiveCueIndex(index int)
	UpdateLoopRemaining(remaining int)
	SetNote(note string)
}

// Verify implementations at compile time.
var (
	_ Interface = (*Store)(nil)
	_ Interface = Nop{}
)

// Nop discards all updates.
type Nop struct{}

func (Nop) SetCurrentTime(time.Duration) {}
func (Nop) SetDuration(time.Duration)    {}
func (Nop) SetPlaying(bool)              {}
func (Nop) SetPlaybackRate(float64)      {}
func (Nop) SetVolume(float64)            {}
func (Nop) SetMuted(bool)                {}
func (Nop) SetSeeking(bool)              {}
func (Nop) SetEnded(bool)                {}
func (Nop) SetActiveCueIndex(int)        {}
func (Nop) UpdateLoopRemaining(int)      {}
func (Nop) SetNote(string)               {}
