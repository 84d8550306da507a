// Package device defines the playback-control boundary to the media backend.
package device

import "time"

// Interface is the control surface the engine drives. The backend behind it
// does the actual decoding and rendering; the engine only issues commands
// from its execute phase (or verification logic) and reads state back
// through the getters.
//
// Play may complete asynchronously on the backend side: a nil return means
// the command was accepted, not that playback necessarily started. The
// engine verifies shortly afterwards and re-syncs if the backend disagrees.
type Interface interface {
	Play() error
	Pause() error
	Seek(pos time.Duration) error
	SetRate(rate float64) error
	SetVolume(v float64) error
	SetMuted(muted bool) error

	Position() time.Duration
	Duration() time.Duration
	Paused() bool
	Rate() float64
	Volume() float64
	Muted() bool
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
