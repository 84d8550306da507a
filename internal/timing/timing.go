// Package timing provides tolerance-aware comparisons on playback positions.
//
// Media backends report positions with a few milliseconds of jitter: a
// reported time can land slightly before a nominal cue start or slightly
// after a nominal cue end. Every boundary comparison in the engine goes
// through this package instead of exact equality so that jitter never flips
// a decision back and forth across a boundary.
package timing

import (
	"time"

	"github.com/llehouerou/cuesync/internal/log"
)

// Tolerance is the default slack applied to boundary comparisons.
const Tolerance = 2 * time.Millisecond

// Inside reports whether t falls within [start-tol, end+tol).
//
// The interval is left-closed and right-open so that adjacent cues never
// both contain the same instant, while the symmetric slack absorbs
// decode jitter on both edges.
func Inside(start, end, t, tol time.Duration) bool {
	return t >= start-tol && t < end+tol
}

// CrossedEnd reports whether the position moved from before an interval's
// end boundary to at-or-past it between two consecutive reports. It is true
// for exactly one (prev, cur) pair per pass over the boundary, so "cue just
// ended" fires once and not on every subsequent report.
func CrossedEnd(prev, cur, end, tol time.Duration) bool {
	return prev < end+tol && cur >= end+tol
}

// Equals reports whether a and b are within tol of each other.
func Equals(a, b, tol time.Duration) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < tol
}

// Clamp constrains v to [lo, hi]. An inverted range is a caller bug; it is
// logged and v is returned unchanged rather than panicking mid-tick.
func Clamp(v, lo, hi time.Duration) time.Duration {
	if lo > hi {
		logger := log.WithComponent("timing")
		logger.Warn().
			Dur("min", lo).
			Dur("max", hi).
			Msg("clamp called with inverted range")
		return v
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DetectFlutter reports whether the recent position history oscillates
// around a boundary. history is ordered most-recent-first and needs at
// least three entries; at least two side changes of boundary-tol among the
// three most recent entries count as flutter. A fluttering position means
// the reports disagree about which side of the boundary playback is on, so
// boundary events derived from them should be suppressed.
func DetectFlutter(history []time.Duration, boundary, tol time.Duration) bool {
	if len(history) < 3 {
		return false
	}
	edge := boundary - tol
	crossings := 0
	for i := 0; i < 2; i++ {
		before := history[i] >= edge
		after := history[i+1] >= edge
		if before != after {
			crossings++
		}
	}
	return crossings >= 2
}
