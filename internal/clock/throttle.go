package clock

import "time"

// ThrottleMode governs the minimum interval between emitted time updates.
//
// The mode is owned by the Clock: it moves to ThrottleSeeking for the length
// of a seek (smooth scrubbing feedback), to ThrottleHighPrecision for a short
// settle window right after a seek completes (to catch the exact landing
// position), and back to ThrottleNormal otherwise. Callers never set it
// directly.
type ThrottleMode int

const (
	ThrottleNormal ThrottleMode = iota
	ThrottleSeeking
	ThrottleHighPrecision
)

// Interval returns the minimum spacing between time updates in this mode.
func (m ThrottleMode) Interval() time.Duration {
	switch m {
	case ThrottleSeeking:
		return 16 * time.Millisecond
	case ThrottleHighPrecision:
		return 8 * time.Millisecond
	default:
		return 50 * time.Millisecond
	}
}

// String returns the mode name.
func (m ThrottleMode) String() string {
	switch m {
	case ThrottleNormal:
		return "normal"
	case ThrottleSeeking:
		return "seeking"
	case ThrottleHighPrecision:
		return "high_precision"
	default:
		return "unknown"
	}
}
