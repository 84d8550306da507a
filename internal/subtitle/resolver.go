package subtitle

import (
	"sort"
	"time"

	"github.com/llehouerou/cuesync/internal/timing"
)

const (
	// Hysteresis widens each cue's interval during containment checks so a
	// position reported a few frames early or late still maps to the cue
	// being displayed, preventing highlight flicker at boundaries.
	Hysteresis = 30 * time.Millisecond

	// MaxSnapDistance bounds the nearest-cue fallback. During a long silent
	// gap the highlight should go dark rather than snap to a far-away cue.
	MaxSnapDistance = 10 * time.Second
)

// ResolveIndex returns the index of the cue containing pos, or the nearest
// cue within MaxSnapDistance if none contains it, or -1.
//
// Cues are assumed sorted by start time and non-overlapping.
func ResolveIndex(pos time.Duration, cues []Cue) int {
	if len(cues) == 0 {
		return -1
	}

	// First cue whose end (plus hysteresis) is past pos; only that cue can
	// contain pos given sorted, non-overlapping input.
	i := sort.Search(len(cues), func(i int) bool {
		return pos < cues[i].End+Hysteresis
	})
	if i < len(cues) && timing.Inside(cues[i].Start, cues[i].End, pos, Hysteresis) {
		return i
	}

	return Nearest(pos, cues)
}

// Nearest returns the index of the most recently passed cue, as long as its
// end lies within MaxSnapDistance behind pos; otherwise -1.
//
// The fallback deliberately never looks forward: during a gap the previous
// subtitle stays highlighted for a while and then goes dark, but an upcoming
// subtitle is never shown early.
func Nearest(pos time.Duration, cues []Cue) int {
	best := -1
	var bestDist time.Duration
	for i, c := range cues {
		if pos < c.End {
			break // cues are sorted, nothing behind pos remains
		}
		d := pos - c.End
		if best == -1 || d <= bestDist {
			best = i
			bestDist = d
		}
	}
	if best == -1 || bestDist > MaxSnapDistance {
		return -1
	}
	return best
}
