// Package trace keeps a bounded in-memory record of recent pipeline ticks
// for diagnostics.
package trace

import (
	"sync"
	"time"
)

// PhaseTimings records how long each pipeline phase took within one tick.
type PhaseTimings struct {
	UpdateFacts time.Duration
	Collect     time.Duration
	Reduce      time.Duration
	Plan        time.Duration
	Execute     time.Duration
	Commit      time.Duration
}

// IntentRecord is the trace view of one collected intent.
type IntentRecord struct {
	Domain   string
	Policy   string
	Reason   string
	Priority int
}

// ResolutionRecord is the trace view of one per-domain winner.
type ResolutionRecord struct {
	Domain string
	Policy string
	Reason string
}

// EffectRecord is the trace view of one executed effect.
type EffectRecord struct {
	ID     string
	Kind   string
	Source string
	Err    string // empty on success
}

// Tick is the full trace of one pipeline run.
type Tick struct {
	Seq         uint64
	Event       string
	At          time.Time
	Position    time.Duration
	Phases      PhaseTimings
	Intents     []IntentRecord
	Resolutions []ResolutionRecord
	Effects     []EffectRecord
	Outcome     string
	Total       time.Duration
	Slow        bool
}

// Ring is a fixed-capacity buffer of the most recent ticks.
type Ring struct {
	mu    sync.Mutex
	buf   []Tick
	next  int
	count int
}

// NewRing creates a ring holding up to capacity ticks.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]Tick, capacity)}
}

// Add records a tick, evicting the oldest once full.
func (r *Ring) Add(t Tick) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = t
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Len returns the number of recorded ticks.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Snapshot returns the recorded ticks, oldest first.
func (r *Ring) Snapshot() []Tick {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Tick, 0, r.count)
	start := r.next - r.count
	if start < 0 {
		start += len(r.buf)
	}
	for i := range r.count {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}
