// Package clock owns the canonical playback timeline and converts raw,
// noisy position reports from a media backend into a deduplicated,
// throttled, ordered event stream.
package clock

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/cuesync/internal/log"
	"github.com/llehouerou/cuesync/internal/timing"
)

const (
	// settleFrames is the number of time updates emitted in high-precision
	// mode after a seek completes before reverting to normal throttling.
	settleFrames = 6

	// historySize bounds the recent-position history used for dedup and
	// flutter detection.
	historySize = 8

	// dupKindWindow is the window inside which a repeated report of an
	// already-emitted position counts as a duplicate.
	dupKindWindow = 50 * time.Millisecond
)

// Clock is the single owner of the timeline state. It is the only component
// that emits Events; everything else subscribes.
type Clock struct {
	mu sync.Mutex

	position time.Duration
	duration time.Duration
	paused   bool
	rate     float64

	mode       ThrottleMode
	settleLeft int

	seek seekCoordinator

	lastEmit    map[EventKind]time.Time
	lastEmitted time.Duration // position of the last emitted time update
	hasEmitted  bool
	history     []time.Duration // recent reported positions, most-recent-first

	listeners []*listenerRecord
	nextID    int
	disposed  bool

	log zerolog.Logger
}

// New creates a clock in the paused state at position zero.
func New() *Clock {
	return &Clock{
		paused:   true,
		rate:     1.0,
		lastEmit: make(map[EventKind]time.Time),
		log:      log.WithComponent("clock"),
	}
}

// Subscribe registers a listener and returns its disposer. Listeners are
// invoked in registration order; disposing is idempotent.
func (c *Clock) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return func() {}
	}
	c.nextID++
	rec := &listenerRecord{id: c.nextID, fn: fn}
	c.listeners = append(c.listeners, rec)

	id := rec.id
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, r := range c.listeners {
			if r.id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of live subscribers.
func (c *Clock) ListenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// Stats returns a snapshot of per-listener dispatch bookkeeping.
func (c *Clock) Stats() []ListenerStats {
	c.mu.Lock()
	recs := append([]*listenerRecord(nil), c.listeners...)
	c.mu.Unlock()

	stats := make([]ListenerStats, len(recs))
	for i, r := range recs {
		stats[i] = r.stats()
	}
	return stats
}

// UpdateTime applies a raw position report.
//
// The report passes a throttling gate (unless force) and then the
// deduplication gates; only if all pass is a time update emitted. The
// internal position is updated regardless, so the true position is never
// stale even when no event goes out.
func (c *Clock) UpdateTime(t time.Duration, force bool) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	now := time.Now()

	quantDup := c.isQuantizedDup(t, now)
	c.position = t
	c.pushHistory(t)

	if !force {
		if now.Sub(c.lastEmit[EventTimeUpdate]) < c.mode.Interval() {
			c.mu.Unlock()
			return
		}
		tol := c.dynamicTolerance()
		if c.hasEmitted && timing.Equals(c.lastEmitted, t, tol) {
			c.mu.Unlock()
			return
		}
		if quantDup {
			c.log.Debug().Dur("position", t).Msg("duplicate position report suppressed")
			c.mu.Unlock()
			return
		}
		if timing.DetectFlutter(c.history, t, timing.Tolerance) {
			c.log.Debug().Dur("position", t).Msg("flutter around boundary suppressed")
			c.mu.Unlock()
			return
		}
	}

	c.lastEmitted = t
	c.hasEmitted = true
	c.advanceSettleLocked()
	ev, recs := c.emitLocked(EventTimeUpdate, now)
	c.mu.Unlock()
	deliver(ev, recs)
}

// SetPlaying updates the paused flag. An event is emitted only on a genuine
// transition, not on repeated identical calls.
func (c *Clock) SetPlaying(playing bool) {
	c.mu.Lock()
	if c.disposed || c.paused == !playing {
		c.mu.Unlock()
		return
	}
	c.paused = !playing
	kind := EventPause
	if playing {
		kind = EventPlay
	}
	ev, recs := c.emitLocked(kind, time.Now())
	c.mu.Unlock()
	deliver(ev, recs)
}

// SetDuration records the media duration, emitting on change.
func (c *Clock) SetDuration(d time.Duration) {
	c.mu.Lock()
	if c.disposed || c.duration == d {
		c.mu.Unlock()
		return
	}
	c.duration = d
	ev, recs := c.emitLocked(EventDurationChange, time.Now())
	c.mu.Unlock()
	deliver(ev, recs)
}

// SetRate records the playback rate. Rate is carried on every subsequent
// event rather than emitting one of its own.
func (c *Clock) SetRate(rate float64) {
	c.mu.Lock()
	if !c.disposed && rate > 0 {
		c.rate = rate
	}
	c.mu.Unlock()
}

// MarkEnded records that playback reached the end of the media.
func (c *Clock) MarkEnded() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.paused = true
	ev, recs := c.emitLocked(EventEnded, time.Now())
	c.mu.Unlock()
	deliver(ev, recs)
}

// StartSeeking enters the seek lifecycle. A duplicate start while a seek is
// already active is suppressed.
func (c *Clock) StartSeeking() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	if !c.seek.begin() {
		c.log.Debug().Msg("duplicate seek start ignored")
		c.mu.Unlock()
		return
	}
	c.mode = ThrottleSeeking
	ev, recs := c.emitLocked(EventSeeking, time.Now())
	c.mu.Unlock()
	deliver(ev, recs)
}

// EndSeeking completes the seek lifecycle at the landing position. An end
// without a matching start is suppressed. On success the clock enters
// high-precision throttling for a short settle window so the exact landing
// position is captured before relaxing.
func (c *Clock) EndSeeking(t time.Duration) {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	if !c.seek.end() {
		c.log.Debug().Dur("position", t).Msg("seek end without active seek ignored")
		c.mu.Unlock()
		return
	}
	c.position = t
	c.pushHistory(t)
	c.mode = ThrottleHighPrecision
	c.settleLeft = settleFrames
	ev, recs := c.emitLocked(EventSeeked, time.Now())
	c.mu.Unlock()
	deliver(ev, recs)
}

// Seeking reports whether a seek is in flight.
func (c *Clock) Seeking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seek.active
}

// Position returns the true current position, throttled or not.
func (c *Clock) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Duration returns the media duration, zero if unknown.
func (c *Clock) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// Paused returns the paused flag.
func (c *Clock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Rate returns the playback rate.
func (c *Clock) Rate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// Mode returns the current throttle mode.
func (c *Clock) Mode() ThrottleMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Dispose clears all listeners, resets the seek coordinator and drops the
// dedup history. The clock emits nothing afterwards.
func (c *Clock) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
	c.listeners = nil
	c.seek.reset()
	c.history = nil
	c.lastEmit = make(map[EventKind]time.Time)
	c.hasEmitted = false
	c.mode = ThrottleNormal
	c.settleLeft = 0
}

// dynamicTolerance is the dedup slack: it shrinks automatically as the
// throttle interval tightens, so high-precision mode distinguishes positions
// a normal-mode clock would consider identical.
func (c *Clock) dynamicTolerance() time.Duration {
	return max(timing.Tolerance, c.mode.Interval()/2)
}

// isQuantizedDup reports whether t matches a recently reported position
// exactly (at millisecond resolution) inside the duplicate window.
func (c *Clock) isQuantizedDup(t time.Duration, now time.Time) bool {
	if now.Sub(c.lastEmit[EventTimeUpdate]) >= dupKindWindow {
		return false
	}
	q := t.Round(time.Millisecond)
	for _, h := range c.history {
		if h.Round(time.Millisecond) == q {
			return true
		}
	}
	return false
}

// advanceSettleLocked counts down the post-seek settle window.
func (c *Clock) advanceSettleLocked() {
	if c.mode != ThrottleHighPrecision {
		return
	}
	c.settleLeft--
	if c.settleLeft <= 0 {
		c.mode = ThrottleNormal
		c.log.Debug().Msg("seek settle window complete")
	}
}

func (c *Clock) pushHistory(t time.Duration) {
	c.history = append([]time.Duration{t}, c.history...)
	if len(c.history) > historySize {
		c.history = c.history[:historySize]
	}
}

// emitLocked snapshots an event and the listener list. The caller releases
// the lock and calls deliver, so listeners may call back into the clock.
func (c *Clock) emitLocked(kind EventKind, now time.Time) (Event, []*listenerRecord) {
	c.lastEmit[kind] = now
	ev := Event{
		Kind:      kind,
		Timestamp: now,
		Position:  c.position,
		Duration:  c.duration,
		Paused:    c.paused,
		Rate:      c.rate,
	}
	return ev, append([]*listenerRecord(nil), c.listeners...)
}

// deliver invokes each listener in registration order. One listener's
// failure is recorded on its own record and does not prevent delivery to
// the rest.
func deliver(ev Event, recs []*listenerRecord) {
	for _, r := range recs {
		r.invoke(ev)
	}
}
