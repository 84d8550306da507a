package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Listener receives clock events. A returned error is recorded against the
// listener and does not affect delivery to other listeners.
type Listener func(Event) error

// ListenerStats is a snapshot of one listener's dispatch bookkeeping.
type ListenerStats struct {
	ID      int
	Calls   uint64
	Errors  uint64
	LastErr error
	Elapsed time.Duration
}

// listenerRecord tracks one subscriber for its whole subscription lifetime.
type listenerRecord struct {
	id int
	fn Listener

	calls   atomic.Uint64
	errors  atomic.Uint64
	elapsed atomic.Int64 // nanoseconds

	errMu   sync.Mutex
	lastErr error
}

func (r *listenerRecord) invoke(ev Event) {
	start := time.Now()
	err := r.fn(ev)
	r.elapsed.Add(int64(time.Since(start)))
	r.calls.Add(1)
	if err != nil {
		r.errors.Add(1)
		r.errMu.Lock()
		r.lastErr = err
		r.errMu.Unlock()
	}
}

func (r *listenerRecord) stats() ListenerStats {
	r.errMu.Lock()
	lastErr := r.lastErr
	r.errMu.Unlock()
	return ListenerStats{
		ID:      r.id,
		Calls:   r.calls.Load(),
		Errors:  r.errors.Load(),
		LastErr: lastErr,
		Elapsed: time.Duration(r.elapsed.Load()),
	}
}
