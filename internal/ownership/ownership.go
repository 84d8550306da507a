// Package ownership implements a short-lived override that lets a user
// action suppress automatic subtitle-index selection.
//
// When a user seeks to a subtitle explicitly, the automatic sync policy
// would otherwise immediately re-resolve the index from the reported
// position and overwrite the choice. Locking the index for a bounded window
// protects the user's intent until it has settled.
package ownership

import "sync"

// Lock is a two-state guard: unlocked, or locked by an owner at an index.
// The zero value is unlocked.
type Lock struct {
	mu     sync.Mutex
	locked bool
	owner  string
	index  int
}

// New returns an unlocked lock.
func New() *Lock {
	return &Lock{}
}

// Acquire locks the index for the given owner. A prior lock, whoever held
// it, is overwritten: the most recent user intent wins.
func (l *Lock) Acquire(owner string, index int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = true
	l.owner = owner
	l.index = index
}

// SuggestIndex filters an automatic index suggestion. While locked it
// returns the locked index regardless of the candidate; unlocked, the
// candidate passes through unchanged.
func (l *Lock) SuggestIndex(candidate int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locked {
		return l.index
	}
	return candidate
}

// Release clears the lock if owner matches the holder; otherwise no-op.
// Returns whether the lock was released.
func (l *Lock) Release(owner string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.locked || l.owner != owner {
		return false
	}
	l.locked = false
	l.owner = ""
	return true
}

// Reset unconditionally clears the lock. Used on full engine reset.
func (l *Lock) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked = false
	l.owner = ""
	l.index = 0
}

// Locked reports whether a lock is held.
func (l *Lock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked
}

// Holder returns the current owner, empty if unlocked.
func (l *Lock) Holder() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner
}
