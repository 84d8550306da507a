package mirror

import (
	"sync"
	"time"
)

// State is a snapshot of everything the engine has pushed.
type State struct {
	CurrentTime    time.Duration
	Duration       time.Duration
	Playing        bool
	PlaybackRate   float64
	Volume         float64
	Muted          bool
	Seeking        bool
	Ended          bool
	ActiveCueIndex int
	LoopRemaining  int
	Note           string
}

// Store is a thread-safe in-memory mirror for UIs that poll.
type Store struct {
	mu sync.RWMutex
	s  State
}

// NewStore creates a store with no active cue.
func NewStore() *Store {
	return &Store{s: State{PlaybackRate: 1.0, Volume: 1.0, ActiveCueIndex: -1}}
}

// Snapshot returns the current mirrored state.
func (st *Store) Snapshot() State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s
}

func (st *Store) SetCurrentTime(t time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.CurrentTime = t
}

func (st *Store) SetDuration(d time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Duration = d
}

func (st *Store) SetPlaying(playing bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Playing = playing
}

func (st *Store) SetPlaybackRate(rate float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.PlaybackRate = rate
}

func (st *Store) SetVolume(v float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Volume = v
}

func (st *Store) SetMuted(muted bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Muted = muted
}

func (st *Store) SetSeeking(seeking bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Seeking = seeking
}

func (st *Store) SetEnded(ended bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Ended = ended
}

func (st *Store) SetActiveCueIndex(index int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.ActiveCueIndex = index
}

func (st *Store) UpdateLoopRemaining(remaining int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.LoopRemaining = remaining
}

func (st *Store) SetNote(note string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Note = note
}
