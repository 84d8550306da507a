package mirror

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStoreDefaults(t *testing.T) {
	st := NewStore()
	snap := st.Snapshot()

	assert.Equal(t, -1, snap.ActiveCueIndex)
	assert.Equal(t, 1.0, snap.PlaybackRate)
	assert.Equal(t, 1.0, snap.Volume)
	assert.False(t, snap.Playing)
}

func TestStoreSnapshotReflectsWrites(t *testing.T) {
	st := NewStore()

	st.SetCurrentTime(42 * time.Second)
	st.SetDuration(90 * time.Second)
	st.SetPlaying(true)
	st.SetPlaybackRate(1.5)
	st.SetVolume(0.7)
	st.SetMuted(true)
	st.SetSeeking(true)
	st.SetEnded(false)
	st.SetActiveCueIndex(3)
	st.UpdateLoopRemaining(2)
	st.SetNote("loop finished")

	snap := st.Snapshot()
	assert.Equal(t, 42*time.Second, snap.CurrentTime)
	assert.Equal(t, 90*time.Second, snap.Duration)
	assert.True(t, snap.Playing)
	assert.Equal(t, 1.5, snap.PlaybackRate)
	assert.Equal(t, 0.7, snap.Volume)
	assert.True(t, snap.Muted)
	assert.True(t, snap.Seeking)
	assert.False(t, snap.Ended)
	assert.Equal(t, 3, snap.ActiveCueIndex)
	assert.Equal(t, 2, snap.LoopRemaining)
	assert.Equal(t, "loop finished", snap.Note)
}

// Snapshot is a copy: later writes must not leak into an earlier snapshot.
func TestStoreSnapshotIsStable(t *testing.T) {
	st := NewStore()
	st.SetActiveCueIndex(1)

	before := st.Snapshot()
	st.SetActiveCueIndex(2)

	assert.Equal(t, 1, before.ActiveCueIndex)
	assert.Equal(t, 2, st.Snapshot().ActiveCueIndex)
}
