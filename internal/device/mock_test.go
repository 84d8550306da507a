package device

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockRecordsCommands(t *testing.T) {
	m := NewMock()

	assert.True(t, m.Paused())
	assert.NoError(t, m.Play())
	assert.False(t, m.Paused())
	assert.NoError(t, m.Pause())
	assert.True(t, m.Paused())

	assert.NoError(t, m.Seek(9*time.Second))
	assert.NoError(t, m.Seek(3*time.Second))
	assert.Equal(t, 3*time.Second, m.Position())
	assert.Equal(t, []time.Duration{9 * time.Second, 3 * time.Second}, m.SeekCalls())

	assert.NoError(t, m.SetRate(1.5))
	assert.Equal(t, 1.5, m.Rate())
	assert.Equal(t, []float64{1.5}, m.RateCalls())

	assert.Equal(t, 1, m.PlayCalls())
	assert.Equal(t, 1, m.PauseCalls())
}

func TestMockScriptedFailures(t *testing.T) {
	m := NewMock()

	playErr := errors.New("backend busy")
	m.SetPlayError(playErr)
	assert.ErrorIs(t, m.Play(), playErr)
	assert.True(t, m.Paused(), "failed play must not change state")
	assert.Equal(t, 1, m.PlayCalls(), "failed play is still recorded")

	seekErr := errors.New("not seekable")
	m.SetSeekError(seekErr)
	assert.ErrorIs(t, m.Seek(5*time.Second), seekErr)
	assert.Equal(t, time.Duration(0), m.Position())
}

func TestMockIgnorePlay(t *testing.T) {
	m := NewMock()
	m.IgnorePlay(true)

	assert.NoError(t, m.Play())
	assert.True(t, m.Paused(), "ignored play is accepted but does nothing")
	assert.Equal(t, 1, m.PlayCalls())
}

func TestMockVolumeAndMute(t *testing.T) {
	m := NewMock()

	assert.Equal(t, 1.0, m.Volume())
	assert.NoError(t, m.SetVolume(0.4))
	assert.Equal(t, 0.4, m.Volume())

	assert.False(t, m.Muted())
	assert.NoError(t, m.SetMuted(true))
	assert.True(t, m.Muted())
}
