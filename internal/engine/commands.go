package engine

import (
	"errors"
	"time"

	"github.com/llehouerou/cuesync/internal/timing"
)

// User-facing commands. They run outside the pipeline lock and act on the
// device and clock directly; the resulting clock events drive the pipeline
// as usual.

// RequestPlay starts playback. The call is optimistic: the clock's playing
// belief flips immediately and a deferred check verifies the backend really
// started, correcting the belief if the command was silently dropped.
func (e *Engine) RequestPlay() error {
	if err := e.dev.Play(); err != nil {
		return commandErr("play", err)
	}
	e.clk.SetPlaying(true)
	e.sched.After(playVerifyDelay, "verify-play", e.verifyPlayback)
	return nil
}

// RequestPause stops playback.
func (e *Engine) RequestPause() error {
	if err := e.dev.Pause(); err != nil {
		return commandErr("pause", err)
	}
	e.clk.SetPlaying(false)
	return nil
}

// RequestTogglePlay flips between playing and paused.
func (e *Engine) RequestTogglePlay() error {
	if e.clk.Paused() {
		return e.RequestPlay()
	}
	return e.RequestPause()
}

// RequestSeek moves playback to the given position, clamped to the known
// timeline. A manual seek is fresh user intent: pending deferred actions
// and any cue ownership from earlier interactions are discarded.
func (e *Engine) RequestSeek(target time.Duration) error {
	target = max(target, 0)
	if d := e.clk.Duration(); d > 0 {
		target = timing.Clamp(target, 0, d)
	}

	e.sched.Reset()
	e.lock.Reset()

	if err := e.dev.Seek(target); err != nil {
		return commandErr("seek", err)
	}
	return nil
}

// RequestSeekRelative moves playback by a signed offset from the current
// position.
func (e *Engine) RequestSeekRelative(delta time.Duration) error {
	return e.RequestSeek(e.clk.Position() + delta)
}

// RequestSeekToCue jumps to the start of the cue at index and locks that
// index so the resolver cannot flicker away from the user's choice while
// the seek settles. The lock releases automatically after the hold period.
func (e *Engine) RequestSeekToCue(index int) error {
	e.mu.Lock()
	n := len(e.ctx.Cues)
	if n == 0 {
		e.mu.Unlock()
		return errors.New("seek to cue: no cues loaded")
	}
	if index < 0 {
		index = 0
	} else if index >= n {
		index = n - 1
	}
	cue := e.ctx.Cues[index]
	e.mu.Unlock()

	e.sched.Reset()
	e.lock.Acquire(seekLockOwner, index)
	e.sched.After(e.seekLockHold, "cue-lock-release", func() {
		e.lock.Release(seekLockOwner)
	})

	if err := e.dev.Seek(cue.Start); err != nil {
		return commandErr("seek to cue", err)
	}
	return nil
}

// RequestSetRate changes the playback rate, clamped to a sane range.
func (e *Engine) RequestSetRate(rate float64) error {
	if rate < 0.25 {
		rate = 0.25
	} else if rate > 4.0 {
		rate = 4.0
	}
	if err := e.dev.SetRate(rate); err != nil {
		return commandErr("set rate", err)
	}
	e.clk.SetRate(rate)
	return nil
}

// RequestSetVolume sets the volume, clamped to [0, 1].
func (e *Engine) RequestSetVolume(v float64) error {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	if err := e.dev.SetVolume(v); err != nil {
		return commandErr("set volume", err)
	}
	e.mu.Lock()
	e.ctx.Volume = v
	e.mu.Unlock()
	e.mir.SetVolume(v)
	return nil
}

// RequestToggleMute flips the mute state.
func (e *Engine) RequestToggleMute() error {
	muted := !e.dev.Muted()
	if err := e.dev.SetMuted(muted); err != nil {
		return commandErr("toggle mute", err)
	}
	e.mu.Lock()
	e.ctx.Muted = muted
	e.mu.Unlock()
	e.mir.SetMuted(muted)
	return nil
}

// autoResume restarts playback after an auto-pause hold.
func (e *Engine) autoResume() {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return
	}
	if err := e.RequestPlay(); err != nil {
		e.log.Error().Err(err).Msg("auto-resume failed")
	}
	e.mir.SetNote("")
}
