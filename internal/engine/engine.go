// Package engine composes the clock, scheduler, ownership lock and policy
// modules into the playback-synchronization orchestrator.
//
// The engine is event-driven and effectively single-threaded: every clock
// event runs the six-phase pipeline to completion before the next event is
// processed, so each tick produces exactly one coherent decision. The
// pipeline's commit phase is the only writer of the playback context.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/cuesync/internal/clock"
	"github.com/llehouerou/cuesync/internal/device"
	"github.com/llehouerou/cuesync/internal/log"
	"github.com/llehouerou/cuesync/internal/mirror"
	"github.com/llehouerou/cuesync/internal/ownership"
	"github.com/llehouerou/cuesync/internal/policy"
	"github.com/llehouerou/cuesync/internal/sched"
	"github.com/llehouerou/cuesync/internal/subtitle"
	"github.com/llehouerou/cuesync/internal/trace"
)

const (
	// tickBudget flags (but does not abort) slow pipeline runs.
	tickBudget = 10 * time.Millisecond

	// traceCapacity bounds the diagnostic tick ring.
	traceCapacity = 128

	// defaultSeekLockHold is how long a cue chosen by the user suppresses
	// automatic index selection.
	defaultSeekLockHold = 2 * time.Second

	// playVerifyDelay is how long after an optimistic play the engine
	// checks the backend's actual state.
	playVerifyDelay = 150 * time.Millisecond

	seekLockOwner = "user-seek"
)

// Options configures a new Engine.
type Options struct {
	Device device.Interface
	Mirror mirror.Interface // nil for none

	// Policies in registration order; nil selects policy.Default().
	Policies []policy.Policy

	Loop      policy.LoopConfig
	AutoPause policy.AutoPauseConfig

	// SeekLockHold overrides defaultSeekLockHold when positive.
	SeekLockHold time.Duration
}

// Engine is the orchestrator.
type Engine struct {
	mu sync.Mutex

	clk      *clock.Clock
	sched    *sched.Scheduler
	lock     *ownership.Lock
	dev      device.Interface
	mir      mirror.Interface
	policies []policy.Policy

	ctx policy.Context

	ring *trace.Ring
	seq  uint64

	seekLockHold time.Duration
	clockDispose func()
	closed       bool

	log zerolog.Logger
}

// New builds an engine around a playback device.
//
// The device's command methods must not synchronously call back into the
// engine's intake methods; backends are expected to post their events
// asynchronously, as real playback backends do.
func New(opts Options) (*Engine, error) {
	if opts.Device == nil {
		return nil, errors.New("engine: device is required")
	}
	mir := opts.Mirror
	if mir == nil {
		mir = mirror.Nop{}
	}
	policies := opts.Policies
	if policies == nil {
		policies = policy.Default()
	}
	hold := opts.SeekLockHold
	if hold <= 0 {
		hold = defaultSeekLockHold
	}

	e := &Engine{
		clk:      clock.New(),
		sched:    sched.New(),
		lock:     ownership.New(),
		dev:      opts.Device,
		mir:      mir,
		policies: policies,
		ctx: policy.Context{
			Paused:      true,
			Rate:        1.0,
			Volume:      1.0,
			ActiveIndex: -1,
			Loop:        opts.Loop,
			AutoPause:   opts.AutoPause,
		},
		ring:         trace.NewRing(traceCapacity),
		seekLockHold: hold,
		log:          log.WithComponent("engine"),
	}
	e.clockDispose = e.clk.Subscribe(e.onClockEvent)
	return e, nil
}

// Raw device events, translated 1:1 into clock calls. The clock decides
// whether anything is worth a pipeline tick.

func (e *Engine) OnTimeProgressed(t time.Duration) { e.clk.UpdateTime(t, false) }
func (e *Engine) OnPlayStarted()                   { e.clk.SetPlaying(true) }
func (e *Engine) OnPauseStarted()                  { e.clk.SetPlaying(false) }
func (e *Engine) OnEnded()                         { e.clk.MarkEnded() }
func (e *Engine) OnSeekStarted()                   { e.clk.StartSeeking() }
func (e *Engine) OnSeekCompleted(t time.Duration)  { e.clk.EndSeeking(t) }
func (e *Engine) OnDurationKnown(d time.Duration)  { e.clk.SetDuration(d) }
func (e *Engine) OnRateChanged(rate float64)       { e.clk.SetRate(rate) }

// SetCues replaces the subtitle track. The active index, ownership lock and
// any pending deferred actions belong to the previous track and are reset.
func (e *Engine) SetCues(cues []subtitle.Cue) {
	e.sched.Reset()
	e.lock.Reset()

	e.mu.Lock()
	e.ctx.Cues = append([]subtitle.Cue(nil), cues...)
	e.ctx.ActiveIndex = -1
	e.mu.Unlock()

	e.mir.SetActiveCueIndex(-1)
}

// SetLoop updates the loop configuration.
func (e *Engine) SetLoop(cfg policy.LoopConfig) {
	e.mu.Lock()
	e.ctx.Loop = cfg
	e.mu.Unlock()
	e.mir.UpdateLoopRemaining(cfg.Remaining)
}

// SetAutoPause updates the auto-pause configuration.
func (e *Engine) SetAutoPause(cfg policy.AutoPauseConfig) {
	e.mu.Lock()
	e.ctx.AutoPause = cfg
	e.mu.Unlock()
}

// Snapshot returns a copy of the playback context.
func (e *Engine) Snapshot() policy.Context {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := e.ctx
	snap.Cues = append([]subtitle.Cue(nil), e.ctx.Cues...)
	return snap
}

// ActiveCueIndex returns the committed active cue index (-1 for none).
func (e *Engine) ActiveCueIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.ActiveIndex
}

// Paused returns the engine's paused belief.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.Paused
}

// Muted returns the device mute state.
func (e *Engine) Muted() bool {
	return e.dev.Muted()
}

// Trace returns the recent tick traces, oldest first.
func (e *Engine) Trace() []trace.Tick {
	return e.ring.Snapshot()
}

// ClockStats returns per-listener dispatch statistics.
func (e *Engine) ClockStats() []clock.ListenerStats {
	return e.clk.Stats()
}

// Close disposes the engine: every scheduled action is cancelled, every
// clock subscriber removed, the seek coordinator and ownership lock reset.
// No callback fires into a closed engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.sched.Dispose()
	e.clockDispose()
	e.clk.Dispose()
	e.lock.Reset()
	return nil
}

// verifyPlayback re-reads the backend after an optimistic transport update
// and corrects the engine's belief if they disagree. This is the only place
// state may be corrected outside a pipeline tick, and it heals by emitting
// a genuine clock transition, which runs the pipeline as usual.
func (e *Engine) verifyPlayback() {
	devPaused := e.dev.Paused()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	believed := e.ctx.Paused
	e.mu.Unlock()

	if devPaused != believed {
		e.log.Warn().
			Bool("device_paused", devPaused).
			Bool("believed_paused", believed).
			Msg("playback state divergence detected, re-syncing")
	}
	// Aligning the clock with the backend is a no-op when they already
	// agree; on divergence it emits the missing transition, which runs
	// the pipeline and corrects the context.
	e.clk.SetPlaying(!devPaused)
}

func commandErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
