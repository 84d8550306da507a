package engine

import (
	"testing"
	"testing/synctest"
	"time"

	"go.uber.org/goleak"

	"github.com/llehouerou/cuesync/internal/device"
	"github.com/llehouerou/cuesync/internal/mirror"
	"github.com/llehouerou/cuesync/internal/policy"
	"github.com/llehouerou/cuesync/internal/subtitle"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testCues() []subtitle.Cue {
	return []subtitle.Cue{
		{Index: 0, Start: 1 * time.Second, End: 3 * time.Second, Text: "first"},
		{Index: 1, Start: 4 * time.Second, End: 6 * time.Second, Text: "second"},
		{Index: 2, Start: 7 * time.Second, End: 9 * time.Second, Text: "third"},
	}
}

type testRig struct {
	eng *Engine
	dev *device.Mock
	mir *mirror.Store
}

func newRig(t *testing.T, mutate func(*Options)) *testRig {
	t.Helper()
	dev := device.NewMock()
	mir := mirror.NewStore()
	opts := Options{Device: dev, Mirror: mir}
	if mutate != nil {
		mutate(&opts)
	}
	eng, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })
	eng.SetCues(testCues())
	eng.OnDurationKnown(60 * time.Second)
	return &testRig{eng: eng, dev: dev, mir: mir}
}

// progress feeds raw time updates spaced wider than the normal throttle
// interval, so each one reaches the pipeline.
func (r *testRig) progress(positions ...time.Duration) {
	for _, p := range positions {
		time.Sleep(60 * time.Millisecond)
		r.eng.OnTimeProgressed(p)
	}
	synctest.Wait()
}

func TestActiveCueFollowsTime(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := newRig(t, nil)
		r.eng.OnPlayStarted()

		r.progress(500*time.Millisecond, 1500*time.Millisecond)
		if got := r.eng.ActiveCueIndex(); got != 0 {
			t.Fatalf("ActiveCueIndex() = %d inside first cue, want 0", got)
		}

		r.progress(4500 * time.Millisecond)
		if got := r.eng.ActiveCueIndex(); got != 1 {
			t.Fatalf("ActiveCueIndex() = %d inside second cue, want 1", got)
		}
		if got := r.mir.Snapshot().ActiveCueIndex; got != 1 {
			t.Errorf("mirror ActiveCueIndex = %d, want 1", got)
		}
	})
}

func TestLoopRestartsActiveCue(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := newRig(t, func(o *Options) {
			o.Loop = policy.LoopConfig{Enabled: true, Mode: policy.LoopInfinite}
		})
		r.eng.OnPlayStarted()

		r.progress(2500*time.Millisecond, 3100*time.Millisecond)

		seeks := r.dev.SeekCalls()
		if len(seeks) != 1 {
			t.Fatalf("device got %d seeks after crossing cue end, want 1", len(seeks))
		}
		if seeks[0] != 1*time.Second {
			t.Errorf("loop seek target = %v, want cue start 1s", seeks[0])
		}
	})
}

func TestLoopFiniteCountsDownAndDisables(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := newRig(t, func(o *Options) {
			o.Loop = policy.LoopConfig{Enabled: true, Mode: policy.LoopFinite, Remaining: 1}
		})
		r.eng.OnPlayStarted()

		// First crossing: one pass left, so the cue restarts and the
		// counter drops to zero.
		r.progress(2500*time.Millisecond, 3100*time.Millisecond)
		if got := len(r.dev.SeekCalls()); got != 1 {
			t.Fatalf("device got %d seeks after first crossing, want 1", got)
		}
		if got := r.eng.Snapshot().Loop.Remaining; got != 0 {
			t.Fatalf("loop remaining = %d after restart, want 0", got)
		}

		// Replay the cue and cross again: the loop is exhausted, so no
		// seek and the loop disables itself.
		r.eng.OnSeekStarted()
		r.eng.OnSeekCompleted(1 * time.Second)
		synctest.Wait()
		r.progress(2500*time.Millisecond, 3100*time.Millisecond)

		if got := len(r.dev.SeekCalls()); got != 1 {
			t.Errorf("device got %d seeks after exhausted crossing, want still 1", got)
		}
		snap := r.eng.Snapshot()
		if snap.Loop.Enabled {
			t.Error("loop still enabled after exhaustion")
		}
		if got := r.mir.Snapshot().Note; got != "loop finished" {
			t.Errorf("mirror note = %q, want %q", got, "loop finished")
		}
	})
}

func TestAutoPausePausesAtCueEnd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := newRig(t, func(o *Options) {
			o.AutoPause = policy.AutoPauseConfig{Enabled: true}
		})
		r.eng.OnPlayStarted()

		r.progress(2500*time.Millisecond, 3100*time.Millisecond)

		if got := r.dev.PauseCalls(); got != 1 {
			t.Fatalf("device got %d pauses after cue end, want 1", got)
		}
		if !r.eng.Paused() {
			t.Error("engine not paused after auto-pause")
		}
	})
}

func TestAutoPauseResumesAfterHold(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := newRig(t, func(o *Options) {
			o.AutoPause = policy.AutoPauseConfig{
				Enabled:     true,
				AutoResume:  true,
				ResumeAfter: 500 * time.Millisecond,
			}
		})
		r.eng.OnPlayStarted()

		r.progress(2500*time.Millisecond, 3100*time.Millisecond)
		if !r.eng.Paused() {
			t.Fatal("engine not paused at cue end")
		}

		time.Sleep(600 * time.Millisecond)
		synctest.Wait()

		if r.eng.Paused() {
			t.Error("engine still paused after resume hold elapsed")
		}
		if got := r.dev.PlayCalls(); got != 1 {
			t.Errorf("device got %d plays from auto-resume, want 1", got)
		}
	})
}

func TestAutoPauseYieldsToLoop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := newRig(t, func(o *Options) {
			o.Loop = policy.LoopConfig{Enabled: true, Mode: policy.LoopInfinite}
			o.AutoPause = policy.AutoPauseConfig{Enabled: true}
		})
		r.eng.OnPlayStarted()

		r.progress(2500*time.Millisecond, 3100*time.Millisecond)

		if got := r.dev.PauseCalls(); got != 0 {
			t.Errorf("device got %d pauses at a looping boundary, want 0", got)
		}
		if got := len(r.dev.SeekCalls()); got != 1 {
			t.Errorf("device got %d seeks at a looping boundary, want 1", got)
		}
	})
}

func TestSeekToCueLocksIndex(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := newRig(t, nil)
		r.eng.OnPlayStarted()

		if err := r.eng.RequestSeekToCue(2); err != nil {
			t.Fatalf("RequestSeekToCue: %v", err)
		}
		seeks := r.dev.SeekCalls()
		if len(seeks) != 1 || seeks[0] != 7*time.Second {
			t.Fatalf("seek calls = %v, want [7s]", seeks)
		}

		// The backend lands short, inside the second cue. The resolver
		// would pick index 1 but the user's lock pins index 2.
		r.eng.OnSeekStarted()
		r.eng.OnSeekCompleted(5 * time.Second)
		synctest.Wait()
		if got := r.eng.ActiveCueIndex(); got != 2 {
			t.Fatalf("ActiveCueIndex() = %d while locked, want 2", got)
		}

		// After the hold expires automatic resolution takes over again.
		time.Sleep(2100 * time.Millisecond)
		synctest.Wait()
		r.progress(5200 * time.Millisecond)
		if got := r.eng.ActiveCueIndex(); got != 1 {
			t.Errorf("ActiveCueIndex() = %d after lock expired, want 1", got)
		}
	})
}

func TestPlayVerificationHealsDroppedCommand(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := newRig(t, nil)
		r.dev.IgnorePlay(true)

		if err := r.eng.RequestPlay(); err != nil {
			t.Fatalf("RequestPlay: %v", err)
		}
		if r.eng.Paused() {
			t.Fatal("engine paused right after optimistic play")
		}

		time.Sleep(200 * time.Millisecond)
		synctest.Wait()

		if !r.eng.Paused() {
			t.Error("engine still believes it is playing after verification")
		}
	})
}

func TestRequestSeekClampsToTimeline(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := newRig(t, nil)

		if err := r.eng.RequestSeek(90 * time.Second); err != nil {
			t.Fatalf("RequestSeek: %v", err)
		}
		if err := r.eng.RequestSeek(-5 * time.Second); err != nil {
			t.Fatalf("RequestSeek: %v", err)
		}

		seeks := r.dev.SeekCalls()
		if len(seeks) != 2 {
			t.Fatalf("seek calls = %v, want 2 entries", seeks)
		}
		if seeks[0] != 60*time.Second {
			t.Errorf("overshoot clamped to %v, want 60s", seeks[0])
		}
		if seeks[1] != 0 {
			t.Errorf("undershoot clamped to %v, want 0", seeks[1])
		}
	})
}

func TestEffectFailureDoesNotBlockCommit(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := newRig(t, func(o *Options) {
			o.Loop = policy.LoopConfig{Enabled: true, Mode: policy.LoopFinite, Remaining: 2}
		})
		r.eng.OnPlayStarted()
		r.dev.SetSeekError(errSeekRefused)

		r.progress(2500*time.Millisecond, 3100*time.Millisecond)

		// The restart seek failed but the loop bookkeeping still commits.
		if got := r.eng.Snapshot().Loop.Remaining; got != 1 {
			t.Errorf("loop remaining = %d after failed seek, want 1", got)
		}

		ticks := r.eng.Trace()
		if len(ticks) == 0 {
			t.Fatal("no ticks traced")
		}
		last := ticks[len(ticks)-1]
		var failed bool
		for _, ef := range last.Effects {
			if ef.Kind == "seek" && ef.Err != "" {
				failed = true
			}
		}
		if !failed {
			t.Error("failed seek effect not recorded in trace")
		}
	})
}

func TestTraceRecordsPipelineRuns(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := newRig(t, nil)
		r.eng.OnPlayStarted()
		r.progress(1500 * time.Millisecond)

		ticks := r.eng.Trace()
		if len(ticks) < 2 {
			t.Fatalf("traced %d ticks, want at least play + time update", len(ticks))
		}
		for _, tk := range ticks {
			if tk.Seq == 0 {
				t.Error("tick with zero sequence number")
			}
			if tk.Event == "" {
				t.Error("tick with empty event name")
			}
		}
	})
}

func TestCloseSilencesEverything(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		r := newRig(t, func(o *Options) {
			o.AutoPause = policy.AutoPauseConfig{
				Enabled:     true,
				AutoResume:  true,
				ResumeAfter: 500 * time.Millisecond,
			}
		})
		r.eng.OnPlayStarted()
		r.progress(2500*time.Millisecond, 3100*time.Millisecond)

		if err := r.eng.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if err := r.eng.Close(); err != nil {
			t.Fatalf("second Close: %v", err)
		}

		// The armed auto-resume must not fire into the closed engine.
		plays := r.dev.PlayCalls()
		time.Sleep(1 * time.Second)
		synctest.Wait()
		if got := r.dev.PlayCalls(); got != plays {
			t.Errorf("device got %d plays after Close, want %d", got, plays)
		}
	})
}

var errSeekRefused = errBackend("seek refused")

type errBackend string

func (e errBackend) Error() string { return string(e) }
