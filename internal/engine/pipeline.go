package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/cuesync/internal/clock"
	"github.com/llehouerou/cuesync/internal/policy"
	"github.com/llehouerou/cuesync/internal/timing"
	"github.com/llehouerou/cuesync/internal/trace"
)

// onClockEvent runs the six-phase pipeline for one clock event. Ticks are
// serialized under e.mu, so each one reads a stable context and finishes
// its commit before the next begins.
func (e *Engine) onClockEvent(ev clock.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}

	e.seq++
	tk := trace.Tick{
		Seq:      e.seq,
		Event:    ev.Kind.String(),
		At:       ev.Timestamp,
		Position: ev.Position,
	}
	start := time.Now()

	mark := start
	e.updateFacts(ev)
	tk.Phases.UpdateFacts = time.Since(mark)

	mark = time.Now()
	intents := e.collect(&tk)
	tk.Phases.Collect = time.Since(mark)

	mark = time.Now()
	resolved := reduce(intents)
	for _, domain := range planOrder {
		if res, ok := resolved[domain]; ok {
			tk.Resolutions = append(tk.Resolutions, trace.ResolutionRecord{
				Domain: string(domain),
				Policy: res.Intent.Policy,
				Reason: string(res.Intent.Reason),
			})
		}
	}
	tk.Phases.Reduce = time.Since(mark)

	mark = time.Now()
	effects, changes := e.plan(resolved)
	tk.Phases.Plan = time.Since(mark)

	mark = time.Now()
	e.execute(effects, &tk)
	tk.Phases.Execute = time.Since(mark)

	mark = time.Now()
	e.commit(changes)
	tk.Phases.Commit = time.Since(mark)

	tk.Total = time.Since(start)
	tk.Slow = tk.Total > tickBudget
	tk.Outcome = tickOutcome(effects, changes)
	if tk.Slow {
		e.log.Warn().
			Uint64("tick", tk.Seq).
			Str("event", tk.Event).
			Dur("total", tk.Total).
			Msg("slow pipeline tick")
	}
	e.ring.Add(tk)
	return nil
}

// updateFacts folds the event into the context. Seek events are position
// discontinuities: PrevTime snaps to the landing position so boundary
// crossing checks never span the jump.
func (e *Engine) updateFacts(ev clock.Event) {
	switch ev.Kind {
	case clock.EventSeeking, clock.EventSeeked:
		e.ctx.PrevTime = ev.Position
	default:
		e.ctx.PrevTime = e.ctx.Time
	}
	e.ctx.Time = ev.Position
	e.ctx.Duration = ev.Duration
	e.ctx.Paused = ev.Paused
	e.ctx.Rate = ev.Rate

	switch ev.Kind {
	case clock.EventSeeking:
		e.ctx.Seeking = true
	case clock.EventSeeked:
		e.ctx.Seeking = false
		e.ctx.Ended = false
	case clock.EventEnded:
		e.ctx.Ended = true
	case clock.EventPlay:
		e.ctx.Ended = false
	}

	e.mir.SetCurrentTime(e.ctx.Time)
	e.mir.SetDuration(e.ctx.Duration)
	e.mir.SetPlaying(!e.ctx.Paused)
	e.mir.SetPlaybackRate(e.ctx.Rate)
	e.mir.SetSeeking(e.ctx.Seeking)
	e.mir.SetEnded(e.ctx.Ended)
}

// collect gathers intents from every policy. A panicking policy loses its
// proposals for this tick and the rest continue.
func (e *Engine) collect(tk *trace.Tick) []policy.Intent {
	var intents []policy.Intent
	for _, p := range e.policies {
		proposals := e.evalPolicy(p)
		for _, in := range proposals {
			tk.Intents = append(tk.Intents, trace.IntentRecord{
				Domain:   string(in.Domain),
				Policy:   in.Policy,
				Reason:   string(in.Reason),
				Priority: in.Priority,
			})
		}
		intents = append(intents, proposals...)
	}
	return intents
}

func (e *Engine) evalPolicy(p policy.Policy) (out []policy.Intent) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			e.log.Error().
				Str("policy", p.Name()).
				Interface("panic", r).
				Msg("policy panicked, dropping its intents for this tick")
		}
	}()
	return p.Evaluate(&e.ctx)
}

// plan turns each winning resolution into outward effects and pending
// internal changes. It reads the context but mutates nothing.
func (e *Engine) plan(resolved map[policy.Domain]Resolution) ([]Effect, StateChangeSet) {
	var (
		effects []Effect
		changes StateChangeSet
	)
	for _, domain := range planOrder {
		res, ok := resolved[domain]
		if !ok {
			continue
		}
		in := res.Intent
		src := in.Policy + "/" + string(in.Reason)

		switch domain {
		case policy.DomainTransport:
			kind := EffectPause
			paused := true
			if in.Transport.Action == policy.TransportPlay {
				kind = EffectPlay
				paused = false
			}
			effects = append(effects, Effect{ID: uuid.NewString(), Kind: kind, Source: src})
			changes.Paused = &paused

		case policy.DomainSeek:
			target := max(in.Seek.Target, 0)
			if e.ctx.Duration > 0 {
				target = timing.Clamp(target, 0, e.ctx.Duration)
			}
			effects = append(effects, Effect{ID: uuid.NewString(), Kind: EffectSeek, Source: src, SeekTarget: target})

		case policy.DomainSubtitle:
			idx := in.Subtitle.Index
			changes.ActiveIndex = &idx

		case policy.DomainLoop:
			cfg := e.ctx.Loop
			if in.Loop.Disable {
				cfg.Enabled = false
				cfg.Remaining = 0
			} else {
				cfg.Remaining = in.Loop.Remaining
			}
			changes.Loop = &cfg

		case policy.DomainSchedule:
			effects = append(effects, Effect{
				ID:     uuid.NewString(),
				Kind:   EffectSchedule,
				Source: src,
				Delay:  in.Schedule.Delay,
				Action: in.Schedule.Action,
			})

		case policy.DomainUI:
			note := in.UI.Note
			changes.Note = &note
		}
	}
	return effects, changes
}

// execute performs the planned effects. Failures are isolated per effect:
// logged with attribution, recorded in the trace, and the remaining effects
// still run.
func (e *Engine) execute(effects []Effect, tk *trace.Tick) {
	for _, ef := range effects {
		rec := trace.EffectRecord{ID: ef.ID, Kind: string(ef.Kind), Source: ef.Source}
		if err := e.applyEffect(ef); err != nil {
			rec.Err = err.Error()
			e.log.Error().
				Err(err).
				Str("effect", string(ef.Kind)).
				Str("source", ef.Source).
				Str("id", ef.ID).
				Msg("effect failed")
		}
		tk.Effects = append(tk.Effects, rec)
	}
}

func (e *Engine) applyEffect(ef Effect) error {
	switch ef.Kind {
	case EffectPlay:
		if err := e.dev.Play(); err != nil {
			return err
		}
		e.sched.After(playVerifyDelay, "verify-play", e.verifyPlayback)
		return nil
	case EffectPause:
		if err := e.dev.Pause(); err != nil {
			return err
		}
		e.sched.After(playVerifyDelay, "verify-pause", e.verifyPlayback)
		return nil
	case EffectSeek:
		return e.dev.Seek(ef.SeekTarget)
	case EffectSchedule:
		if ef.Action == policy.ScheduleResume {
			e.sched.After(ef.Delay, "auto-resume", e.autoResume)
		}
		return nil
	default:
		return fmt.Errorf("unknown effect kind %q", ef.Kind)
	}
}

// commit applies the pending changes. The ownership lock gets the final say
// on the active index, then the context is updated, then the mirror.
func (e *Engine) commit(changes StateChangeSet) {
	if changes.empty() {
		return
	}
	if changes.ActiveIndex != nil {
		idx := e.lock.SuggestIndex(*changes.ActiveIndex)
		if idx != e.ctx.ActiveIndex {
			e.ctx.ActiveIndex = idx
			e.mir.SetActiveCueIndex(idx)
		}
	}
	if changes.Paused != nil {
		e.ctx.Paused = *changes.Paused
		e.mir.SetPlaying(!e.ctx.Paused)
	}
	if changes.Loop != nil {
		e.ctx.Loop = *changes.Loop
		e.mir.UpdateLoopRemaining(changes.Loop.Remaining)
	}
	if changes.Note != nil {
		e.mir.SetNote(*changes.Note)
	}
}

func tickOutcome(effects []Effect, changes StateChangeSet) string {
	if len(effects) == 0 && changes.empty() {
		return "no-op"
	}
	var parts []string
	for _, ef := range effects {
		parts = append(parts, string(ef.Kind))
	}
	if changes.ActiveIndex != nil {
		parts = append(parts, "index")
	}
	if changes.Paused != nil {
		parts = append(parts, "paused")
	}
	if changes.Loop != nil {
		parts = append(parts, "loop")
	}
	if changes.Note != nil {
		parts = append(parts, "note")
	}
	return strings.Join(parts, ",")
}
