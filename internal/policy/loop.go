package policy

import "github.com/llehouerou/cuesync/internal/timing"

// Loop restarts the active cue when playback crosses its end boundary.
// Finite loops count down and disable themselves once exhausted.
type Loop struct{}

// Name implements Policy.
func (*Loop) Name() string { return "loop" }

// Evaluate implements Policy.
func (p *Loop) Evaluate(ctx *Context) []Intent {
	if !ctx.Loop.Enabled || ctx.Seeking {
		return nil
	}
	cue := ctx.ActiveCue()
	if cue == nil {
		return nil
	}
	if !timing.CrossedEnd(ctx.PrevTime, ctx.Time, cue.End, timing.Tolerance) {
		return nil
	}

	if ctx.Loop.Mode == LoopFinite && ctx.Loop.Remaining <= 0 {
		return []Intent{
			{
				Domain:   DomainLoop,
				Priority: PriorityNormal,
				Reason:   ReasonLoopExhausted,
				Policy:   p.Name(),
				Loop:     &LoopIntent{Disable: true},
			},
			{
				Domain:   DomainUI,
				Priority: PriorityLow,
				Reason:   ReasonLoopExhausted,
				Policy:   p.Name(),
				UI:       &UIIntent{Note: "loop finished"},
			},
		}
	}

	intents := []Intent{{
		Domain:   DomainSeek,
		Priority: PriorityHigh,
		Reason:   ReasonLoopRestart,
		Policy:   p.Name(),
		Seek:     &SeekIntent{Target: cue.Start},
	}}
	if ctx.Loop.Mode == LoopFinite {
		intents = append(intents, Intent{
			Domain:   DomainLoop,
			Priority: PriorityNormal,
			Reason:   ReasonLoopRestart,
			Policy:   p.Name(),
			Loop:     &LoopIntent{Remaining: ctx.Loop.Remaining - 1},
		})
	}
	return intents
}

// WillRestart reports whether the loop policy would restart the active cue
// on its next boundary crossing. Other policies consult this to yield at a
// shared boundary.
func WillRestart(ctx *Context) bool {
	if !ctx.Loop.Enabled {
		return false
	}
	return ctx.Loop.Mode == LoopInfinite || ctx.Loop.Remaining > 0
}
