package policy

import "github.com/llehouerou/cuesync/internal/timing"

// AutoPause pauses playback when the active cue ends, optionally arming an
// automatic resume after a hold. When the loop policy is going to restart
// the same boundary, auto-pause yields: a tick must not both seek back and
// pause.
type AutoPause struct{}

// Name implements Policy.
func (*AutoPause) Name() string { return "auto-pause" }

// Evaluate implements Policy.
func (p *AutoPause) Evaluate(ctx *Context) []Intent {
	if !ctx.AutoPause.Enabled || ctx.Paused || ctx.Seeking {
		return nil
	}
	if WillRestart(ctx) {
		return nil
	}
	cue := ctx.ActiveCue()
	if cue == nil {
		return nil
	}
	if !timing.CrossedEnd(ctx.PrevTime, ctx.Time, cue.End, timing.Tolerance) {
		return nil
	}

	intents := []Intent{{
		Domain:    DomainTransport,
		Priority:  PriorityNormal,
		Reason:    ReasonSentenceEnd,
		Policy:    p.Name(),
		Transport: &TransportIntent{Action: TransportPause},
	}}
	if ctx.AutoPause.AutoResume && ctx.AutoPause.ResumeAfter > 0 {
		intents = append(intents, Intent{
			Domain:   DomainSchedule,
			Priority: PriorityNormal,
			Reason:   ReasonAutoResume,
			Policy:   p.Name(),
			Schedule: &ScheduleIntent{Delay: ctx.AutoPause.ResumeAfter, Action: ScheduleResume},
		})
	}
	return intents
}
