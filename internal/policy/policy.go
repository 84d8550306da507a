package policy

// Policy proposes zero or more intents for the current tick. Policies are
// pure functions of the context: they never mutate it and never perform
// side effects themselves.
type Policy interface {
	Name() string
	Evaluate(ctx *Context) []Intent
}

// Default returns the standard policy set in registration order. Order
// matters: it is the tie-breaker when two policies emit equal-priority
// intents in the same domain.
func Default() []Policy {
	return []Policy{
		&SubtitleSync{},
		&Loop{},
		&AutoPause{},
	}
}
