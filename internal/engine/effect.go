package engine

import (
	"time"

	"github.com/llehouerou/cuesync/internal/policy"
)

// EffectKind identifies an outward-facing action produced by the plan phase.
type EffectKind string

const (
	EffectPlay     EffectKind = "play"
	EffectPause    EffectKind = "pause"
	EffectSeek     EffectKind = "seek"
	EffectSchedule EffectKind = "schedule"
)

// Effect is one planned action against the playback device or the
// scheduler. Every effect carries a unique execution id for tracing.
type Effect struct {
	ID     string
	Kind   EffectKind
	Source string // "policy/reason" attribution

	SeekTarget time.Duration         // EffectSeek
	Delay      time.Duration         // EffectSchedule
	Action     policy.ScheduleAction // EffectSchedule
}

// StateChangeSet is the pipeline's pending internal mutation. Plan fills
// it, commit applies it. Nil fields mean "unchanged".
type StateChangeSet struct {
	ActiveIndex *int
	Paused      *bool
	Loop        *policy.LoopConfig
	Note        *string
}

func (c StateChangeSet) empty() bool {
	return c.ActiveIndex == nil && c.Paused == nil && c.Loop == nil && c.Note == nil
}
