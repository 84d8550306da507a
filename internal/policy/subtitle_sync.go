package policy

import "github.com/llehouerou/cuesync/internal/subtitle"

// SubtitleSync keeps the active cue index consistent with the playback
// position. It only proposes; a user's ownership lock may still override the
// proposal at commit time.
type SubtitleSync struct{}

// Name implements Policy.
func (*SubtitleSync) Name() string { return "subtitle-sync" }

// Evaluate implements Policy.
func (p *SubtitleSync) Evaluate(ctx *Context) []Intent {
	if len(ctx.Cues) == 0 {
		return nil
	}

	idx := subtitle.ResolveIndex(ctx.Time, ctx.Cues)
	if idx == ctx.ActiveIndex {
		return nil
	}

	return []Intent{{
		Domain:   DomainSubtitle,
		Priority: PriorityNormal,
		Reason:   ReasonCueChanged,
		Policy:   p.Name(),
		Subtitle: &SubtitleIntent{Index: idx},
	}}
}
