package engine

import (
	"github.com/samber/lo"

	"github.com/llehouerou/cuesync/internal/policy"
)

// Resolution is the single winning intent for a domain after arbitration.
type Resolution struct {
	Domain policy.Domain
	Intent policy.Intent
}

// planOrder fixes the order in which resolved domains are turned into
// effects and state changes, so a tick's outcome does not depend on map
// iteration.
var planOrder = []policy.Domain{
	policy.DomainTransport,
	policy.DomainSeek,
	policy.DomainSubtitle,
	policy.DomainLoop,
	policy.DomainSchedule,
	policy.DomainUI,
}

// reduce arbitrates the collected intents: one winner per domain, chosen by
// highest priority. On equal priority the intent proposed first wins, which
// makes policy registration order the tie-breaker.
func reduce(intents []policy.Intent) map[policy.Domain]Resolution {
	resolved := make(map[policy.Domain]Resolution)
	for domain, group := range lo.GroupBy(intents, func(in policy.Intent) policy.Domain { return in.Domain }) {
		winner := group[0]
		for _, in := range group[1:] {
			if in.Priority > winner.Priority {
				winner = in
			}
		}
		resolved[domain] = Resolution{Domain: domain, Intent: winner}
	}
	return resolved
}
