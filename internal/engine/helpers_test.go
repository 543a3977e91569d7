package engine

import (
	"github.com/sells-group/leads-cli/internal/model"
)

// lead builds a classified, annotated record the way the loader does.
func lead(name string, ein int64, state string, participants int, seg model.MarketSegment) *model.Lead {
	l := &model.Lead{
		EmployerName: name,
		EIN:          ein,
		State:        state,
		Participants: participants,
		Segment:      seg,
	}
	l.Tier = model.DefaultTierTable().Classify(state)
	l.OutreachQuery = OutreachQuery(l)
	return l
}

// rosterABC is the canonical three-lead roster used across engine tests:
// Acme in MA (Tier 1), Bolt in TX (Tier 2), Crest in WY (Tier 3).
func rosterABC() []*model.Lead {
	return []*model.Lead{
		lead("Acme Industries", 11, "MA", 6000, model.SegmentLarge),
		lead("Bolt Manufacturing", 22, "TX", 3000, model.SegmentMid),
		lead("Crest Holdings", 33, "WY", 9000, model.SegmentLarge),
	}
}

func names(leads []*model.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.EmployerName
	}
	return out
}
