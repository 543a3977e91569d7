package engine

import (
	"sort"

	"github.com/sells-group/leads-cli/internal/model"
)

// Rank returns the leads in outreach priority order: tier ascending (Tier 1
// first), then participants descending. The sort is stable — leads with
// equal tier and participant count keep their input order, so repeated calls
// on the same input page identically. The input slice is not modified.
func Rank(leads []*model.Lead) []*model.Lead {
	out := make([]*model.Lead, len(leads))
	copy(out, leads)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tier.Rank() != out[j].Tier.Rank() {
			return out[i].Tier.Rank() < out[j].Tier.Rank()
		}
		return out[i].Participants > out[j].Participants
	})
	return out
}

// TopN ranks the leads and truncates to the first n. An n larger than the
// set returns the whole ranked set; n <= 0 returns an empty slice. Neither
// is an error — shortlist sizes come from user input.
func TopN(leads []*model.Lead, n int) []*model.Lead {
	if n <= 0 {
		return []*model.Lead{}
	}
	ranked := Rank(leads)
	if n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
