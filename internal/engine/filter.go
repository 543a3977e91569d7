// Package engine implements the in-memory lead operations: the composable
// filter pipeline, the stable priority ranking, pagination, outreach query
// generation, and roster statistics. Every function is a pure transformation
// over read-only leads — no I/O, no shared state — so concurrent callers
// never need locking.
package engine

import (
	"strings"

	"github.com/sells-group/leads-cli/internal/model"
)

// FilterRequest is one filter invocation's criteria. Each dimension is
// independent and combined with AND; a zero-valued dimension matches
// everything. MinParticipants and MaxParticipants are inclusive; zero means
// the end is open. Callers build a fresh request per call — the engine keeps
// no selection state between invocations.
type FilterRequest struct {
	States           []string
	Tiers            []model.Tier
	MinParticipants  int
	MaxParticipants  int
	Segments         []model.MarketSegment
	EmployerContains string
	EINContains      string
}

// IsZero reports whether the request constrains nothing.
func (r FilterRequest) IsZero() bool {
	return len(r.States) == 0 && len(r.Tiers) == 0 &&
		r.MinParticipants == 0 && r.MaxParticipants == 0 &&
		len(r.Segments) == 0 && r.EmployerContains == "" && r.EINContains == ""
}

// Filter returns the order-preserving subsequence of leads matching every
// dimension of the request. The result holds the same Lead pointers as the
// input; no records are copied or modified. Leads with missing optional
// fields never match a non-empty term and never cause an error.
func Filter(leads []*model.Lead, req FilterRequest) []*model.Lead {
	states := make(map[string]struct{}, len(req.States))
	for _, s := range req.States {
		states[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	tiers := make(map[model.Tier]struct{}, len(req.Tiers))
	for _, t := range req.Tiers {
		tiers[t] = struct{}{}
	}
	segments := make(map[model.MarketSegment]struct{}, len(req.Segments))
	for _, s := range req.Segments {
		segments[s] = struct{}{}
	}
	employer := strings.ToLower(req.EmployerContains)

	out := make([]*model.Lead, 0, len(leads))
	for _, l := range leads {
		if len(states) > 0 {
			if _, ok := states[l.State]; !ok {
				continue
			}
		}
		if len(tiers) > 0 {
			if _, ok := tiers[l.Tier]; !ok {
				continue
			}
		}
		if l.Participants < req.MinParticipants {
			continue
		}
		if req.MaxParticipants > 0 && l.Participants > req.MaxParticipants {
			continue
		}
		if len(segments) > 0 {
			if _, ok := segments[l.Segment]; !ok {
				continue
			}
		}
		if employer != "" && !strings.Contains(strings.ToLower(l.EmployerName), employer) {
			continue
		}
		if req.EINContains != "" && !strings.Contains(l.EINString(), req.EINContains) {
			continue
		}
		out = append(out, l)
	}
	return out
}
