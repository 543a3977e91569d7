package engine

import (
	"sort"

	"github.com/sells-group/leads-cli/internal/model"
)

// Summary is the roster-level aggregate view. MedianParticipants and
// AvgParticipants are nil when the input is empty — "no data" is an explicit
// absence, never zero, NaN, or a panic, because summaries run over filtered
// subsets that can legitimately match nothing.
type Summary struct {
	Total              int                `json:"total"`
	MedianParticipants *float64           `json:"median_participants,omitempty"`
	AvgParticipants    *float64           `json:"avg_participants,omitempty"`
	TierCounts         map[model.Tier]int `json:"tier_counts"`
	LargeMarket        int                `json:"large_market"`
}

// Summarize computes the aggregate view of a lead set.
func Summarize(leads []*model.Lead) Summary {
	s := Summary{
		Total:      len(leads),
		TierCounts: make(map[model.Tier]int, 3),
	}
	if len(leads) == 0 {
		return s
	}

	participants := make([]int, 0, len(leads))
	var sum int64
	for _, l := range leads {
		participants = append(participants, l.Participants)
		sum += int64(l.Participants)
		s.TierCounts[l.Tier]++
		if l.Segment == model.SegmentLarge {
			s.LargeMarket++
		}
	}

	avg := float64(sum) / float64(len(leads))
	s.AvgParticipants = &avg

	sort.Ints(participants)
	var median float64
	mid := len(participants) / 2
	if len(participants)%2 == 1 {
		median = float64(participants[mid])
	} else {
		median = float64(participants[mid-1]+participants[mid]) / 2
	}
	s.MedianParticipants = &median

	return s
}

// StateCount is one row of the geographic distribution.
type StateCount struct {
	State string     `json:"state"`
	Tier  model.Tier `json:"tier"`
	Count int        `json:"count"`
}

// StateDistribution counts leads per state, ordered by count descending then
// state ascending so output is deterministic, truncated to topN (topN <= 0
// returns all states). Leads without a state are skipped.
func StateDistribution(leads []*model.Lead, topN int) []StateCount {
	counts := make(map[string]*StateCount)
	for _, l := range leads {
		if l.State == "" {
			continue
		}
		sc, ok := counts[l.State]
		if !ok {
			sc = &StateCount{State: l.State, Tier: l.Tier}
			counts[l.State] = sc
		}
		sc.Count++
	}

	out := make([]StateCount, 0, len(counts))
	for _, sc := range counts {
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].State < out[j].State
	})
	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// HistogramBucket is one bar of the participant histogram. Low and High are
// inclusive participant bounds.
type HistogramBucket struct {
	Low   int `json:"low"`
	High  int `json:"high"`
	Count int `json:"count"`
}

// ParticipantHistogram buckets leads by participant count into at most bins
// equal-width buckets spanning [min, max]. Empty input returns nil; a
// single-valued input returns one bucket.
func ParticipantHistogram(leads []*model.Lead, bins int) []HistogramBucket {
	if len(leads) == 0 || bins < 1 {
		return nil
	}

	lo, hi := leads[0].Participants, leads[0].Participants
	for _, l := range leads[1:] {
		if l.Participants < lo {
			lo = l.Participants
		}
		if l.Participants > hi {
			hi = l.Participants
		}
	}

	span := hi - lo + 1
	width := (span + bins - 1) / bins
	if width < 1 {
		width = 1
	}
	n := (span + width - 1) / width

	out := make([]HistogramBucket, n)
	for i := range out {
		low := lo + i*width
		high := low + width - 1
		if high > hi {
			high = hi
		}
		out[i] = HistogramBucket{Low: low, High: high}
	}
	for _, l := range leads {
		out[(l.Participants-lo)/width].Count++
	}
	return out
}
