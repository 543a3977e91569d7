// Package model defines the lead record, the closed tier and market-segment
// enumerations, and the tier assignment table used to classify leads.
package model

import "strconv"

// Lead is one self-insured employer record from the roster. The base fields
// come straight from the source; Tier and OutreachQuery are derived once at
// load time and never change afterward. Downstream code treats a Lead as
// read-only: filtering and ranking return new orderings of the same records,
// never modified copies.
type Lead struct {
	EmployerName string        `json:"employer_name"`
	EIN          int64         `json:"ein"`
	State        string        `json:"state,omitempty"`
	Participants int           `json:"participants"`
	Segment      MarketSegment `json:"market_segment"`
	PlanName     string        `json:"plan_name,omitempty"`

	Tier          Tier   `json:"priority_tier"`
	OutreachQuery string `json:"outreach_query"`
}

// EINString returns the decimal string form of the EIN, used for substring
// search and for exports.
func (l *Lead) EINString() string {
	return strconv.FormatInt(l.EIN, 10)
}
