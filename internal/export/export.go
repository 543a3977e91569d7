// Package export serializes lead lists for delivery: aligned text tables for
// the terminal, CSV and XLSX files for spreadsheets and list uploads.
//
// File exports carry one of two column layouts. The filtered layout keeps the
// plan name alongside the roster fields; the outreach layout swaps it for the
// generated outreach query so a ranked shortlist can go straight to a research
// queue.
package export

import (
	"strconv"

	"github.com/sells-group/leads-cli/internal/model"
)

// Options selects the column layout for CSV and XLSX exports.
type Options struct {
	// Queries switches from the filtered layout (with plan name) to the
	// outreach layout (with the generated query).
	Queries bool
}

// filteredColumns is the ordered header for filtered-list exports.
var filteredColumns = []string{
	"Employer_Name",
	"EIN",
	"State",
	"Participants",
	"Market_Segment",
	"Plan_Name",
	"Priority_Tier",
}

// queryColumns is the ordered header for ranked-shortlist exports.
var queryColumns = []string{
	"Employer_Name",
	"EIN",
	"State",
	"Participants",
	"Market_Segment",
	"Priority_Tier",
	"Outreach_Query",
}

func columns(opts Options) []string {
	if opts.Queries {
		return queryColumns
	}
	return filteredColumns
}

// leadRow maps a lead to its export row in the layout's column order.
func leadRow(l *model.Lead, opts Options) []string {
	row := []string{
		l.EmployerName,
		l.EINString(),
		l.State,
		strconv.Itoa(l.Participants),
		string(l.Segment),
	}
	if opts.Queries {
		return append(row, string(l.Tier), l.OutreachQuery)
	}
	return append(row, l.PlanName, string(l.Tier))
}
