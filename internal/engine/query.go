package engine

import (
	"fmt"

	"github.com/sells-group/leads-cli/internal/model"
)

// OutreachQuery builds the research prompt for a lead: who the benefits
// decision-maker is and how to reach them. Deterministic — the same lead
// always yields a byte-identical string, so the loader can cache the result
// on the record and exports never drift from what a fresh call would
// produce. No lookup or network call happens here; the string is handed to a
// human (or a separate research step) as-is.
func OutreachQuery(l *model.Lead) string {
	if l.State == "" {
		return fmt.Sprintf(
			"Find the employee benefits decision-maker (HR Director, Benefits Manager, or CFO) for %s (EIN: %d). Include their name, title, email, and phone if available.",
			l.EmployerName, l.EIN)
	}
	return fmt.Sprintf(
		"Find the employee benefits decision-maker (HR Director, Benefits Manager, or CFO) for %s (EIN: %d) in %s. Include their name, title, email, and phone if available.",
		l.EmployerName, l.EIN, l.State)
}
