package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sells-group/leads-cli/internal/model"
)

// WriteTable renders leads as an aligned text table, numbering rows in
// display order. wide adds the plan name column.
func WriteTable(out io.Writer, leads []*model.Lead, wide bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if wide {
		_, _ = fmt.Fprintln(w, "RANK\tEMPLOYER\tEIN\tSTATE\tPARTICIPANTS\tSEGMENT\tTIER\tPLAN")
		_, _ = fmt.Fprintln(w, "----\t--------\t---\t-----\t------------\t-------\t----\t----")
	} else {
		_, _ = fmt.Fprintln(w, "RANK\tEMPLOYER\tEIN\tSTATE\tPARTICIPANTS\tSEGMENT\tTIER")
		_, _ = fmt.Fprintln(w, "----\t--------\t---\t-----\t------------\t-------\t----")
	}

	for i, l := range leads {
		name := l.EmployerName
		if len(name) > 40 {
			name = name[:37] + "..."
		}
		if wide {
			plan := l.PlanName
			if len(plan) > 30 {
				plan = plan[:27] + "..."
			}
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				i+1, name, l.EINString(), l.State, l.Participants, l.Segment, l.Tier, plan)
		} else {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
				i+1, name, l.EINString(), l.State, l.Participants, l.Segment, l.Tier)
		}
	}
	_ = w.Flush()
}
