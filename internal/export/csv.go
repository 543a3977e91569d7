package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/model"
)

// WriteCSV writes leads as CSV in the layout selected by opts.
func WriteCSV(w io.Writer, leads []*model.Lead, opts Options) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(columns(opts)); err != nil {
		return eris.Wrap(err, "export: write CSV header")
	}
	for _, l := range leads {
		if err := cw.Write(leadRow(l, opts)); err != nil {
			return eris.Wrap(err, "export: write CSV row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush CSV")
	}
	return nil
}
