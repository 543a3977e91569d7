package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leads-cli/internal/model"
)

// sheetName is the single sheet carried by XLSX exports.
const sheetName = "Leads"

// WriteXLSX writes leads as a single-sheet workbook in the layout selected by
// opts. All cells are written as strings, EINs included.
func WriteXLSX(w io.Writer, leads []*model.Lead, opts Options) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	hdr := sheet.AddRow()
	for _, c := range columns(opts) {
		hdr.AddCell().Value = c
	}
	for _, l := range leads {
		row := sheet.AddRow()
		for _, v := range leadRow(l, opts) {
			row.AddCell().Value = v
		}
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}
