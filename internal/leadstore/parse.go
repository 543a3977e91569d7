package leadstore

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Column name groups, matched case-insensitively; the first present and
// non-empty name wins. The Sponsor_* aliases cover rosters cut straight from
// Form 5500 extracts.
var (
	employerCols    = []string{"employer_name", "sponsor_name"}
	einCols         = []string{"ein", "sponsor_ein"}
	participantCols = []string{"participants"}
	segmentCols     = []string{"market_segment"}
)

// mapColumns builds a case-insensitive column name to index map.
func mapColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

// getCol gets a column value by name, returning empty string if not found.
func getCol(record []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[strings.ToLower(name)]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// firstNonEmpty returns the first non-empty value from the named columns.
func firstNonEmpty(record []string, colIdx map[string]int, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(getCol(record, colIdx, name)); v != "" {
			return v
		}
	}
	return ""
}

func requireColumn(colIdx map[string]int, names []string) error {
	for _, n := range names {
		if _, ok := colIdx[n]; ok {
			return nil
		}
	}
	return eris.Errorf("leadstore: roster missing required column %q", names[0])
}

// parseEIN accepts plain digits or the punctuated IRS form ("04-3456789").
func parseEIN(s string) (int64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), "-", "")
	if cleaned == "" {
		return 0, eris.New("ein is empty")
	}
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil || v <= 0 {
		return 0, eris.Errorf("invalid ein %q", s)
	}
	return v, nil
}

// parseCount parses a participant count, tolerating thousands separators.
func parseCount(s string) (int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" {
		return 0, eris.New("participants is empty")
	}
	v, err := strconv.Atoi(cleaned)
	if err != nil || v < 0 {
		return 0, eris.Errorf("invalid participants %q", s)
	}
	return v, nil
}
