package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leads-cli/internal/model"
)

// sampleLeads is a two-lead shortlist with every export field populated.
func sampleLeads() []*model.Lead {
	return []*model.Lead{
		{
			EmployerName:  "Acme Industries",
			EIN:           111000111,
			State:         "MA",
			Participants:  6000,
			Segment:       model.SegmentLarge,
			PlanName:      "Acme Health Plan",
			Tier:          model.Tier1,
			OutreachQuery: "Find the employee benefits decision-maker (HR Director, Benefits Manager, or CFO) for Acme Industries (EIN: 111000111) in MA. Include their name, title, email, and phone if available.",
		},
		{
			EmployerName:  "Bolt Manufacturing",
			EIN:           222000222,
			State:         "TX",
			Participants:  3000,
			Segment:       model.SegmentMid,
			Tier:          model.Tier2,
			OutreachQuery: "Find the employee benefits decision-maker (HR Director, Benefits Manager, or CFO) for Bolt Manufacturing (EIN: 222000222) in TX. Include their name, title, email, and phone if available.",
		},
	}
}

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV_FilteredLayout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleLeads(), Options{}))

	rows := parseCSV(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, filteredColumns, rows[0])
	assert.Equal(t, []string{"Acme Industries", "111000111", "MA", "6000", "Large (5K+)", "Acme Health Plan", "Tier 1"}, rows[1])
	assert.Equal(t, []string{"Bolt Manufacturing", "222000222", "TX", "3000", "Mid (1K-5K)", "", "Tier 2"}, rows[2])
}

func TestWriteCSV_QueriesLayout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleLeads(), Options{Queries: true}))

	rows := parseCSV(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, queryColumns, rows[0])
	assert.Equal(t, "Tier 1", rows[1][5])
	assert.Contains(t, rows[1][6], "Acme Industries (EIN: 111000111)")
	assert.NotContains(t, rows[0], "Plan_Name")
}

func TestWriteCSV_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil, Options{}))

	rows := parseCSV(t, buf.Bytes())
	require.Len(t, rows, 1) // header only
	assert.Equal(t, filteredColumns, rows[0])
}

func TestWriteXLSX_RoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleLeads(), Options{Queries: true}))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	assert.Equal(t, "Leads", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	hdr := make([]string, 0, len(sheet.Rows[0].Cells))
	for _, c := range sheet.Rows[0].Cells {
		hdr = append(hdr, c.Value)
	}
	assert.Equal(t, queryColumns, hdr)

	assert.Equal(t, "Acme Industries", sheet.Rows[1].Cells[0].Value)
	assert.Equal(t, "111000111", sheet.Rows[1].Cells[1].Value)
	assert.Equal(t, "Tier 2", sheet.Rows[2].Cells[5].Value)
	assert.Contains(t, sheet.Rows[2].Cells[6].Value, "Bolt Manufacturing")
}

func TestWriteTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	WriteTable(&buf, sampleLeads(), false)

	out := buf.String()
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "EMPLOYER")
	assert.NotContains(t, out, "PLAN")
	assert.Contains(t, out, "Acme Industries")
	assert.Contains(t, out, "Tier 1")

	// Rows come out in display order, numbered from 1.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[2], "1"))
	assert.True(t, strings.HasPrefix(lines[3], "2"))
}

func TestWriteTable_Wide(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	WriteTable(&buf, sampleLeads(), true)

	out := buf.String()
	assert.Contains(t, out, "PLAN")
	assert.Contains(t, out, "Acme Health Plan")
}

func TestWriteTable_TruncatesLongNames(t *testing.T) {
	t.Parallel()

	long := sampleLeads()[:1]
	long[0].EmployerName = strings.Repeat("Consolidated ", 5) // 65 chars

	var buf bytes.Buffer
	WriteTable(&buf, long, false)

	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), long[0].EmployerName)
}
