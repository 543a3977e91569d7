// Package leadstore turns raw roster bytes into classified snapshots and
// memoizes them in the snapshot store, keyed by source fingerprint and tier
// table hash.
package leadstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leads-cli/internal/engine"
	"github.com/sells-group/leads-cli/internal/fetcher"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/store"
)

// Options controls a single load.
type Options struct {
	Source    string           // local path or http(s)/ftp URL
	Format    string           // "csv", "xlsx", or "" to detect from the source name
	Delimiter rune             // CSV delimiter; 0 means comma
	Charset   string           // CSV charset; empty means UTF-8
	Sheet     string           // XLSX sheet name; empty means first sheet
	Tiers     *model.TierTable // classification table; nil means the default tiers
	Refresh   bool             // bypass the snapshot cache and re-parse
	Fetch     fetcher.Options  // transport options
}

// Loader loads rosters into snapshots backed by a Store.
type Loader struct {
	store store.Store
}

// NewLoader creates a Loader on top of the given snapshot store.
func NewLoader(st store.Store) *Loader {
	return &Loader{store: st}
}

// Load fetches, parses, classifies, and persists a roster. When the same
// source bytes were already loaded under the same tier table, the stored
// snapshot is returned without re-parsing; Refresh forces a full reload.
// Any record that fails validation aborts the whole load — a roster either
// loads completely or not at all.
func (ld *Loader) Load(ctx context.Context, opts Options) (*model.Snapshot, error) {
	log := zap.L().With(zap.String("source", opts.Source))

	tiers := model.DefaultTierTable()
	if opts.Tiers != nil {
		tiers = *opts.Tiers
	}

	raw, err := fetcher.Fetch(ctx, opts.Source, opts.Fetch)
	if err != nil {
		return nil, err
	}
	fingerprint := Fingerprint(raw)

	if !opts.Refresh {
		snap, err := ld.store.FindSnapshot(ctx, fingerprint, tiers.Hash())
		if err != nil {
			return nil, err
		}
		if snap != nil {
			log.Info("leadstore: reusing snapshot",
				zap.String("snapshot_id", snap.ID),
				zap.Int("leads", snap.LeadCount),
			)
			return snap, nil
		}
	}

	rows, err := parseRows(ctx, raw, opts)
	if err != nil {
		return nil, err
	}

	leads, err := buildLeads(rows, tiers)
	if err != nil {
		return nil, err
	}

	snap := &model.Snapshot{
		ID:          uuid.New().String(),
		Source:      opts.Source,
		Fingerprint: fingerprint,
		TierHash:    tiers.Hash(),
		LeadCount:   len(leads),
		LoadedAt:    time.Now().UTC(),
		Leads:       leads,
	}
	if err := ld.store.SaveSnapshot(ctx, snap); err != nil {
		return nil, err
	}

	log.Info("leadstore: loaded snapshot",
		zap.String("snapshot_id", snap.ID),
		zap.Int("leads", len(leads)),
		zap.String("fingerprint", fingerprint[:12]),
	)
	return snap, nil
}

// Fingerprint returns the SHA-256 hex digest of the raw source bytes.
func Fingerprint(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func parseRows(ctx context.Context, raw []byte, opts Options) ([][]string, error) {
	switch detectFormat(opts) {
	case "xlsx":
		return fetcher.ParseXLSX(raw, fetcher.XLSXOptions{SheetName: opts.Sheet})
	default:
		return readCSV(ctx, raw, opts)
	}
}

func detectFormat(opts Options) string {
	if opts.Format != "" {
		return strings.ToLower(opts.Format)
	}
	if strings.EqualFold(filepath.Ext(opts.Source), ".xlsx") {
		return "xlsx"
	}
	return "csv"
}

func readCSV(ctx context.Context, raw []byte, opts Options) ([][]string, error) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, bytes.NewReader(raw), fetcher.CSVOptions{
		Delimiter:  opts.Delimiter,
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
		TrimSpace:  true,
		Charset:    opts.Charset,
	})

	var records [][]string
	for row := range rowCh {
		records = append(records, row)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}

	var header []string
	select {
	case header = <-headerCh:
	default:
		return nil, eris.New("leadstore: roster has no header row")
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, header)
	rows = append(rows, records...)
	return rows, nil
}

// buildLeads converts raw rows (header first) into classified leads. Rows are
// strict: a single bad record fails the load with its record number.
func buildLeads(rows [][]string, tiers model.TierTable) ([]model.Lead, error) {
	if len(rows) == 0 {
		return nil, eris.New("leadstore: roster has no header row")
	}
	colIdx := mapColumns(rows[0])

	for _, group := range [][]string{employerCols, einCols, participantCols, segmentCols} {
		if err := requireColumn(colIdx, group); err != nil {
			return nil, err
		}
	}

	leads := make([]model.Lead, 0, len(rows)-1)
	for i, rec := range rows[1:] {
		recNo := i + 1

		name := firstNonEmpty(rec, colIdx, employerCols...)
		if name == "" {
			return nil, eris.Errorf("leadstore: record %d: employer name is empty", recNo)
		}

		ein, err := parseEIN(firstNonEmpty(rec, colIdx, einCols...))
		if err != nil {
			return nil, eris.Wrapf(err, "leadstore: record %d (%s)", recNo, name)
		}

		participants, err := parseCount(getCol(rec, colIdx, "participants"))
		if err != nil {
			return nil, eris.Wrapf(err, "leadstore: record %d (%s)", recNo, name)
		}

		segment, err := model.ParseMarketSegment(getCol(rec, colIdx, "market_segment"))
		if err != nil {
			return nil, eris.Wrapf(err, "leadstore: record %d (%s)", recNo, name)
		}

		lead := model.Lead{
			EmployerName: name,
			EIN:          ein,
			State:        strings.ToUpper(strings.TrimSpace(getCol(rec, colIdx, "state"))),
			Participants: participants,
			Segment:      segment,
			PlanName:     strings.TrimSpace(getCol(rec, colIdx, "plan_name")),
		}
		lead.Tier = tiers.Classify(lead.State)
		lead.OutreachQuery = engine.OutreachQuery(&lead)
		leads = append(leads, lead)
	}
	return leads, nil
}
