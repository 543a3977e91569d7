package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leads-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	tier_hash   TEXT NOT NULL,
	lead_count  INTEGER NOT NULL,
	loaded_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS snapshot_leads (
	snapshot_id    TEXT NOT NULL REFERENCES snapshots(id),
	position       INTEGER NOT NULL,
	employer_name  TEXT NOT NULL,
	ein            INTEGER NOT NULL,
	state          TEXT NOT NULL,
	participants   INTEGER NOT NULL,
	segment        TEXT NOT NULL,
	plan_name      TEXT NOT NULL,
	tier           TEXT NOT NULL,
	outreach_query TEXT NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_snapshots_fingerprint_tier ON snapshots(fingerprint, tier_hash);
CREATE INDEX IF NOT EXISTS idx_snapshots_loaded_at ON snapshots(loaded_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save snapshot")
	}
	defer tx.Rollback() //nolint:errcheck

	// Replace any snapshot previously loaded from the same bytes and tiers.
	// SQLite does not enforce the foreign key by default, so child rows are
	// removed explicitly.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshot_leads WHERE snapshot_id IN
		 (SELECT id FROM snapshots WHERE fingerprint = ? AND tier_hash = ?)`,
		snap.Fingerprint, snap.TierHash,
	); err != nil {
		return eris.Wrap(err, "sqlite: delete previous snapshot leads")
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM snapshots WHERE fingerprint = ? AND tier_hash = ?`,
		snap.Fingerprint, snap.TierHash,
	); err != nil {
		return eris.Wrap(err, "sqlite: delete previous snapshot")
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, source, fingerprint, tier_hash, lead_count, loaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Source, snap.Fingerprint, snap.TierHash, len(snap.Leads), snap.LoadedAt,
	); err != nil {
		return eris.Wrap(err, "sqlite: insert snapshot")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshot_leads (snapshot_id, position, employer_name, ein, state, participants, segment, plan_name, tier, outreach_query)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert lead")
	}
	defer stmt.Close() //nolint:errcheck

	for i := range snap.Leads {
		l := &snap.Leads[i]
		if _, err := stmt.ExecContext(ctx,
			snap.ID, i, l.EmployerName, l.EIN, l.State, l.Participants,
			string(l.Segment), l.PlanName, string(l.Tier), l.OutreachQuery,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert lead %d", i)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save snapshot")
}

func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, fingerprint, tier_hash, lead_count, loaded_at FROM snapshots WHERE id = ?`,
		id,
	)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("snapshot not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get snapshot %s", id)
	}
	if err := s.loadLeads(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStore) FindSnapshot(ctx context.Context, fingerprint, tierHash string) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, fingerprint, tier_hash, lead_count, loaded_at FROM snapshots
		 WHERE fingerprint = ? AND tier_hash = ?`,
		fingerprint, tierHash,
	)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find snapshot")
	}
	if err := s.loadLeads(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStore) LatestSnapshot(ctx context.Context) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, fingerprint, tier_hash, lead_count, loaded_at FROM snapshots
		 ORDER BY loaded_at DESC, id LIMIT 1`,
	)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, eris.New("sqlite: no snapshots loaded")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest snapshot")
	}
	if err := s.loadLeads(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.Snapshot, error) {
	query := `SELECT id, source, fingerprint, tier_hash, lead_count, loaded_at FROM snapshots WHERE 1=1`
	var args []any

	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY loaded_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		snaps = append(snaps, *snap)
	}
	return snaps, eris.Wrap(rows.Err(), "sqlite: list snapshots iterate")
}

func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin delete snapshot")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_leads WHERE snapshot_id = ?`, id); err != nil {
		return eris.Wrapf(err, "sqlite: delete snapshot leads %s", id)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete snapshot %s", id)
	}
	if err := checkRowsAffected(res, "snapshot", id); err != nil {
		return err
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit delete snapshot")
}

func (s *SQLiteStore) loadLeads(ctx context.Context, snap *model.Snapshot) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT employer_name, ein, state, participants, segment, plan_name, tier, outreach_query
		 FROM snapshot_leads WHERE snapshot_id = ? ORDER BY position`,
		snap.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: load leads for snapshot %s", snap.ID)
	}
	defer rows.Close()

	leads := make([]model.Lead, 0, snap.LeadCount)
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.EmployerName, &l.EIN, &l.State, &l.Participants,
			&l.Segment, &l.PlanName, &l.Tier, &l.OutreachQuery); err != nil {
			return eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, l)
	}
	snap.Leads = leads
	return eris.Wrap(rows.Err(), "sqlite: load leads iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scannable) (*model.Snapshot, error) {
	var snap model.Snapshot
	if err := row.Scan(&snap.ID, &snap.Source, &snap.Fingerprint, &snap.TierHash,
		&snap.LeadCount, &snap.LoadedAt); err != nil {
		return nil, err
	}
	return &snap, nil
}
