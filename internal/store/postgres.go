package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/db"
	"github.com/sells-group/leads-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	getSnapshotSQL    = `SELECT id, source, fingerprint, tier_hash, lead_count, loaded_at FROM snapshots WHERE id = $1`
	findSnapshotSQL   = `SELECT id, source, fingerprint, tier_hash, lead_count, loaded_at FROM snapshots WHERE fingerprint = $1 AND tier_hash = $2`
	latestSnapshotSQL = `SELECT id, source, fingerprint, tier_hash, lead_count, loaded_at FROM snapshots ORDER BY loaded_at DESC, id LIMIT 1`
	loadLeadsSQL      = `SELECT employer_name, ein, state, participants, segment, plan_name, tier, outreach_query FROM snapshot_leads WHERE snapshot_id = $1 ORDER BY position`
)

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_snapshot":    getSnapshotSQL,
	"find_snapshot":   findSnapshotSQL,
	"latest_snapshot": latestSnapshotSQL,
	"load_leads":      loadLeadsSQL,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	source      TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	tier_hash   TEXT NOT NULL,
	lead_count  INTEGER NOT NULL,
	loaded_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT snapshots_fingerprint_tier_key UNIQUE (fingerprint, tier_hash)
);

CREATE TABLE IF NOT EXISTS snapshot_leads (
	snapshot_id    TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
	position       INTEGER NOT NULL,
	employer_name  TEXT NOT NULL,
	ein            BIGINT NOT NULL,
	state          TEXT NOT NULL,
	participants   INTEGER NOT NULL,
	segment        TEXT NOT NULL,
	plan_name      TEXT NOT NULL,
	tier           TEXT NOT NULL,
	outreach_query TEXT NOT NULL,
	PRIMARY KEY (snapshot_id, position)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_loaded_at ON snapshots(loaded_at DESC);
CREATE INDEX IF NOT EXISTS idx_snapshot_leads_snapshot_id ON snapshot_leads(snapshot_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// leadColumns is the column order for bulk COPY into snapshot_leads.
var leadColumns = []string{
	"snapshot_id", "position", "employer_name", "ein", "state",
	"participants", "segment", "plan_name", "tier", "outreach_query",
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save snapshot")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	// Replace any snapshot previously loaded from the same bytes and tiers.
	if _, err := tx.Exec(ctx,
		`DELETE FROM snapshots WHERE fingerprint = $1 AND tier_hash = $2`,
		snap.Fingerprint, snap.TierHash,
	); err != nil {
		return eris.Wrap(err, "postgres: delete previous snapshot")
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO snapshots (id, source, fingerprint, tier_hash, lead_count, loaded_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		snap.ID, snap.Source, snap.Fingerprint, snap.TierHash, len(snap.Leads), snap.LoadedAt,
	); err != nil {
		return eris.Wrap(err, "postgres: insert snapshot")
	}

	rows := make([][]any, len(snap.Leads))
	for i := range snap.Leads {
		l := &snap.Leads[i]
		rows[i] = []any{
			snap.ID, i, l.EmployerName, l.EIN, l.State,
			l.Participants, string(l.Segment), l.PlanName, string(l.Tier), l.OutreachQuery,
		}
	}
	if _, err := db.CopyFrom(ctx, tx, "snapshot_leads", leadColumns, rows); err != nil {
		return err
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit save snapshot")
}

func (s *PostgresStore) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	snap, err := scanSnapshot(s.pool.QueryRow(ctx, getSnapshotSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("snapshot not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get snapshot %s", id)
	}
	if err := s.loadLeads(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *PostgresStore) FindSnapshot(ctx context.Context, fingerprint, tierHash string) (*model.Snapshot, error) {
	snap, err := scanSnapshot(s.pool.QueryRow(ctx, findSnapshotSQL, fingerprint, tierHash))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find snapshot")
	}
	if err := s.loadLeads(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context) (*model.Snapshot, error) {
	snap, err := scanSnapshot(s.pool.QueryRow(ctx, latestSnapshotSQL))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.New("postgres: no snapshots loaded")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest snapshot")
	}
	if err := s.loadLeads(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.Snapshot, error) {
	query := `SELECT id, source, fingerprint, tier_hash, lead_count, loaded_at FROM snapshots WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Source != "" {
		query += fmt.Sprintf(` AND source = $%d`, argIdx)
		args = append(args, filter.Source)
		argIdx++
	}
	query += ` ORDER BY loaded_at DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list snapshots")
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan snapshot")
		}
		snaps = append(snaps, *snap)
	}
	return snaps, eris.Wrap(rows.Err(), "postgres: list snapshots iterate")
}

func (s *PostgresStore) DeleteSnapshot(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM snapshots WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete snapshot %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("snapshot not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) loadLeads(ctx context.Context, snap *model.Snapshot) error {
	rows, err := s.pool.Query(ctx, loadLeadsSQL, snap.ID)
	if err != nil {
		return eris.Wrapf(err, "postgres: load leads for snapshot %s", snap.ID)
	}
	defer rows.Close()

	leads := make([]model.Lead, 0, snap.LeadCount)
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.EmployerName, &l.EIN, &l.State, &l.Participants,
			&l.Segment, &l.PlanName, &l.Tier, &l.OutreachQuery); err != nil {
			return eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, l)
	}
	snap.Leads = leads
	return eris.Wrap(rows.Err(), "postgres: load leads iterate")
}
