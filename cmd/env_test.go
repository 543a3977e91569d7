//go:build !integration

package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/store"
)

func validTestConfig(dbPath string) *config.Config {
	return &config.Config{
		Store:    config.StoreConfig{Driver: "sqlite", Path: dbPath},
		Outreach: config.OutreachConfig{PageSize: 50, TopN: 50, HistogramBins: 30, TopStates: 15},
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg = validTestConfig(filepath.Join(t.TempDir(), "test.db"))

	st, err := openStore(context.Background(), "outreach")
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	// Migrations ran: the snapshot tables are queryable.
	snaps, err := st.ListSnapshots(context.Background(), store.SnapshotFilter{})
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestOpenStore_InvalidMode(t *testing.T) {
	cfg = validTestConfig(filepath.Join(t.TempDir(), "test.db"))

	st, err := openStore(context.Background(), "notion")
	assert.Nil(t, st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion.token is required")
}

func TestInitStore_SQLite(t *testing.T) {
	cfg = validTestConfig(filepath.Join(t.TempDir(), "test.db"))

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck
}

func TestInitStore_UnsupportedDriver(t *testing.T) {
	cfg = validTestConfig("")
	cfg.Store.Driver = "mysql"

	st, err := initStore(context.Background())
	assert.Nil(t, st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestLoadSnapshot(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.NewSQLite(dbPath)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))

	older := &model.Snapshot{
		ID:          uuid.New().String(),
		Source:      "rosters/old.csv",
		Fingerprint: "fp-old",
		TierHash:    "th",
		LoadedAt:    time.Now().UTC().Add(-time.Hour),
	}
	newer := &model.Snapshot{
		ID:          uuid.New().String(),
		Source:      "rosters/new.csv",
		Fingerprint: "fp-new",
		TierHash:    "th",
		LoadedAt:    time.Now().UTC(),
	}
	require.NoError(t, st.SaveSnapshot(ctx, older))
	require.NoError(t, st.SaveSnapshot(ctx, newer))

	// Empty ID resolves to the most recent snapshot.
	snap, err := loadSnapshot(ctx, st, "")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, snap.ID)

	// An explicit ID wins.
	snap, err = loadSnapshot(ctx, st, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, snap.ID)
}

func TestLoadSnapshot_EmptyStore(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(ctx))

	_, err = loadSnapshot(ctx, st, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no snapshots loaded")
}
