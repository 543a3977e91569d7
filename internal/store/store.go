// Package store persists roster snapshots so repeated loads of the same
// source bytes and tier table are served from disk instead of re-fetched
// and re-parsed.
package store

import (
	"context"

	"github.com/sells-group/leads-cli/internal/model"
)

// SnapshotFilter specifies criteria for listing snapshots.
type SnapshotFilter struct {
	Source string `json:"source,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the snapshot persistence interface. Both backends keep at
// most one snapshot per (fingerprint, tier hash) pair: saving over an
// existing pair replaces it and its leads atomically.
type Store interface {
	// Snapshots. FindSnapshot returns (nil, nil) on a miss so callers can
	// fall through to a fresh load. ListSnapshots returns metadata only,
	// without leads.
	SaveSnapshot(ctx context.Context, snap *model.Snapshot) error
	GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error)
	FindSnapshot(ctx context.Context, fingerprint, tierHash string) (*model.Snapshot, error)
	LatestSnapshot(ctx context.Context) (*model.Snapshot, error)
	ListSnapshots(ctx context.Context, filter SnapshotFilter) ([]model.Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
