// Package db defines the pgx pool surface the Postgres store depends on,
// plus a shared helper for bulk COPY inserts.
package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Conn is the query surface shared by a connection pool and an open
// transaction, so helpers can run inside or outside a transaction.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Pool adds transaction and lifecycle operations on top of Conn. Both
// *pgxpool.Pool and the pgxmock pool satisfy it, which keeps store code
// testable without a live server.
type Pool interface {
	Conn
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var (
	_ Pool = (*pgxpool.Pool)(nil)
	_ Conn = (pgx.Tx)(nil)
)
