// Package repositories provides the PostgreSQL-backed implementations of the
// docket domain's repository interfaces.
package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier abstracts *pgxpool.Pool and pgx.Tx so a repository bound to a
// transaction shares all query code with its pool-bound parent.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txBeginner is the slice of pgxpool.Pool needed to open transactions.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
