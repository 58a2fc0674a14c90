//go:build integration

// Integration tests for the PostgreSQL repositories.  They require Docker
// and are gated behind the "integration" build tag:
//
//	go test -tags integration ./internal/infrastructure/database/postgres/...
package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
)

// startPostgres launches a PostgreSQL 16 container, applies the docket
// schema and returns a connected pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "litidocket_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/litidocket_test?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	applyDocketSchema(t, pool)
	return pool
}

func applyDocketSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	ddl := `
	CREATE TABLE IF NOT EXISTS deadlines (
		id              TEXT PRIMARY KEY,
		case_id         TEXT NOT NULL,
		title           TEXT NOT NULL,
		description     TEXT NOT NULL DEFAULT '',
		notes           TEXT NOT NULL DEFAULT '',
		deadline_type   TEXT NOT NULL,
		priority        TEXT NOT NULL,
		status          TEXT NOT NULL DEFAULT 'pending',
		deadline_date   TIMESTAMPTZ NOT NULL,
		alert_intervals INTEGER[] NOT NULL DEFAULT '{}',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_deadlines_case_id ON deadlines (case_id);

	CREATE TABLE IF NOT EXISTS triage_jobs (
		id           TEXT PRIMARY KEY,
		case_id      TEXT NOT NULL,
		job_type     TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'running',
		progress     DOUBLE PRECISION NOT NULL DEFAULT 0,
		threshold    DOUBLE PRECISION NOT NULL DEFAULT 0,
		privilege_threshold DOUBLE PRECISION NOT NULL DEFAULT 0,
		document_ids TEXT[] NOT NULL DEFAULT '{}',
		result       JSONB,
		error        TEXT NOT NULL DEFAULT '',
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		finished_at  TIMESTAMPTZ
	);
	CREATE UNIQUE INDEX IF NOT EXISTS uq_triage_jobs_active
		ON triage_jobs (case_id, job_type) WHERE status = 'running';`

	_, err := pool.Exec(ctx, ddl)
	require.NoError(t, err)
}

func testLogger() logging.Logger {
	return logging.NewNopLogger()
}
