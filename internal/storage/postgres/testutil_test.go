package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL container, applies the backtests schema,
// and returns a pool plus a cleanup function.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	// The embedded migration files live in a package that imports this one,
	// so the schema is applied inline here. Keep in sync with
	// migrations/postgres/001_backtests.sql.
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS backtests (
			id              TEXT PRIMARY KEY,
			strategy_id     TEXT NOT NULL,
			symbols         TEXT[] NOT NULL,
			start_date      TIMESTAMPTZ NOT NULL,
			end_date        TIMESTAMPTZ NOT NULL,
			initial_capital DOUBLE PRECISION NOT NULL,
			frequency       TEXT NOT NULL,
			final_value     DOUBLE PRECISION NOT NULL,
			metrics         JSONB NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_backtests_strategy_id ON backtests (strategy_id);
		CREATE INDEX IF NOT EXISTS idx_backtests_created_at ON backtests (created_at);
	`)
	require.NoError(t, err, "failed to create backtests schema")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}
