//go:build integration

package scan

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/platinummonkey/rowbind/pkg/mapping"
)

type legacyEmployee struct {
	ID       int64 `db:"id"`
	Name     string
	Surname  string
	Birthday time.Time
}

// setupPostgres starts a disposable PostgreSQL container and returns an open
// connection plus a cleanup function.
func setupPostgres(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("rowbind_test"),
		postgres.WithUsername("rowbind"),
		postgres.WithPassword("rowbind"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())

	cleanup := func() {
		db.Close()
		termCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(termCtx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return db, cleanup
}

func TestScanner_PostgresEndToEnd(t *testing.T) {
	db, cleanup := setupPostgres(t)
	defer cleanup()

	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		CREATE TABLE employees (
			id BIGSERIAL PRIMARY KEY,
			"firstName" TEXT NOT NULL,
			"lastName" TEXT NOT NULL,
			"dateOfBirth" TIMESTAMPTZ NOT NULL
		)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO employees ("firstName", "lastName", "dateOfBirth") VALUES
		('Ada', 'Lovelace', '1815-12-10T00:00:00Z'),
		('Alan', 'Turing', '1912-06-23T00:00:00Z')`)
	require.NoError(t, err)

	// startup: declare and install the legacy column overrides
	m, err := mapping.NewMapper[legacyEmployee]()
	require.NoError(t, err)
	require.NoError(t, m.Declare("firstName", func(e *legacyEmployee) any { return &e.Name }))
	require.NoError(t, m.Declare("lastName", func(e *legacyEmployee) any { return &e.Surname }))
	require.NoError(t, m.Declare("dateOfBirth", func(e *legacyEmployee) any { return &e.Birthday }))

	registry := NewRegistry()
	require.NoError(t, m.InstallInto(registry))

	scanner, err := NewScanner(registry)
	require.NoError(t, err)

	t.Run("all rows", func(t *testing.T) {
		employees, err := All[legacyEmployee](ctx, scanner,
			db, `SELECT id, "firstName", "lastName", "dateOfBirth" FROM employees ORDER BY id`)
		require.NoError(t, err)
		require.Len(t, employees, 2)

		assert.Equal(t, "Ada", employees[0].Name)
		assert.Equal(t, "Lovelace", employees[0].Surname)
		assert.Equal(t, 1815, employees[0].Birthday.UTC().Year())
		assert.Equal(t, "Turing", employees[1].Surname)
	})

	t.Run("single row", func(t *testing.T) {
		e, err := One[legacyEmployee](ctx, scanner,
			db, `SELECT id, "firstName", "lastName", "dateOfBirth" FROM employees WHERE "lastName" = $1`, "Turing")
		require.NoError(t, err)
		assert.Equal(t, "Alan", e.Name)
	})

	t.Run("missing row", func(t *testing.T) {
		_, err := One[legacyEmployee](ctx, scanner,
			db, `SELECT id, "firstName", "lastName", "dateOfBirth" FROM employees WHERE "lastName" = $1`, "Hopper")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("transaction satisfies the querier surface", func(t *testing.T) {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()

		employees, err := All[legacyEmployee](ctx, scanner,
			tx, `SELECT id, "firstName", "lastName", "dateOfBirth" FROM employees`)
		require.NoError(t, err)
		assert.Len(t, employees, 2)
	})
}
