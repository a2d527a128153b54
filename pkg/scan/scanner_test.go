package scan

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/rowbind/pkg/mapping"
	"github.com/platinummonkey/rowbind/pkg/observability"
)

type scannedPerson struct {
	ID       int64 `db:"id"`
	Name     string
	Surname  string
	Birthday time.Time
	Email    string
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func personRegistry(t *testing.T) *Registry {
	t.Helper()
	m, err := mapping.NewMapper[scannedPerson]()
	require.NoError(t, err)
	require.NoError(t, m.Declare("firstName", func(p *scannedPerson) any { return &p.Name }))
	require.NoError(t, m.Declare("lastName", func(p *scannedPerson) any { return &p.Surname }))
	require.NoError(t, m.Declare("dateOfBirth", func(p *scannedPerson) any { return &p.Birthday }))

	r := NewRegistry()
	require.NoError(t, m.InstallInto(r))
	return r
}

func TestNewScanner(t *testing.T) {
	t.Run("nil registry", func(t *testing.T) {
		_, err := NewScanner(nil)
		assert.Error(t, err)
	})

	t.Run("default options", func(t *testing.T) {
		s, err := NewScanner(NewRegistry())
		require.NoError(t, err)
		assert.NotNil(t, s)
	})
}

func TestAll(t *testing.T) {
	birthday := time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC)

	t.Run("declared overrides and fallbacks combine", func(t *testing.T) {
		db, mock := setupMockDB(t)
		defer db.Close()

		s, err := NewScanner(personRegistry(t))
		require.NoError(t, err)

		mock.ExpectQuery("SELECT (.+) FROM people").WillReturnRows(
			sqlmock.NewRows([]string{"id", "firstName", "lastName", "dateOfBirth", "email"}).
				AddRow(1, "Ada", "Lovelace", birthday, "ada@example.com").
				AddRow(2, "Alan", "Turing", birthday, "alan@example.com"))

		people, err := All[scannedPerson](context.Background(), s, db, "SELECT * FROM people")
		require.NoError(t, err)
		require.Len(t, people, 2)

		assert.Equal(t, int64(1), people[0].ID)
		assert.Equal(t, "Ada", people[0].Name)
		assert.Equal(t, "Lovelace", people[0].Surname)
		assert.Equal(t, birthday, people[0].Birthday)
		assert.Equal(t, "ada@example.com", people[0].Email)
		assert.Equal(t, "Turing", people[1].Surname)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown columns are discarded", func(t *testing.T) {
		db, mock := setupMockDB(t)
		defer db.Close()

		s, err := NewScanner(personRegistry(t))
		require.NoError(t, err)

		mock.ExpectQuery("SELECT (.+) FROM people").WillReturnRows(
			sqlmock.NewRows([]string{"firstName", "legacy_flag"}).
				AddRow("Ada", "Y"))

		people, err := All[scannedPerson](context.Background(), s, db, "SELECT * FROM people")
		require.NoError(t, err)
		require.Len(t, people, 1)
		assert.Equal(t, "Ada", people[0].Name)
	})

	t.Run("works without a registered mapper via default matching", func(t *testing.T) {
		db, mock := setupMockDB(t)
		defer db.Close()

		s, err := NewScanner(NewRegistry())
		require.NoError(t, err)

		mock.ExpectQuery("SELECT (.+) FROM people").WillReturnRows(
			sqlmock.NewRows([]string{"id", "name", "EMAIL"}).
				AddRow(7, "Grace", "grace@example.com"))

		people, err := All[scannedPerson](context.Background(), s, db, "SELECT * FROM people")
		require.NoError(t, err)
		require.Len(t, people, 1)
		assert.Equal(t, int64(7), people[0].ID)
		assert.Equal(t, "Grace", people[0].Name)
		assert.Equal(t, "grace@example.com", people[0].Email)
	})

	t.Run("query error propagates", func(t *testing.T) {
		db, mock := setupMockDB(t)
		defer db.Close()

		s, err := NewScanner(personRegistry(t))
		require.NoError(t, err)

		mock.ExpectQuery("SELECT (.+) FROM people").WillReturnError(errors.New("connection reset"))

		_, err = All[scannedPerson](context.Background(), s, db, "SELECT * FROM people")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("non-struct target", func(t *testing.T) {
		db, mock := setupMockDB(t)
		defer db.Close()

		s, err := NewScanner(NewRegistry())
		require.NoError(t, err)

		mock.ExpectQuery("SELECT (.+)").WillReturnRows(
			sqlmock.NewRows([]string{"n"}).AddRow(1))

		_, err = All[int](context.Background(), s, db, "SELECT 1")
		var typeErr *mapping.TypeResolutionError
		require.ErrorAs(t, err, &typeErr)
	})
}

func TestOne(t *testing.T) {
	t.Run("single row", func(t *testing.T) {
		db, mock := setupMockDB(t)
		defer db.Close()

		s, err := NewScanner(personRegistry(t))
		require.NoError(t, err)

		mock.ExpectQuery("SELECT (.+) FROM people WHERE id").
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "firstName"}).AddRow(1, "Ada"))

		p, err := One[scannedPerson](context.Background(), s, db, "SELECT * FROM people WHERE id = $1", int64(1))
		require.NoError(t, err)
		assert.Equal(t, "Ada", p.Name)
	})

	t.Run("empty result returns sql.ErrNoRows", func(t *testing.T) {
		db, mock := setupMockDB(t)
		defer db.Close()

		s, err := NewScanner(personRegistry(t))
		require.NoError(t, err)

		mock.ExpectQuery("SELECT (.+) FROM people WHERE id").
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "firstName"}))

		_, err = One[scannedPerson](context.Background(), s, db, "SELECT * FROM people WHERE id = $1", int64(404))
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestScanner_PlanCache(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	s, err := NewScanner(personRegistry(t), WithMetrics(metrics), WithPlanCacheSize(16))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		mock.ExpectQuery("SELECT (.+) FROM people").WillReturnRows(
			sqlmock.NewRows([]string{"id", "firstName"}).AddRow(1, "Ada"))
	}

	for i := 0; i < 3; i++ {
		_, err := All[scannedPerson](context.Background(), s, db, "SELECT * FROM people")
		require.NoError(t, err)
	}

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.PlanCacheMissesTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.PlanCacheHitsTotal))
	assert.Equal(t, float64(3), testutil.ToFloat64(
		metrics.ScanOperationsTotal.WithLabelValues("scan.scannedPerson", "success")))
}

func TestScanner_ConcurrentScans(t *testing.T) {
	registry := personRegistry(t)
	s, err := NewScanner(registry)
	require.NoError(t, err)

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			db, mock, err := sqlmock.New()
			if err != nil {
				done <- err
				return
			}
			defer db.Close()

			mock.ExpectQuery("SELECT (.+) FROM people").WillReturnRows(
				sqlmock.NewRows([]string{"id", "firstName", "lastName"}).
					AddRow(1, "Ada", "Lovelace"))

			people, err := All[scannedPerson](context.Background(), s, db, "SELECT * FROM people")
			if err == nil && (len(people) != 1 || people[0].Surname != "Lovelace") {
				err = errors.New("unexpected scan result")
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}
}
