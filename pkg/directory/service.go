package directory

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/platinummonkey/rowbind/pkg/observability"
	"github.com/platinummonkey/rowbind/pkg/scan"
)

const (
	// DefaultPageSize bounds list responses when no limit is given.
	DefaultPageSize = 50
	// MaxPageSize is the hard ceiling for list responses.
	MaxPageSize = 500
)

const (
	listPeopleQuery = `SELECT id, "firstName", "lastName", "dateOfBirth", email FROM people ORDER BY id LIMIT $1`
	getPersonQuery  = `SELECT id, "firstName", "lastName", "dateOfBirth", email FROM people WHERE id = $1`
)

// Service reads directory entries through the scanner's declared mappings.
type Service struct {
	db      *sql.DB
	scanner *scan.Scanner
	logger  *observability.Logger
}

// NewService creates a directory service.
func NewService(db *sql.DB, scanner *scan.Scanner, logger *observability.Logger) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if scanner == nil {
		return nil, fmt.Errorf("scanner is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Service{db: db, scanner: scanner, logger: logger}, nil
}

// ListPeople returns up to limit directory entries ordered by id.
func (s *Service) ListPeople(ctx context.Context, limit int) ([]Person, error) {
	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	people, err := scan.All[Person](ctx, s.scanner, s.db, listPeopleQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return people, nil
}

// GetPerson returns a single directory entry. The caller can detect a
// missing entry with errors.Is(err, sql.ErrNoRows).
func (s *Service) GetPerson(ctx context.Context, id int64) (Person, error) {
	person, err := scan.One[Person](ctx, s.scanner, s.db, getPersonQuery, id)
	if err != nil {
		return Person{}, err
	}
	return person, nil
}

// EnsureSchema creates the demo people table. Used by the sqlite demo mode;
// production deployments own their schema.
func (s *Service) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS people (
		id INTEGER PRIMARY KEY,
		"firstName" TEXT NOT NULL,
		"lastName" TEXT NOT NULL,
		"dateOfBirth" TIMESTAMP NOT NULL,
		email TEXT NOT NULL UNIQUE
	)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure people table: %w", err)
	}
	return nil
}

// SeedDemoData inserts a few well-known entries for the demo binary.
func (s *Service) SeedDemoData(ctx context.Context) error {
	query := `
	INSERT INTO people (id, "firstName", "lastName", "dateOfBirth", email) VALUES
		(1, 'Ada', 'Lovelace', '1815-12-10T00:00:00Z', 'ada@example.com'),
		(2, 'Alan', 'Turing', '1912-06-23T00:00:00Z', 'alan@example.com'),
		(3, 'Grace', 'Hopper', '1906-12-09T00:00:00Z', 'grace@example.com')
	ON CONFLICT DO NOTHING`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}
	s.logger.Info("demo data seeded")
	return nil
}
