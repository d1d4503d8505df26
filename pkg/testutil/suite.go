package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cheftrack/cheftrack-backend/pkg/database"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
	"github.com/cheftrack/cheftrack-backend/pkg/migrate"
)

var (
	// Global test container (shared across all integration tests)
	globalContainer *PostgresContainer
	containerOnce   sync.Once
	containerErr    error
)

// tables in truncation order
var tables = []string{
	"usage_logs",
	"inventory_batches",
	"products",
	"categories",
	"sessions",
	"users",
}

// IntegrationSuite provides a base for integration tests with real PostgreSQL
type IntegrationSuite struct {
	Container *PostgresContainer
	DB        *database.DB
	Fixtures  *Fixtures
	Logger    *logger.Logger
}

// NewIntegrationSuite starts (or reuses) the shared container and applies
// the embedded migrations.
//
// Usage:
//
//	var suite *testutil.IntegrationSuite
//
//	func TestMain(m *testing.M) {
//	    flag.Parse()
//	    if !testing.Short() {
//	        suite, _ = testutil.NewIntegrationSuite(context.Background())
//	    }
//	    os.Exit(m.Run())
//	}
//
//	func TestSomething(t *testing.T) {
//	    testutil.RequireSuite(t, suite)
//	    suite.Reset(t)
//	    ...
//	}
func NewIntegrationSuite(ctx context.Context) (*IntegrationSuite, error) {
	container, err := getOrCreateContainer(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.Nop()
	db, err := database.NewWithDSN(container.DSN, log)
	if err != nil {
		return nil, err
	}

	if err := migrate.Run(ctx, db.DB.DB, "up"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return &IntegrationSuite{
		Container: container,
		DB:        db,
		Fixtures:  NewFixtures(db),
		Logger:    log,
	}, nil
}

func getOrCreateContainer(ctx context.Context) (*PostgresContainer, error) {
	containerOnce.Do(func() {
		globalContainer, containerErr = NewPostgresContainer(ctx, DefaultPostgresConfig())
	})
	return globalContainer, containerErr
}

// RequireSuite skips the test in short mode or when no suite could be started
func RequireSuite(t *testing.T, s *IntegrationSuite) {
	t.Helper()
	SkipIfShort(t)
	if s == nil {
		t.Skip("integration database unavailable")
	}
}

// Reset empties every table so each test starts from a clean schema
func (s *IntegrationSuite) Reset(t *testing.T) {
	t.Helper()
	query := "TRUNCATE "
	for i, table := range tables {
		if i > 0 {
			query += ", "
		}
		query += table
	}
	query += " CASCADE"

	if _, err := s.DB.ExecContext(context.Background(), query); err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}
}

// Cleanup closes the suite's connection pool
func (s *IntegrationSuite) Cleanup() error {
	if s == nil {
		return nil
	}
	return s.DB.Close()
}

// TerminateContainer terminates the shared container.
// Only call this in TestMain after all tests have completed.
func TerminateContainer(ctx context.Context) {
	if globalContainer != nil {
		globalContainer.Terminate(ctx)
	}
}
