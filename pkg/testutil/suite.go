package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/medflow/payroll-backend/pkg/database"
	"github.com/medflow/payroll-backend/pkg/logger"
)

var (
	// Shared across every integration test in a test binary
	globalContainer *PostgresContainer
	containerOnce   sync.Once
	containerErr    error
)

// IntegrationSuite provides a base for integration tests with real PostgreSQL
type IntegrationSuite struct {
	Container *PostgresContainer
	DB        *database.DB
	Fixtures  *FixtureFactory
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
//	    ctx := context.Background()
//	    suite, _ = testutil.NewIntegrationSuite(ctx)
//	    code := m.Run()
//	    testutil.TerminateContainer(ctx)
//	    os.Exit(code)
//	}
//
//	func TestSomething(t *testing.T) {
//	    s := testutil.RequireSuite(t, suite)
//	    s.Reset(t)
//	}
func NewIntegrationSuite(ctx context.Context) (*IntegrationSuite, error) {
	if os.Getenv("PAYROLL_SKIP_INTEGRATION") != "" {
		return nil, fmt.Errorf("integration tests disabled by PAYROLL_SKIP_INTEGRATION")
	}

	containerOnce.Do(func() {
		globalContainer, containerErr = NewPostgresContainer(ctx, DefaultPostgresConfig())
	})
	if containerErr != nil {
		return nil, containerErr
	}

	log := logger.New("payroll-test", "test")
	db, err := database.NewWithDSN(globalContainer.DSN, log)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return &IntegrationSuite{
		Container: globalContainer,
		DB:        db,
		Fixtures:  NewFixtureFactory(db),
		Logger:    log,
	}, nil
}

// RequireSuite skips the test when no container could be started
func RequireSuite(t *testing.T, s *IntegrationSuite) *IntegrationSuite {
	t.Helper()
	SkipIfShort(t)
	if s == nil {
		t.Skip("integration suite unavailable (docker not reachable)")
	}
	return s
}

// dataTables are emptied between tests; seeded catalogs survive.
var dataTables = []string{
	"overtime_approvals",
	"overtime_segments",
	"overtime_calculation_runs",
	"pay_periods",
	"attendance",
	"employee_schedules",
	"schedule_catalog_days",
	"schedule_catalogs",
	"holidays",
	"employees",
}

// Reset truncates every data table so each test starts from seeded catalogs only
func (s *IntegrationSuite) Reset(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, table := range dataTables {
		if _, err := s.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}

// Close releases the suite's connection pool
func (s *IntegrationSuite) Close() {
	if s != nil && s.DB != nil {
		s.DB.Close()
	}
}

// TerminateContainer terminates the shared container.
// Only call this in TestMain after all tests have completed.
func TerminateContainer(ctx context.Context) {
	if globalContainer != nil {
		globalContainer.Terminate(ctx)
	}
}
