// Package service holds the overtime use cases. Each operation that writes
// runs inside a single unit of work; events go out only after commit.
package service

import (
	"context"

	"github.com/medflow/payroll-backend/internal/overtime/repository"
	"github.com/medflow/payroll-backend/pkg/database"
	"github.com/medflow/payroll-backend/pkg/errors"
)

// Repositories bundles the repositories the overtime services share
type Repositories struct {
	Catalogs   *repository.CatalogRepository
	Periods    *repository.PeriodRepository
	Attendance *repository.AttendanceRepository
	Segments   *repository.SegmentRepository
	Runs       *repository.RunRepository
}

// NewRepositories builds every overtime repository on db
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Catalogs:   repository.NewCatalogRepository(db),
		Periods:    repository.NewPeriodRepository(db),
		Attendance: repository.NewAttendanceRepository(db),
		Segments:   repository.NewSegmentRepository(db),
		Runs:       repository.NewRunRepository(db),
	}
}

// QueryService serves the read-only overtime endpoints
type QueryService struct {
	repos *Repositories
}

// NewQueryService creates a new query service
func NewQueryService(repos *Repositories) *QueryService {
	return &QueryService{repos: repos}
}

// List lists active overtime entries with filters
func (s *QueryService) List(ctx context.Context, filter repository.SegmentFilter) ([]*repository.SegmentView, int, error) {
	return s.repos.Segments.List(ctx, filter)
}

// History returns an entry's approval version chain
func (s *QueryService) History(ctx context.Context, segmentID string) ([]*repository.Approval, error) {
	return s.repos.Segments.History(ctx, segmentID)
}

// Runs lists calculation runs, newest first
func (s *QueryService) Runs(ctx context.Context, periodID string, limit int) ([]*repository.CalculationRun, error) {
	return s.repos.Runs.List(ctx, periodID, limit)
}

// translate maps store errors with a user-facing meaning to AppErrors
func translate(err error) error {
	if err == nil {
		return nil
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if mapped := database.MapPQError(err); mapped != nil {
		return mapped
	}
	return err
}
