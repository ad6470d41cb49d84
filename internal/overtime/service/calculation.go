package service

import (
	"context"
	"time"

	"github.com/medflow/payroll-backend/internal/overtime/domain"
	"github.com/medflow/payroll-backend/internal/overtime/events"
	"github.com/medflow/payroll-backend/internal/overtime/repository"
	"github.com/medflow/payroll-backend/pkg/actor"
	"github.com/medflow/payroll-backend/pkg/database"
	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/medflow/payroll-backend/pkg/logger"
)

// CalculationResult summarises one calculate request
type CalculationResult struct {
	InsertedCount            int    `json:"insertedCount"`
	EmployeeDaysWithOvertime int    `json:"employeeDaysWithOvertime"`
	From                     string `json:"from"`
	To                       string `json:"to"`
	PeriodID                 string `json:"periodId"`
	SupersededCount          int    `json:"supersededCount"`
	SkippedCount             int    `json:"skippedCount"`
	PreservedCount           int    `json:"preservedCount"`
	RunID                    string `json:"runId"`
}

// CalculationService computes and persists overtime for a date range
type CalculationService struct {
	db        *database.DB
	repos     *Repositories
	publisher *events.OvertimeEventPublisher
	logger    *logger.Logger
}

// NewCalculationService creates a new calculation service
func NewCalculationService(
	db *database.DB,
	repos *Repositories,
	publisher *events.OvertimeEventPublisher,
	log *logger.Logger,
) *CalculationService {
	return &CalculationService{
		db:        db,
		repos:     repos,
		publisher: publisher,
		logger:    log,
	}
}

// Calculate replaces the pending overtime of [from, to] with a fresh computation.
//
// Catalog lookup, period resolution, supersession of pending entries and
// every insert share one transaction: either the whole run is visible or
// none of it is. Decided entries in the range are left alone.
func (s *CalculationService) Calculate(ctx context.Context, from, to time.Time) (*CalculationResult, error) {
	if from.After(to) {
		return nil, errors.InvalidRange("from must not be after to")
	}

	run := &repository.CalculationRun{
		RangeStart:  from,
		RangeEnd:    to,
		RequestedBy: actor.IDFromContext(ctx),
	}

	err := s.db.WithinTx(ctx, func(ctx context.Context) error {
		types, err := s.repos.Catalogs.OvertimeTypeIDs(ctx)
		if err != nil {
			return err
		}
		states, err := s.repos.Catalogs.WorkflowStates(ctx)
		if err != nil {
			return err
		}
		pendingID := states.ID(domain.StatePending)

		if run.PeriodID, err = s.repos.Periods.Resolve(ctx, from, to); err != nil {
			return err
		}
		if err := s.repos.Runs.Create(ctx, run); err != nil {
			return err
		}
		log := s.logger.WithRunID(run.ID)

		if run.SupersededCount, err = s.repos.Segments.DeactivatePendingInRange(ctx, from, to, run.ID, pendingID); err != nil {
			return err
		}

		decided, err := s.repos.Segments.DecidedWindows(ctx, from, to, pendingID)
		if err != nil {
			return err
		}

		facts, err := s.repos.Attendance.ListForRange(ctx, from, to)
		if err != nil {
			return err
		}

		days := make(map[string]struct{})
		for _, f := range facts {
			priced, reason := domain.Compute(f)
			switch reason {
			case domain.SkipNone:
			case domain.SkipNoExtra:
				continue
			default:
				run.SkippedCount++
				log.Debug().
					Str("attendance_id", f.AttendanceID).
					Str("employee_id", f.EmployeeID).
					Str("reason", string(reason)).
					Msg("attendance skipped")
				continue
			}

			inserted := 0
			for _, p := range priced {
				// approved or rejected windows keep their decision
				if _, ok := decided[repository.WindowKey(p.EmployeeID, types[p.Kind], p.Date, p.StartTime, p.EndTime)]; ok {
					run.PreservedCount++
					continue
				}
				seg := &repository.Segment{
					EmployeeID:     p.EmployeeID,
					TypeID:         types[p.Kind],
					PeriodID:       run.PeriodID,
					RunID:          &run.ID,
					Description:    p.Description,
					Amount:         p.Amount,
					Hours:          p.Hours,
					WorkDate:       p.Date,
					AttendanceDate: f.Date,
					StartTime:      p.StartTime,
					EndTime:        p.EndTime,
					Holiday:        p.Holiday,
				}
				if err := s.repos.Segments.Insert(ctx, seg); err != nil {
					return err
				}
				if _, err := s.repos.Segments.InsertApproval(ctx, seg.ID, pendingID); err != nil {
					return err
				}
				run.InsertedCount++
				inserted++
			}
			if inserted > 0 {
				days[f.EmployeeID+"|"+f.Date.Format(events.DateLayout)] = struct{}{}
			}
		}
		run.EmployeeDays = len(days)

		return s.repos.Runs.Complete(ctx, run)
	})
	if err != nil {
		return nil, translate(err)
	}

	s.publisher.PublishCalculated(ctx, run)

	s.logger.Info().
		Str("run_id", run.ID).
		Str("period_id", run.PeriodID).
		Str("requested_by", run.RequestedBy).
		Int("inserted", run.InsertedCount).
		Int("superseded", run.SupersededCount).
		Int("employee_days", run.EmployeeDays).
		Int("skipped", run.SkippedCount).
		Int("preserved", run.PreservedCount).
		Msg("overtime calculated")

	return &CalculationResult{
		InsertedCount:            run.InsertedCount,
		EmployeeDaysWithOvertime: run.EmployeeDays,
		From:                     from.Format(events.DateLayout),
		To:                       to.Format(events.DateLayout),
		PeriodID:                 run.PeriodID,
		SupersededCount:          run.SupersededCount,
		SkippedCount:             run.SkippedCount,
		PreservedCount:           run.PreservedCount,
		RunID:                    run.ID,
	}, nil
}
