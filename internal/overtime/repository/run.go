package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medflow/payroll-backend/pkg/database"
)

// CalculationRun is the audit row left by one calculate request
type CalculationRun struct {
	ID              string    `db:"id" json:"id"`
	PeriodID        string    `db:"period_id" json:"periodId"`
	RangeStart      time.Time `db:"range_start" json:"from"`
	RangeEnd        time.Time `db:"range_end" json:"to"`
	RequestedBy     string    `db:"requested_by" json:"requestedBy"`
	SupersededCount int       `db:"superseded_count" json:"supersededCount"`
	InsertedCount   int       `db:"inserted_count" json:"insertedCount"`
	EmployeeDays    int       `db:"employee_days" json:"employeeDaysWithOvertime"`
	SkippedCount    int       `db:"skipped_count" json:"skippedCount"`
	PreservedCount  int       `db:"preserved_count" json:"preservedCount"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// RunRepository handles calculation run audit rows
type RunRepository struct {
	db *database.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *database.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create records the start of a run so segments can reference it
func (r *RunRepository) Create(ctx context.Context, run *CalculationRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	return r.db.Q(ctx).QueryRowxContext(ctx, `
		INSERT INTO overtime_calculation_runs (id, period_id, range_start, range_end, requested_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, run.ID, run.PeriodID, run.RangeStart, run.RangeEnd, run.RequestedBy).Scan(&run.CreatedAt)
}

// Complete stores the run's final counters
func (r *RunRepository) Complete(ctx context.Context, run *CalculationRun) error {
	_, err := r.db.Q(ctx).ExecContext(ctx, `
		UPDATE overtime_calculation_runs
		SET superseded_count = $2, inserted_count = $3, employee_days = $4, skipped_count = $5,
		    preserved_count = $6
		WHERE id = $1
	`, run.ID, run.SupersededCount, run.InsertedCount, run.EmployeeDays, run.SkippedCount, run.PreservedCount)
	return err
}

// List returns runs newest first, optionally restricted to one period
func (r *RunRepository) List(ctx context.Context, periodID string, limit int) ([]*CalculationRun, error) {
	query := `
		SELECT id, period_id, range_start, range_end, requested_by, superseded_count,
		       inserted_count, employee_days, skipped_count, preserved_count, created_at
		FROM overtime_calculation_runs
		WHERE ($1 = '' OR period_id::text = $1)
		ORDER BY created_at DESC
		LIMIT $2`
	if limit <= 0 {
		limit = 50
	}

	var runs []*CalculationRun
	if err := r.db.Q(ctx).SelectContext(ctx, &runs, query, periodID, limit); err != nil {
		return nil, err
	}
	return runs, nil
}
