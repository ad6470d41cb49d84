package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/medflow/payroll-backend/pkg/database"
	"github.com/medflow/payroll-backend/pkg/errors"
)

// AutoPeriodLabel names periods created on demand by a calculation
const AutoPeriodLabel = "Auto"

// PayPeriod is an administrative date range grouping overtime entries
type PayPeriod struct {
	ID        string    `db:"id" json:"id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Label     string    `db:"label" json:"label"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PeriodRepository handles pay period persistence
type PeriodRepository struct {
	db *database.DB
}

// NewPeriodRepository creates a new period repository
func NewPeriodRepository(db *database.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

const selectPeriodByRange = `SELECT id FROM pay_periods WHERE start_date = $1 AND end_date = $2 AND active LIMIT 1`

// Resolve returns the active period whose range is exactly [start, end],
// creating it when there is none. A concurrent creator that wins the race
// surfaces as a unique violation; the winner's row is returned instead.
func (r *PeriodRepository) Resolve(ctx context.Context, start, end time.Time) (string, error) {
	if start.After(end) {
		return "", errors.InvalidRange("start date must not be after end date")
	}

	id, err := r.findByRange(ctx, start, end)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	newID := uuid.New().String()
	err = r.db.Savepoint(ctx, "resolve_period", func(ctx context.Context) error {
		_, err := r.db.Q(ctx).ExecContext(ctx,
			`INSERT INTO pay_periods (id, start_date, end_date, label) VALUES ($1, $2, $3, $4)`,
			newID, start, end, AutoPeriodLabel,
		)
		return err
	})
	if err == nil {
		return newID, nil
	}
	if !database.IsUniqueViolation(err, "pay_periods_range") {
		return "", err
	}

	return r.findByRange(ctx, start, end)
}

func (r *PeriodRepository) findByRange(ctx context.Context, start, end time.Time) (string, error) {
	var id string
	err := r.db.Q(ctx).GetContext(ctx, &id, selectPeriodByRange, start, end)
	return id, err
}

// GetByID loads an active period
func (r *PeriodRepository) GetByID(ctx context.Context, id string) (*PayPeriod, error) {
	var p PayPeriod
	err := r.db.Q(ctx).GetContext(ctx, &p, `
		SELECT id, start_date, end_date, label, active, created_at
		FROM pay_periods
		WHERE id = $1 AND active
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("pay period")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
