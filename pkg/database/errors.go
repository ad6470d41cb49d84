package database

import (
	stderrors "errors"
	"strings"

	"github.com/lib/pq"
	"github.com/medflow/payroll-backend/pkg/errors"
)

// PostgreSQL error codes the service reacts to
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeLockNotAvailable    = "55P03"
	codeSerialization       = "40001"
)

// IsUniqueViolation reports whether err is a unique constraint violation,
// optionally restricted to constraints whose name contains constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) || pqErr.Code != codeUniqueViolation {
		return false
	}
	return constraint == "" || strings.Contains(pqErr.Constraint, constraint)
}

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error or has no user-facing mapping.
func MapPQError(err error) *errors.AppError {
	var pqErr *pq.Error
	if !stderrors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	case codeCheckViolation:
		return mapCheckConstraint(pqErr)

	case codeUniqueViolation:
		return errors.Conflict(formatConstraintMessage(pqErr))

	case codeForeignKeyViolation:
		return errors.BadRequest("referenced record does not exist")

	case codeNotNullViolation:
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	case codeLockNotAvailable, codeSerialization:
		return errors.Conflict("the record is being modified by another request, retry later")

	default:
		return nil
	}
}

func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "hours_positive"):
		return errors.Validation(map[string]string{
			"hours": "must be greater than zero",
		})

	case strings.Contains(constraint, "range_order"):
		return errors.InvalidRange("start date must not be after end date")

	case strings.Contains(constraint, "rejection_reason"):
		return errors.Validation(map[string]string{
			"rejectionReason": "is required when rejecting",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "pay_periods_range"):
		return "a pay period for this exact range already exists"
	case strings.Contains(constraint, "overtime_approvals_active"):
		return "the overtime entry already has an active decision"
	default:
		return "a record with these values already exists"
	}
}
