package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/medflow/payroll-backend/internal/overtime/repository"
	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/medflow/payroll-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentRepository_DeactivatePendingInRange(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	start, end := testutil.Date(t, "2026-06-01"), testutil.Date(t, "2026-06-15")
	mockDB.ExpectExec("WITH retired AS").
		WithArgs(start, end, "run-1", "st-p").
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := repository.NewSegmentRepository(mockDB.Database())
	n, err := repo.DeactivatePendingInRange(context.Background(), start, end, "run-1", "st-p")

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	mockDB.ExpectationsWereMet(t)
}

func TestSegmentRepository_LockActive_NotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("FOR UPDATE OF s, a").WithArgs("seg-1").WillReturnError(sql.ErrNoRows)

	repo := repository.NewSegmentRepository(mockDB.Database())
	_, err := repo.LockActive(context.Background(), "seg-1")

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.Equal(t, "overtime entry not found", appErr.Message)
}

func TestSegmentRepository_AppendApproval(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	decided := time.Date(2026, 6, 20, 10, 0, 0, 0, time.UTC)
	locked := &repository.LockedSegment{
		Segment:         repository.Segment{ID: "seg-1"},
		ApprovalID:      "appr-1",
		ApprovalVersion: 1,
		StateID:         "st-p",
	}
	reason := "duplicate punch"

	mockDB.ExpectExec("UPDATE overtime_approvals").
		WithArgs("appr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectQuery("INSERT INTO overtime_approvals").
		WithArgs(testutil.AnyUUID{}, "seg-1", 2, "st-r", "reviewer-1", reason).
		WillReturnRows(testutil.MockRows("decided_at", "created_at").AddRow(decided, decided))

	repo := repository.NewSegmentRepository(mockDB.Database())
	a, err := repo.AppendApproval(context.Background(), locked, "st-r", "reviewer-1", &reason)

	require.NoError(t, err)
	assert.Equal(t, 2, a.Version)
	assert.Equal(t, "st-r", a.StateID)
	require.NotNil(t, a.DecidedAt)
	assert.Equal(t, decided, *a.DecidedAt)
	mockDB.ExpectationsWereMet(t)
}

func TestSegmentRepository_AppendApproval_AlreadyRetired(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectExec("UPDATE overtime_approvals").
		WithArgs("appr-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := repository.NewSegmentRepository(mockDB.Database())
	_, err := repo.AppendApproval(context.Background(),
		&repository.LockedSegment{Segment: repository.Segment{ID: "seg-1"}, ApprovalID: "appr-1", ApprovalVersion: 1},
		"st-a", "reviewer-1", nil)

	assert.True(t, errors.Is(err, errors.ErrConflict))
	mockDB.ExpectationsWereMet(t)
}

func TestSegmentRepository_List_BuildsFilters(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	from := testutil.Date(t, "2026-06-01")
	mockDB.ExpectQuery("SELECT COUNT(*)").
		WithArgs("period-1", "pending", from, true).
		WillReturnRows(testutil.MockRows("count").AddRow(0))
	mockDB.ExpectQuery("LIMIT $5 OFFSET $6").
		WithArgs("period-1", "pending", from, true, 20, 40).
		WillReturnRows(testutil.MockRows("id"))

	repo := repository.NewSegmentRepository(mockDB.Database())
	views, total, err := repo.List(context.Background(), repository.SegmentFilter{
		PeriodID: "period-1",
		State:    "pending",
		From:     &from,
		Holiday:  testutil.PtrBool(true),
		Limit:    20,
		Offset:   40,
	})

	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Equal(t, 0, total)
	mockDB.ExpectationsWereMet(t)
}

func TestSegmentRepository_History_UnknownSegment(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("SELECT EXISTS").
		WithArgs("seg-x").
		WillReturnRows(testutil.MockRows("exists").AddRow(false))

	repo := repository.NewSegmentRepository(mockDB.Database())
	_, err := repo.History(context.Background(), "seg-x")

	assert.True(t, errors.Is(err, errors.ErrNotFound))
	mockDB.ExpectationsWereMet(t)
}
