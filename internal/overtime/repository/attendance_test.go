package repository_test

import (
	"context"
	"testing"

	"github.com/medflow/payroll-backend/internal/overtime/domain"
	"github.com/medflow/payroll-backend/internal/overtime/repository"
	"github.com/medflow/payroll-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var attendanceColumns = []string{
	"attendance_id", "employee_id", "work_date", "clock_in", "clock_out",
	"schedule_entry", "schedule_exit", "holiday", "holiday_name", "salary", "pay_cadence",
}

func TestAttendanceRepository_ListForRange_MissingPayBasis(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	start, end := testutil.Date(t, "2026-06-01"), testutil.Date(t, "2026-06-07")
	mockDB.ExpectQuery("COALESCE(e.salary, 0) AS salary, COALESCE(e.pay_cadence, '') AS pay_cadence").
		WithArgs(start, end).
		WillReturnRows(testutil.MockRows(attendanceColumns...).
			AddRow("att-1", "emp-1", start, "08:00:00", "19:00:00", "08:00:00", "17:00:00", false, "", 0.0, "").
			AddRow("att-2", "emp-2", start, "08:00:00", "19:00:00", "08:00:00", "17:00:00", false, "", 2400.0, "monthly"))

	repo := repository.NewAttendanceRepository(mockDB.Database())
	facts, err := repo.ListForRange(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, facts, 2)
	mockDB.ExpectationsWereMet(t)

	// an employee without pay data is skipped on its own, the rest still price
	_, reason := domain.Compute(facts[0])
	assert.Equal(t, domain.SkipNoRate, reason)

	priced, reason := domain.Compute(facts[1])
	assert.Equal(t, domain.SkipNone, reason)
	assert.NotEmpty(t, priced)
}
