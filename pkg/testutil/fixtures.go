package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medflow/payroll-backend/pkg/database"
)

// Window is one scheduled working day; times are HH:MM or HH:MM:SS
type Window struct {
	ISOWeekday int
	Entry      string
	Exit       string
}

// FixtureFactory inserts collaborator rows (employees, schedules, attendance,
// holidays) the overtime engine reads but never writes.
type FixtureFactory struct {
	db       *database.DB
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory(db *database.DB) *FixtureFactory {
	return &FixtureFactory{db: db}
}

func (f *FixtureFactory) next() int {
	f.sequence++
	return f.sequence
}

// Employee inserts an active employee and returns its id
func (f *FixtureFactory) Employee(t *testing.T, salary float64, cadence string) string {
	t.Helper()
	id := uuid.New().String()
	n := f.next()
	f.exec(t, `INSERT INTO employees (id, first_name, last_name, salary, pay_cadence) VALUES ($1, $2, $3, $4, $5)`,
		id, fmt.Sprintf("Test%d", n), "Employee", salary, cadence)
	return id
}

// Schedule creates a catalog with the given windows and assigns it to the
// employee from effectiveFrom on. Returns the catalog id.
func (f *FixtureFactory) Schedule(t *testing.T, employeeID string, effectiveFrom time.Time, assignedAt time.Time, windows ...Window) string {
	t.Helper()
	catalogID := uuid.New().String()
	f.exec(t, `INSERT INTO schedule_catalogs (id, name) VALUES ($1, $2)`, catalogID, fmt.Sprintf("Schedule %d", f.next()))
	for _, w := range windows {
		f.exec(t, `INSERT INTO schedule_catalog_days (catalog_id, iso_weekday, entry_time, exit_time) VALUES ($1, $2, $3, $4)`,
			catalogID, w.ISOWeekday, w.Entry, w.Exit)
	}
	f.exec(t, `INSERT INTO employee_schedules (employee_id, catalog_id, effective_from, assigned_at) VALUES ($1, $2, $3, $4)`,
		employeeID, catalogID, effectiveFrom, assignedAt)
	return catalogID
}

// EveryDay returns the same window for all seven ISO weekdays
func EveryDay(entry, exit string) []Window {
	ws := make([]Window, 0, 7)
	for d := 1; d <= 7; d++ {
		ws = append(ws, Window{ISOWeekday: d, Entry: entry, Exit: exit})
	}
	return ws
}

// Attendance records a validated, non-absent punch pair
func (f *FixtureFactory) Attendance(t *testing.T, employeeID string, date time.Time, clockIn, clockOut string) string {
	t.Helper()
	return f.AttendanceWith(t, employeeID, date, clockIn, clockOut, true, false)
}

// AttendanceWith records an attendance row with explicit flags
func (f *FixtureFactory) AttendanceWith(t *testing.T, employeeID string, date time.Time, clockIn, clockOut string, validated, absent bool) string {
	t.Helper()
	id := uuid.New().String()
	f.exec(t, `INSERT INTO attendance (id, employee_id, work_date, clock_in, clock_out, validated, absent) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, employeeID, date, clockIn, clockOut, validated, absent)
	return id
}

// Holiday flags a date as a public holiday
func (f *FixtureFactory) Holiday(t *testing.T, date time.Time, name string) {
	t.Helper()
	f.exec(t, `INSERT INTO holidays (holiday_date, name) VALUES ($1, $2)`, date, name)
}

func (f *FixtureFactory) exec(t *testing.T, query string, args ...interface{}) {
	t.Helper()
	if _, err := f.db.ExecContext(context.Background(), query, args...); err != nil {
		t.Fatalf("fixture insert failed: %v\n%s", err, query)
	}
}
