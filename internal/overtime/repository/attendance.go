package repository

import (
	"context"
	"time"

	"github.com/medflow/payroll-backend/internal/overtime/domain"
	"github.com/medflow/payroll-backend/pkg/database"
)

// attendanceRow is one validated attendance day with its schedule window,
// holiday flag and pay basis already joined in
type attendanceRow struct {
	AttendanceID  string    `db:"attendance_id"`
	EmployeeID    string    `db:"employee_id"`
	WorkDate      time.Time `db:"work_date"`
	ClockIn       string    `db:"clock_in"`
	ClockOut      string    `db:"clock_out"`
	ScheduleEntry string    `db:"schedule_entry"`
	ScheduleExit  string    `db:"schedule_exit"`
	Holiday       bool      `db:"holiday"`
	HolidayName   string    `db:"holiday_name"`
	Salary        float64   `db:"salary"`
	PayCadence    string    `db:"pay_cadence"`
}

// AttendanceRepository reads attendance owned by the attendance subsystem
type AttendanceRepository struct {
	db *database.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *database.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// The effective schedule is the newest assignment already in force on the
// work date. Days without a window for their ISO weekday drop out of the join.
const selectFactsForRange = `
	SELECT a.id AS attendance_id, a.employee_id, a.work_date,
	       to_char(a.clock_in, 'HH24:MI:SS') AS clock_in,
	       to_char(a.clock_out, 'HH24:MI:SS') AS clock_out,
	       to_char(d.entry_time, 'HH24:MI:SS') AS schedule_entry,
	       to_char(d.exit_time, 'HH24:MI:SS') AS schedule_exit,
	       (h.holiday_date IS NOT NULL) AS holiday,
	       COALESCE(h.name, '') AS holiday_name,
	       COALESCE(e.salary, 0) AS salary, COALESCE(e.pay_cadence, '') AS pay_cadence
	FROM attendance a
	JOIN employees e ON e.id = a.employee_id
	JOIN LATERAL (
		SELECT es.catalog_id
		FROM employee_schedules es
		WHERE es.employee_id = a.employee_id
		  AND es.active
		  AND es.effective_from <= a.work_date
		ORDER BY es.assigned_at DESC, es.effective_from DESC
		LIMIT 1
	) sched ON TRUE
	JOIN schedule_catalogs c ON c.id = sched.catalog_id AND c.active
	JOIN schedule_catalog_days d ON d.catalog_id = sched.catalog_id
	     AND d.iso_weekday = EXTRACT(ISODOW FROM a.work_date)
	LEFT JOIN holidays h ON h.holiday_date = a.work_date AND h.active
	WHERE a.work_date BETWEEN $1 AND $2
	  AND a.validated
	  AND NOT a.absent
	  AND a.clock_in IS NOT NULL
	  AND a.clock_out IS NOT NULL
	ORDER BY a.employee_id, a.work_date`

// ListForRange returns every computable attendance fact in [start, end]
func (r *AttendanceRepository) ListForRange(ctx context.Context, start, end time.Time) ([]domain.Fact, error) {
	var rows []attendanceRow
	if err := r.db.Q(ctx).SelectContext(ctx, &rows, selectFactsForRange, start, end); err != nil {
		return nil, err
	}

	facts := make([]domain.Fact, 0, len(rows))
	for _, row := range rows {
		facts = append(facts, domain.Fact{
			AttendanceID:  row.AttendanceID,
			EmployeeID:    row.EmployeeID,
			Date:          row.WorkDate,
			ClockIn:       row.ClockIn,
			ClockOut:      row.ClockOut,
			ScheduleEntry: row.ScheduleEntry,
			ScheduleExit:  row.ScheduleExit,
			Holiday:       row.Holiday,
			HolidayName:   row.HolidayName,
			Salary:        row.Salary,
			Cadence:       row.PayCadence,
		})
	}
	return facts, nil
}
