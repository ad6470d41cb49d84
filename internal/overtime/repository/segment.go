package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/medflow/payroll-backend/pkg/database"
	"github.com/medflow/payroll-backend/pkg/errors"
)

// Segment is one persisted overtime interval
type Segment struct {
	ID          string    `db:"id" json:"id"`
	EmployeeID  string    `db:"employee_id" json:"employeeId"`
	TypeID      string    `db:"type_id" json:"typeId"`
	PeriodID    string    `db:"period_id" json:"periodId"`
	RunID       *string   `db:"run_id" json:"runId,omitempty"`
	Description string    `db:"description" json:"description"`
	Amount      float64   `db:"amount" json:"amount"`
	Hours       float64   `db:"hours" json:"hours"`
	WorkDate    time.Time `db:"work_date" json:"date"`
	StartTime   string    `db:"start_time" json:"startTime"`
	EndTime     string    `db:"end_time" json:"endTime"`
	Holiday     bool      `db:"holiday" json:"holiday"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`

	// AttendanceDate is the day the punches belong to. WorkDate moves to the
	// next day for segments starting after midnight.
	AttendanceDate time.Time `db:"attendance_date" json:"attendanceDate"`
}

// Approval is one version in a segment's decision chain
type Approval struct {
	ID              string     `db:"id" json:"id"`
	SegmentID       string     `db:"segment_id" json:"segmentId"`
	Version         int        `db:"version" json:"version"`
	StateID         string     `db:"state_id" json:"stateId"`
	ReviewerID      *string    `db:"reviewer_id" json:"reviewerId,omitempty"`
	DecidedAt       *time.Time `db:"decided_at" json:"decidedAt,omitempty"`
	RejectionReason *string    `db:"rejection_reason" json:"rejectionReason,omitempty"`
	Active          bool       `db:"active" json:"active"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	DeactivatedAt   *time.Time `db:"deactivated_at" json:"deactivatedAt,omitempty"`

	// Joined fields
	StateName *string `db:"state_name" json:"state,omitempty"`
}

// LockedSegment is an active segment and its active approval, row-locked
type LockedSegment struct {
	Segment
	ApprovalID      string `db:"approval_id"`
	ApprovalVersion int    `db:"approval_version"`
	StateID         string `db:"state_id"`
}

// SegmentView is a segment as listed to reviewers
type SegmentView struct {
	Segment

	// Joined fields
	EmployeeName    *string    `db:"employee_name" json:"employeeName,omitempty"`
	TypeName        *string    `db:"type_name" json:"type,omitempty"`
	StateID         *string    `db:"state_id" json:"stateId,omitempty"`
	StateName       *string    `db:"state_name" json:"state,omitempty"`
	Version         *int       `db:"version" json:"version,omitempty"`
	ReviewerID      *string    `db:"reviewer_id" json:"reviewerId,omitempty"`
	DecidedAt       *time.Time `db:"decided_at" json:"decidedAt,omitempty"`
	RejectionReason *string    `db:"rejection_reason" json:"rejectionReason,omitempty"`
}

// SegmentFilter narrows List. Zero values are ignored.
type SegmentFilter struct {
	PeriodID   string
	EmployeeID string
	State      string
	From       *time.Time
	To         *time.Time
	Holiday    *bool
	Limit      int
	Offset     int
}

// SegmentRepository handles overtime segments and their approval chains
type SegmentRepository struct {
	db *database.DB
}

// NewSegmentRepository creates a new segment repository
func NewSegmentRepository(db *database.DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

// Pending approvals are retired first and their segments follow. A
// concurrent decision modifies the approval row, so once its lock is
// released Postgres re-checks the row here and skips the decided entry.
const deactivatePendingInRange = `
	WITH retired AS (
		UPDATE overtime_approvals
		SET active = FALSE, deactivated_at = NOW()
		WHERE active
		  AND state_id = $4
		  AND segment_id IN (
			SELECT id FROM overtime_segments
			WHERE active AND attendance_date BETWEEN $1 AND $2
		  )
		RETURNING segment_id
	)
	UPDATE overtime_segments
	SET active = FALSE, superseded_at = NOW(), superseded_by_run = $3
	WHERE active AND id IN (SELECT segment_id FROM retired)`

// DeactivatePendingInRange supersedes pending segments computed from attendance in [start, end]
// and returns how many were retired
func (r *SegmentRepository) DeactivatePendingInRange(ctx context.Context, start, end time.Time, runID, pendingStateID string) (int, error) {
	result, err := r.db.Q(ctx).ExecContext(ctx, deactivatePendingInRange, start, end, runID, pendingStateID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// WindowKey identifies a computed window independently of the run that produced it.
// Clock values are HH:MM.
func WindowKey(employeeID, typeID string, workDate time.Time, start, end string) string {
	return employeeID + "|" + typeID + "|" + workDate.Format("2006-01-02") + "|" + start + "|" + end
}

type decidedWindow struct {
	EmployeeID string    `db:"employee_id"`
	TypeID     string    `db:"type_id"`
	WorkDate   time.Time `db:"work_date"`
	StartTime  string    `db:"start_time"`
	EndTime    string    `db:"end_time"`
}

const selectDecidedInRange = `
	SELECT s.employee_id, s.type_id, s.work_date,
	       to_char(s.start_time, 'HH24:MI') AS start_time,
	       to_char(s.end_time, 'HH24:MI') AS end_time
	FROM overtime_segments s
	JOIN overtime_approvals a ON a.segment_id = s.id AND a.active
	WHERE s.active
	  AND a.state_id <> $3
	  AND s.attendance_date BETWEEN $1 AND $2`

// DecidedWindows returns the WindowKey of every active, already decided
// segment computed from attendance in [start, end]
func (r *SegmentRepository) DecidedWindows(ctx context.Context, start, end time.Time, pendingStateID string) (map[string]struct{}, error) {
	var rows []decidedWindow
	if err := r.db.Q(ctx).SelectContext(ctx, &rows, selectDecidedInRange, start, end, pendingStateID); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(rows))
	for _, w := range rows {
		keys[WindowKey(w.EmployeeID, w.TypeID, w.WorkDate, w.StartTime, w.EndTime)] = struct{}{}
	}
	return keys, nil
}

// Insert persists a new active segment
func (r *SegmentRepository) Insert(ctx context.Context, s *Segment) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.Active = true

	return r.db.Q(ctx).QueryRowxContext(ctx, `
		INSERT INTO overtime_segments (
			id, employee_id, type_id, period_id, run_id, description,
			amount, hours, work_date, attendance_date, start_time, end_time, holiday
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`,
		s.ID, s.EmployeeID, s.TypeID, s.PeriodID, s.RunID, s.Description,
		s.Amount, s.Hours, s.WorkDate, s.AttendanceDate, s.StartTime, s.EndTime, s.Holiday,
	).Scan(&s.CreatedAt)
}

// InsertApproval opens the chain of a freshly inserted segment at version 1
func (r *SegmentRepository) InsertApproval(ctx context.Context, segmentID, stateID string) (*Approval, error) {
	a := &Approval{
		ID:        uuid.New().String(),
		SegmentID: segmentID,
		Version:   1,
		StateID:   stateID,
		Active:    true,
	}
	err := r.db.Q(ctx).QueryRowxContext(ctx, `
		INSERT INTO overtime_approvals (id, segment_id, version, state_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, a.ID, a.SegmentID, a.Version, a.StateID).Scan(&a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

const segmentColumns = `
	s.id, s.employee_id, s.type_id, s.period_id, s.run_id, s.description,
	s.amount, s.hours, s.work_date, s.attendance_date,
	to_char(s.start_time, 'HH24:MI:SS') AS start_time,
	to_char(s.end_time, 'HH24:MI:SS') AS end_time,
	s.holiday, s.active, s.created_at`

// LockActive loads an active segment with its active approval and holds a
// row lock on both until the unit of work ends
func (r *SegmentRepository) LockActive(ctx context.Context, id string) (*LockedSegment, error) {
	var locked LockedSegment
	err := r.db.Q(ctx).GetContext(ctx, &locked, `
		SELECT `+segmentColumns+`,
		       a.id AS approval_id, a.version AS approval_version, a.state_id
		FROM overtime_segments s
		JOIN overtime_approvals a ON a.segment_id = s.id AND a.active
		WHERE s.id = $1 AND s.active
		FOR UPDATE OF s, a
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("overtime entry")
	}
	if err != nil {
		return nil, err
	}
	return &locked, nil
}

// AppendApproval retires the locked segment's active approval and records the
// decision as the next version. History rows are never updated otherwise.
func (r *SegmentRepository) AppendApproval(ctx context.Context, locked *LockedSegment, stateID, reviewerID string, reason *string) (*Approval, error) {
	result, err := r.db.Q(ctx).ExecContext(ctx, `
		UPDATE overtime_approvals
		SET active = FALSE, deactivated_at = NOW()
		WHERE id = $1 AND active
	`, locked.ApprovalID)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, errors.Conflict("the overtime entry was decided by another request")
	}

	a := &Approval{
		ID:              uuid.New().String(),
		SegmentID:       locked.ID,
		Version:         locked.ApprovalVersion + 1,
		StateID:         stateID,
		ReviewerID:      &reviewerID,
		RejectionReason: reason,
		Active:          true,
	}
	err = r.db.Q(ctx).QueryRowxContext(ctx, `
		INSERT INTO overtime_approvals (id, segment_id, version, state_id, reviewer_id, decided_at, rejection_reason)
		VALUES ($1, $2, $3, $4, $5, NOW(), $6)
		RETURNING decided_at, created_at
	`, a.ID, a.SegmentID, a.Version, a.StateID, a.ReviewerID, a.RejectionReason).Scan(&a.DecidedAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns active segments matching filter and the total number of matches
func (r *SegmentRepository) List(ctx context.Context, filter SegmentFilter) ([]*SegmentView, int, error) {
	whereClause := "WHERE s.active"
	args := []interface{}{}
	argNum := 1

	addArg := func(cond string, v interface{}) {
		whereClause += " AND " + cond + "$" + strconv.Itoa(argNum)
		args = append(args, v)
		argNum++
	}

	if filter.PeriodID != "" {
		addArg("s.period_id = ", filter.PeriodID)
	}
	if filter.EmployeeID != "" {
		addArg("s.employee_id = ", filter.EmployeeID)
	}
	if filter.State != "" {
		addArg("LOWER(ws.name) = LOWER(", filter.State)
		whereClause += ")"
	}
	if filter.From != nil {
		addArg("s.work_date >= ", *filter.From)
	}
	if filter.To != nil {
		addArg("s.work_date <= ", *filter.To)
	}
	if filter.Holiday != nil {
		addArg("s.holiday = ", *filter.Holiday)
	}

	from := `
		FROM overtime_segments s
		LEFT JOIN employees e ON e.id = s.employee_id
		LEFT JOIN overtime_types t ON t.id = s.type_id
		LEFT JOIN overtime_approvals a ON a.segment_id = s.id AND a.active
		LEFT JOIN workflow_states ws ON ws.id = a.state_id
	`

	var total int
	if err := r.db.Q(ctx).GetContext(ctx, &total, "SELECT COUNT(*) "+from+whereClause, args...); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + segmentColumns + `,
		       CONCAT(e.first_name, ' ', e.last_name) AS employee_name,
		       t.name AS type_name,
		       a.state_id, ws.name AS state_name, a.version,
		       a.reviewer_id, a.decided_at, a.rejection_reason
	` + from + whereClause + " ORDER BY s.work_date, employee_name, s.start_time"

	if filter.Limit > 0 {
		query += " LIMIT $" + strconv.Itoa(argNum)
		args = append(args, filter.Limit)
		argNum++
		if filter.Offset > 0 {
			query += " OFFSET $" + strconv.Itoa(argNum)
			args = append(args, filter.Offset)
		}
	}

	var views []*SegmentView
	if err := r.db.Q(ctx).SelectContext(ctx, &views, query, args...); err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// History returns every approval version of a segment, oldest first
func (r *SegmentRepository) History(ctx context.Context, segmentID string) ([]*Approval, error) {
	var exists bool
	if err := r.db.Q(ctx).GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM overtime_segments WHERE id = $1)`, segmentID); err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NotFound("overtime entry")
	}

	var chain []*Approval
	err := r.db.Q(ctx).SelectContext(ctx, &chain, `
		SELECT a.id, a.segment_id, a.version, a.state_id, a.reviewer_id, a.decided_at,
		       a.rejection_reason, a.active, a.created_at, a.deactivated_at,
		       ws.name AS state_name
		FROM overtime_approvals a
		LEFT JOIN workflow_states ws ON ws.id = a.state_id
		WHERE a.segment_id = $1
		ORDER BY a.version
	`, segmentID)
	if err != nil {
		return nil, err
	}
	return chain, nil
}
