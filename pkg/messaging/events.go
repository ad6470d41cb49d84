package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Published by the payroll service
	EventOvertimeCalculated = "payroll.overtime.calculated"
	EventOvertimeApproved   = "payroll.overtime.approved"
	EventOvertimeRejected   = "payroll.overtime.rejected"

	// Consumed from the attendance service
	EventAttendanceValidated = "attendance.validated"
)

// Exchange names
const (
	ExchangePayrollEvents    = "payroll.events"
	ExchangeAttendanceEvents = "attendance.events"
	ExchangeDeadLetter       = "dlx.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Payroll Events

// OvertimeCalculatedEvent is published after a calculation run commits
type OvertimeCalculatedEvent struct {
	RunID                    string `json:"run_id"`
	PeriodID                 string `json:"period_id"`
	From                     string `json:"from"`
	To                       string `json:"to"`
	InsertedCount            int    `json:"inserted_count"`
	SupersededCount          int    `json:"superseded_count"`
	EmployeeDaysWithOvertime int    `json:"employee_days_with_overtime"`
	RequestedBy              string `json:"requested_by"`
}

// OvertimeDecidedEvent is published when an entry is approved or rejected
type OvertimeDecidedEvent struct {
	SegmentID       string    `json:"segment_id"`
	EmployeeID      string    `json:"employee_id"`
	PeriodID        string    `json:"period_id"`
	State           string    `json:"state"`
	Version         int       `json:"version"`
	ReviewerID      string    `json:"reviewer_id"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	Amount          float64   `json:"amount"`
	Hours           float64   `json:"hours"`
	DecidedAt       time.Time `json:"decided_at"`
}

// Attendance Events

// AttendanceValidatedEvent announces that attendance for a date range was validated
type AttendanceValidatedEvent struct {
	From string `json:"from"`
	To   string `json:"to"`
}
