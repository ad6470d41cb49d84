package consumers

import (
	"context"
	"testing"
	"time"

	"github.com/medflow/payroll-backend/internal/overtime/service"
	"github.com/medflow/payroll-backend/pkg/actor"
	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCalculator struct {
	calls    int
	from, to time.Time
	caller   *actor.Actor
	err      error
}

func (r *recordingCalculator) Calculate(ctx context.Context, from, to time.Time) (*service.CalculationResult, error) {
	r.calls++
	r.from, r.to = from, to
	r.caller = actor.FromContext(ctx)
	if r.err != nil {
		return nil, r.err
	}
	return &service.CalculationResult{RunID: "run-1", InsertedCount: 1}, nil
}

func event(t *testing.T, data interface{}) *messaging.Event {
	t.Helper()
	e, err := messaging.NewEvent(messaging.EventAttendanceValidated, "attendance-service", "corr-1", data)
	require.NoError(t, err)
	return e
}

func TestHandleAttendanceValidated(t *testing.T) {
	calc := &recordingCalculator{}
	c := &AttendanceEventConsumer{calculator: calc, logger: logger.Nop()}

	err := c.handleAttendanceValidated(context.Background(),
		event(t, messaging.AttendanceValidatedEvent{From: "2026-06-01", To: "2026-06-15"}))

	require.NoError(t, err)
	require.Equal(t, 1, calc.calls)
	assert.Equal(t, "2026-06-01", calc.from.Format("2006-01-02"))
	assert.Equal(t, "2026-06-15", calc.to.Format("2006-01-02"))
	require.NotNil(t, calc.caller)
	assert.True(t, calc.caller.IsSystem())
}

func TestHandleAttendanceValidated_DropsUnusablePayloads(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
	}{
		{"not an object", "garbage"},
		{"bad date", messaging.AttendanceValidatedEvent{From: "06/01/2026", To: "2026-06-15"}},
		{"inverted", messaging.AttendanceValidatedEvent{From: "2026-06-15", To: "2026-06-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := &recordingCalculator{}
			c := &AttendanceEventConsumer{calculator: calc, logger: logger.Nop()}

			err := c.handleAttendanceValidated(context.Background(), event(t, tt.data))

			assert.NoError(t, err)
			assert.Zero(t, calc.calls)
		})
	}
}

func TestHandleAttendanceValidated_ErrorClassification(t *testing.T) {
	payload := messaging.AttendanceValidatedEvent{From: "2026-06-01", To: "2026-06-01"}

	calc := &recordingCalculator{err: errors.Configuration("workflow state catalog for overtime is missing: pending")}
	c := &AttendanceEventConsumer{calculator: calc, logger: logger.Nop()}
	assert.NoError(t, c.handleAttendanceValidated(context.Background(), event(t, payload)))

	calc.err = assert.AnError
	assert.ErrorIs(t, c.handleAttendanceValidated(context.Background(), event(t, payload)), assert.AnError)
}
