package consumers

import (
	"context"
	"time"

	"github.com/medflow/payroll-backend/internal/overtime/service"
	"github.com/medflow/payroll-backend/pkg/actor"
	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/medflow/payroll-backend/pkg/httputil"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/messaging"
)

// QueueName is the payroll service's queue for attendance events
const QueueName = "payroll-service.attendance-events"

// Calculator is the part of the calculation service the consumer drives
type Calculator interface {
	Calculate(ctx context.Context, from, to time.Time) (*service.CalculationResult, error)
}

// AttendanceEventConsumer recalculates overtime when attendance is validated
type AttendanceEventConsumer struct {
	consumer   *messaging.Consumer
	calculator Calculator
	logger     *logger.Logger
}

// NewAttendanceEventConsumer creates a new attendance event consumer
func NewAttendanceEventConsumer(rmq *messaging.RabbitMQ, calc Calculator, log *logger.Logger) (*AttendanceEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, QueueName, log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeAttendanceEvents, messaging.EventAttendanceValidated); err != nil {
		return nil, err
	}

	c := &AttendanceEventConsumer{
		consumer:   consumer,
		calculator: calc,
		logger:     log,
	}

	consumer.RegisterHandler(messaging.EventAttendanceValidated, c.handleAttendanceValidated)

	return c, nil
}

// Start starts consuming messages
func (c *AttendanceEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// handleAttendanceValidated runs a calculation as the system actor.
// Payloads that can never succeed are acknowledged and dropped; store
// failures are returned so the message is retried.
func (c *AttendanceEventConsumer) handleAttendanceValidated(ctx context.Context, event *messaging.Event) error {
	var data messaging.AttendanceValidatedEvent
	if err := event.UnmarshalData(&data); err != nil {
		c.logger.Error().Err(err).Str("event_id", event.ID).Msg("invalid attendance validated payload")
		return nil
	}

	from, errFrom := time.Parse(httputil.DateLayout, data.From)
	to, errTo := time.Parse(httputil.DateLayout, data.To)
	if errFrom != nil || errTo != nil || from.After(to) {
		c.logger.Warn().
			Str("event_id", event.ID).
			Str("from", data.From).
			Str("to", data.To).
			Msg("attendance validated event carries an invalid range")
		return nil
	}

	c.logger.Info().
		Str("event_id", event.ID).
		Str("from", data.From).
		Str("to", data.To).
		Msg("received attendance validated event")

	ctx = actor.WithActor(ctx, actor.SystemActor())

	result, err := c.calculator.Calculate(ctx, from, to)
	if err != nil {
		var appErr *errors.AppError
		if errors.As(err, &appErr) && !httputil.IsInternal(err) {
			c.logger.Error().
				Err(err).
				Str("code", appErr.Code).
				Str("event_id", event.ID).
				Msg("overtime recalculation rejected")
			return nil
		}
		return err
	}

	c.logger.Info().
		Str("run_id", result.RunID).
		Int("inserted", result.InsertedCount).
		Msg("overtime recalculated after attendance validation")

	return nil
}
