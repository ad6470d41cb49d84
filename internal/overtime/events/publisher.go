package events

import (
	"context"

	"github.com/medflow/payroll-backend/internal/overtime/domain"
	"github.com/medflow/payroll-backend/internal/overtime/repository"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/messaging"
)

// DateLayout is the wire format of calendar dates in event payloads
const DateLayout = "2006-01-02"

// OvertimeEventPublisher publishes overtime-related events.
// Publishing happens after commit; failures are logged and never surface to the caller.
type OvertimeEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewOvertimeEventPublisher creates a new overtime event publisher
func NewOvertimeEventPublisher(publisher messaging.EventPublisher, log *logger.Logger) *OvertimeEventPublisher {
	return &OvertimeEventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

// NewRabbitPublisher declares the payroll exchange and returns a publisher bound to it
func NewRabbitPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*OvertimeEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangePayrollEvents, "payroll-service", log)
	if err != nil {
		return nil, err
	}
	return NewOvertimeEventPublisher(publisher, log), nil
}

// PublishCalculated publishes a calculation run summary
func (p *OvertimeEventPublisher) PublishCalculated(ctx context.Context, run *repository.CalculationRun) {
	data := messaging.OvertimeCalculatedEvent{
		RunID:                    run.ID,
		PeriodID:                 run.PeriodID,
		From:                     run.RangeStart.Format(DateLayout),
		To:                       run.RangeEnd.Format(DateLayout),
		InsertedCount:            run.InsertedCount,
		SupersededCount:          run.SupersededCount,
		EmployeeDaysWithOvertime: run.EmployeeDays,
		RequestedBy:              run.RequestedBy,
	}

	if err := p.publisher.Publish(ctx, messaging.EventOvertimeCalculated, data); err != nil {
		p.logger.Error().Err(err).Str("run_id", run.ID).Msg("failed to publish overtime calculated event")
	}
}

// PublishDecided publishes an approval or rejection
func (p *OvertimeEventPublisher) PublishDecided(ctx context.Context, seg *repository.LockedSegment, approval *repository.Approval, state domain.State) {
	eventType := messaging.EventOvertimeApproved
	if state == domain.StateRejected {
		eventType = messaging.EventOvertimeRejected
	}

	data := messaging.OvertimeDecidedEvent{
		SegmentID:  seg.ID,
		EmployeeID: seg.EmployeeID,
		PeriodID:   seg.PeriodID,
		State:      string(state),
		Version:    approval.Version,
		Amount:     seg.Amount,
		Hours:      seg.Hours,
	}
	if approval.ReviewerID != nil {
		data.ReviewerID = *approval.ReviewerID
	}
	if approval.RejectionReason != nil {
		data.RejectionReason = *approval.RejectionReason
	}
	if approval.DecidedAt != nil {
		data.DecidedAt = *approval.DecidedAt
	}

	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("segment_id", seg.ID).Msg("failed to publish overtime decision event")
	}
}
