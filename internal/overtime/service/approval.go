package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/medflow/payroll-backend/internal/overtime/domain"
	"github.com/medflow/payroll-backend/internal/overtime/events"
	"github.com/medflow/payroll-backend/internal/overtime/repository"
	"github.com/medflow/payroll-backend/pkg/actor"
	"github.com/medflow/payroll-backend/pkg/database"
	"github.com/medflow/payroll-backend/pkg/errors"
	"github.com/medflow/payroll-backend/pkg/logger"
)

// Decision is a reviewer's request to move an entry out of PENDING
type Decision struct {
	SegmentID string
	// StateID is a workflow state catalog id or a state name
	StateID         string
	RejectionReason string
}

// ApprovalService records approval decisions
type ApprovalService struct {
	db        *database.DB
	repos     *Repositories
	publisher *events.OvertimeEventPublisher
	logger    *logger.Logger
}

// NewApprovalService creates a new approval service
func NewApprovalService(
	db *database.DB,
	repos *Repositories,
	publisher *events.OvertimeEventPublisher,
	log *logger.Logger,
) *ApprovalService {
	return &ApprovalService{
		db:        db,
		repos:     repos,
		publisher: publisher,
		logger:    log,
	}
}

// Decide approves or rejects a pending entry.
// The entry and its active approval stay locked until commit, so of two
// concurrent decisions the second sees a decided entry and gets a conflict.
func (s *ApprovalService) Decide(ctx context.Context, d Decision) (*repository.Approval, error) {
	if _, err := uuid.Parse(d.SegmentID); err != nil {
		return nil, errors.BadRequest("invalid overtime entry id")
	}

	reason := strings.TrimSpace(d.RejectionReason)
	reviewerID := actor.IDFromContext(ctx)

	var (
		locked   *repository.LockedSegment
		approval *repository.Approval
		target   domain.State
	)
	err := s.db.WithinTx(ctx, func(ctx context.Context) error {
		states, err := s.repos.Catalogs.WorkflowStates(ctx)
		if err != nil {
			return err
		}

		var ok bool
		target, ok = states.Resolve(d.StateID)
		if !ok || !target.IsDecision() {
			return errors.Validation(map[string]string{"stateId": "must be the approved or rejected state"})
		}

		var reasonArg *string
		if target == domain.StateRejected {
			if reason == "" {
				return errors.Validation(map[string]string{"rejectionReason": "is required when rejecting"})
			}
			reasonArg = &reason
		}

		locked, err = s.repos.Segments.LockActive(ctx, d.SegmentID)
		if err != nil {
			return err
		}

		current, _ := states.State(locked.StateID)
		if !domain.CanTransition(current, target) {
			return errors.Conflict("the overtime entry has already been decided")
		}

		approval, err = s.repos.Segments.AppendApproval(ctx, locked, states.ID(target), reviewerID, reasonArg)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}

	s.publisher.PublishDecided(ctx, locked, approval, target)

	s.logger.Info().
		Str("segment_id", locked.ID).
		Str("state", string(target)).
		Int("version", approval.Version).
		Str("reviewer_id", reviewerID).
		Msg("overtime entry decided")

	return approval, nil
}
