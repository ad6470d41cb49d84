package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/medflow/payroll-backend/internal/overtime/events"
	"github.com/medflow/payroll-backend/internal/overtime/service"
	"github.com/medflow/payroll-backend/pkg/actor"
	"github.com/medflow/payroll-backend/pkg/auth"
	"github.com/medflow/payroll-backend/pkg/database"
	"github.com/medflow/payroll-backend/pkg/logger"
	"github.com/medflow/payroll-backend/pkg/testutil"
)

const (
	typeDiurnal   = "11111111-1111-1111-1111-111111111111"
	typeNocturnal = "22222222-2222-2222-2222-222222222222"
	statePending  = "33333333-3333-3333-3333-333333333333"
	stateApproved = "44444444-4444-4444-4444-444444444444"
	stateRejected = "55555555-5555-5555-5555-555555555555"
	segmentID     = "66666666-6666-6666-6666-666666666666"
	reviewerID    = "77777777-7777-7777-7777-777777777777"
)

type fixture struct {
	mock      *testutil.MockDB
	db        *database.DB
	repos     *service.Repositories
	published *testutil.MockPublisher
	publisher *events.OvertimeEventPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock := testutil.NewMockDB(t)
	t.Cleanup(func() { mock.Close() })

	db := mock.Database()
	published := testutil.NewMockPublisher()
	return &fixture{
		mock:      mock,
		db:        db,
		repos:     service.NewRepositories(db),
		published: published,
		publisher: events.NewOvertimeEventPublisher(published, logger.Nop()),
	}
}

func (f *fixture) expectCatalogs() {
	f.mock.ExpectQuery("FROM overtime_types").
		WillReturnRows(testutil.MockRows("id", "name").
			AddRow(typeDiurnal, "diurnal").
			AddRow(typeNocturnal, "nocturnal"))
	f.expectStates()
}

func (f *fixture) expectNoDecidedWindows() {
	f.mock.ExpectQuery("FROM overtime_segments s JOIN overtime_approvals a").
		WillReturnRows(testutil.MockRows("employee_id", "type_id", "work_date", "start_time", "end_time"))
}

func (f *fixture) expectStates() {
	f.mock.ExpectQuery("FROM workflow_states").
		WillReturnRows(testutil.MockRows("id", "name").
			AddRow(statePending, "pending").
			AddRow(stateApproved, "approved").
			AddRow(stateRejected, "rejected"))
}

func (f *fixture) expectLocked(stateID string) {
	now := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	f.mock.ExpectQuery("FOR UPDATE OF s, a").
		WithArgs(segmentID).
		WillReturnRows(testutil.MockRows(
			"id", "employee_id", "type_id", "period_id", "run_id", "description",
			"amount", "hours", "work_date", "attendance_date", "start_time", "end_time",
			"holiday", "active", "created_at", "approval_id", "approval_version", "state_id",
		).AddRow(
			segmentID, "emp-1", typeDiurnal, "period-1", nil, "Diurnal overtime 17:00-19:00",
			30.0, 2.0, day, day, "17:00:00", "19:00:00",
			false, true, now, "appr-1", 1, stateID,
		))
}

func (f *fixture) expectAppend(reason interface{}) {
	decided := time.Date(2026, 6, 3, 12, 0, 0, 0, time.UTC)
	f.mock.ExpectExec("UPDATE overtime_approvals").
		WithArgs("appr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectQuery("INSERT INTO overtime_approvals").
		WithArgs(testutil.AnyUUID{}, segmentID, 2, sqlmock.AnyArg(), reviewerID, reason).
		WillReturnRows(testutil.MockRows("decided_at", "created_at").AddRow(decided, decided))
}

func reviewerContext() context.Context {
	return actor.WithActor(context.Background(), &actor.Actor{ID: reviewerID, Role: auth.RoleSupervisor})
}
