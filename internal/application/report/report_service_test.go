package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/identity"
	"github.com/taxpilot/backend/internal/domain/report"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/tax"
	"github.com/taxpilot/backend/internal/infrastructure/email"
	"github.com/taxpilot/backend/internal/infrastructure/scheduler"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) CollectDaily(ctx context.Context, day time.Time) (*report.DailySnapshot, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.DailySnapshot), args.Error(1)
}

func (m *MockReportRepository) UpsertDaily(ctx context.Context, snapshot *report.DailySnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockReportRepository) FindRange(ctx context.Context, from, to time.Time) ([]*report.DailySnapshot, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*report.DailySnapshot), args.Error(1)
}

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Save(ctx context.Context, appt *tax.Appointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *MockAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*tax.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tax.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (*shared.Paginated[*tax.Appointment], error) {
	args := m.Called(ctx, clientID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*tax.Appointment]), args.Error(1)
}

func (m *MockAppointmentRepository) FindByPreparer(ctx context.Context, preparerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*tax.Appointment], error) {
	args := m.Called(ctx, preparerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*tax.Appointment]), args.Error(1)
}

func (m *MockAppointmentRepository) FindScheduledOverlapping(ctx context.Context, preparerID uuid.UUID, startsAt, endsAt time.Time, excludeID uuid.UUID) ([]*tax.Appointment, error) {
	args := m.Called(ctx, preparerID, startsAt, endsAt, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tax.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) FindScheduledBetween(ctx context.Context, from, to time.Time) ([]*tax.Appointment, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tax.Appointment), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, emailAddr string) (*identity.User, error) {
	args := m.Called(ctx, emailAddr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByPhone(ctx context.Context, phone string) (*identity.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByTrackingCode(ctx context.Context, code string) (*identity.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*identity.User], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*identity.User]), args.Error(1)
}

func (m *MockUserRepository) FindByRole(ctx context.Context, role identity.UserRole, filter shared.Filter) (*shared.Paginated[*identity.User], error) {
	args := m.Called(ctx, role, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*identity.User]), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, emailAddr string) (bool, error) {
	args := m.Called(ctx, emailAddr)
	return args.Bool(0), args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type reportFixture struct {
	service    *ReportService
	reportRepo *MockReportRepository
	apptRepo   *MockAppointmentRepository
	userRepo   *MockUserRepository
	sender     *MockSender
}

func newFixture(t *testing.T) *reportFixture {
	t.Helper()
	f := &reportFixture{
		reportRepo: new(MockReportRepository),
		apptRepo:   new(MockAppointmentRepository),
		userRepo:   new(MockUserRepository),
		sender:     new(MockSender),
	}
	f.service = NewReportService(f.reportRepo, f.apptRepo, f.userRepo, f.sender, zap.NewNop())
	return f
}

func futureAppointment(t *testing.T, clientID uuid.UUID) *tax.Appointment {
	t.Helper()
	start := time.Now().Add(20 * time.Hour).Truncate(time.Minute)
	appt, err := tax.NewAppointment(clientID, uuid.New(), start, start.Add(time.Hour), "")
	require.NoError(t, err)
	return appt
}

func TestReportService_DailyReportJob(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	snapshot := &report.DailySnapshot{ReportDate: day, LeadsCreated: 12, ReturnsFiled: 3}

	f.reportRepo.On("CollectDaily", mock.Anything, day).Return(snapshot, nil)
	f.reportRepo.On("UpsertDaily", mock.Anything, snapshot).Return(nil)

	job := scheduler.NewJob(scheduler.JobKindDailyReport, day, day.Add(24*time.Hour), 3)
	err := f.service.Execute(context.Background(), job)

	require.NoError(t, err)
	f.reportRepo.AssertExpectations(t)
}

func TestReportService_DailyReportJob_CollectFails(t *testing.T) {
	f := newFixture(t)
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	f.reportRepo.On("CollectDaily", mock.Anything, day).Return(nil, assert.AnError)

	job := scheduler.NewJob(scheduler.JobKindDailyReport, day, day.Add(24*time.Hour), 3)
	err := f.service.Execute(context.Background(), job)

	require.Error(t, err)
	f.reportRepo.AssertNotCalled(t, "UpsertDaily", mock.Anything, mock.Anything)
}

func TestReportService_ReminderJob_SendsToEachClient(t *testing.T) {
	f := newFixture(t)
	client, err := identity.NewUser("client@example.com", "hash", "Dana", "Reyes", identity.UserRoleClient)
	require.NoError(t, err)
	first := futureAppointment(t, client.ID)
	second := futureAppointment(t, client.ID)
	from := time.Now()
	to := from.Add(24 * time.Hour)

	f.apptRepo.On("FindScheduledBetween", mock.Anything, from, to).
		Return([]*tax.Appointment{first, second}, nil)
	f.userRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	f.sender.On("Send", mock.Anything, mock.AnythingOfType("email.Message")).Return(nil)

	job := scheduler.NewJob(scheduler.JobKindAppointmentReminders, from, to, 3)
	err = f.service.Execute(context.Background(), job)

	require.NoError(t, err)
	f.sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestReportService_ReminderJob_SendFailureDoesNotFailJob(t *testing.T) {
	f := newFixture(t)
	client, err := identity.NewUser("client@example.com", "hash", "Dana", "Reyes", identity.UserRoleClient)
	require.NoError(t, err)
	appt := futureAppointment(t, client.ID)
	from := time.Now()
	to := from.Add(24 * time.Hour)

	f.apptRepo.On("FindScheduledBetween", mock.Anything, from, to).
		Return([]*tax.Appointment{appt}, nil)
	f.userRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	f.sender.On("Send", mock.Anything, mock.Anything).Return(assert.AnError)

	job := scheduler.NewJob(scheduler.JobKindAppointmentReminders, from, to, 3)
	err = f.service.Execute(context.Background(), job)

	require.NoError(t, err)
}

func TestReportService_Execute_UnknownJobKind(t *testing.T) {
	f := newFixture(t)

	job := scheduler.NewJob(scheduler.JobKind("NOT_A_JOB"), time.Now(), time.Now(), 0)
	err := f.service.Execute(context.Background(), job)

	require.ErrorIs(t, err, scheduler.ErrInvalidJobKind)
}

func TestReportService_GetRange(t *testing.T) {
	f := newFixture(t)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	snapshots := []*report.DailySnapshot{{ReportDate: from, LeadsCreated: 4}}

	f.reportRepo.On("FindRange", mock.Anything, from, to).Return(snapshots, nil)

	result, err := f.service.GetRange(context.Background(), from, to)

	require.NoError(t, err)
	assert.Equal(t, snapshots, result)
}

func TestReportService_GetRange_Inverted(t *testing.T) {
	f := newFixture(t)
	from := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.service.GetRange(context.Background(), from, to)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_RANGE", domainErr.Code)
}
