package attribution

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/attribution"
	"github.com/taxpilot/backend/internal/domain/identity"
	"github.com/taxpilot/backend/internal/domain/shared"
)

// MockRecordRepository is a mock implementation of attribution.RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) SaveIfAbsent(ctx context.Context, record *attribution.Record) (*attribution.Record, error) {
	args := m.Called(ctx, record)
	switch v := args.Get(0).(type) {
	case nil:
		return nil, args.Error(1)
	case func(*attribution.Record) *attribution.Record:
		// echo the record under test back as the stored row
		return v(record), args.Error(1)
	default:
		return v.(*attribution.Record), args.Error(1)
	}
}

func (m *MockRecordRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) (*attribution.Record, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*attribution.Record), args.Error(1)
}

func (m *MockRecordRepository) FindByReferrer(ctx context.Context, referrerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*attribution.Record], error) {
	args := m.Called(ctx, referrerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*attribution.Record]), args.Error(1)
}

func (m *MockRecordRepository) CountByReferrer(ctx context.Context, referrerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, referrerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository is a mock implementation of identity.UserRepository
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

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
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

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func newAffiliate(t *testing.T, rate float64) *identity.User {
	t.Helper()
	user, err := identity.NewUser("ref@example.com", "hash", "Rita", "Vale", identity.UserRoleAffiliate)
	require.NoError(t, err)
	require.NoError(t, user.AssignTrackingCode("RITA2024"))
	require.NoError(t, user.SetCommissionRate(decimal.NewFromFloat(rate)))
	return user
}

func newService(recordRepo *MockRecordRepository, userRepo *MockUserRepository) *ResolverService {
	return NewResolverService(recordRepo, userRepo, nil, zap.NewNop())
}

func passthroughSave(recordRepo *MockRecordRepository) {
	recordRepo.On("SaveIfAbsent", mock.Anything, mock.AnythingOfType("*attribution.Record")).
		Return(func(r *attribution.Record) *attribution.Record { return r }, nil)
}

func TestResolverService_Resolve_CookieWins(t *testing.T) {
	recordRepo := new(MockRecordRepository)
	userRepo := new(MockUserRepository)
	service := newService(recordRepo, userRepo)
	referrer := newAffiliate(t, 0.15)
	subjectID := uuid.New()

	userRepo.On("FindByTrackingCode", mock.Anything, "RITA2024").Return(referrer, nil)
	passthroughSave(recordRepo)

	info, err := service.Resolve(context.Background(), ResolveInput{
		SubjectID:    subjectID,
		TrackingCode: "RITA2024",
		Email:        "dana@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, attribution.MethodCookie, info.Method)
	require.NotNil(t, info.ReferrerID)
	assert.Equal(t, referrer.ID, *info.ReferrerID)
	assert.True(t, info.CommissionRate.Equal(decimal.NewFromFloat(0.15)))
	assert.False(t, info.AlreadyLocked)
	// Cookie matched, so the email signal is never consulted
	userRepo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestResolverService_Resolve_EmailFallback(t *testing.T) {
	recordRepo := new(MockRecordRepository)
	userRepo := new(MockUserRepository)
	service := newService(recordRepo, userRepo)
	referrer := newAffiliate(t, 0.20)
	subjectID := uuid.New()

	// Known client with the same email whose attribution is locked
	existingClient, err := identity.NewUser("dana@example.com", "hash", "Dana", "Reyes", identity.UserRoleClient)
	require.NoError(t, err)
	existing, err := attribution.NewRecord(existingClient.ID, &referrer.ID, "RITA2024", attribution.MethodCookie, decimal.NewFromFloat(0.15))
	require.NoError(t, err)

	userRepo.On("FindByEmail", mock.Anything, "dana@example.com").Return(existingClient, nil)
	userRepo.On("FindByID", mock.Anything, referrer.ID).Return(referrer, nil)
	recordRepo.On("FindByClientID", mock.Anything, existingClient.ID).Return(existing, nil)
	passthroughSave(recordRepo)

	info, err := service.Resolve(context.Background(), ResolveInput{
		SubjectID: subjectID,
		Email:     "dana@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, attribution.MethodEmail, info.Method)
	require.NotNil(t, info.ReferrerID)
	assert.Equal(t, referrer.ID, *info.ReferrerID)
	// New locks freeze the referrer's current rate, not the old record's
	assert.True(t, info.CommissionRate.Equal(decimal.NewFromFloat(0.20)))
}

func TestResolverService_Resolve_PhoneFallback(t *testing.T) {
	recordRepo := new(MockRecordRepository)
	userRepo := new(MockUserRepository)
	service := newService(recordRepo, userRepo)
	referrer := newAffiliate(t, 0.10)
	subjectID := uuid.New()

	existingClient, err := identity.NewUser("dana@example.com", "hash", "Dana", "Reyes", identity.UserRoleClient)
	require.NoError(t, err)
	existing, err := attribution.NewRecord(existingClient.ID, &referrer.ID, "RITA2024", attribution.MethodCookie, decimal.NewFromFloat(0.10))
	require.NoError(t, err)

	userRepo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, shared.ErrNotFound)
	userRepo.On("FindByPhone", mock.Anything, "+1 555 0100").Return(existingClient, nil)
	userRepo.On("FindByID", mock.Anything, referrer.ID).Return(referrer, nil)
	recordRepo.On("FindByClientID", mock.Anything, existingClient.ID).Return(existing, nil)
	passthroughSave(recordRepo)

	info, err := service.Resolve(context.Background(), ResolveInput{
		SubjectID: subjectID,
		Email:     "new@example.com",
		Phone:     "+1 555 0100",
	})

	require.NoError(t, err)
	assert.Equal(t, attribution.MethodPhone, info.Method)
}

func TestResolverService_Resolve_DirectWhenNothingMatches(t *testing.T) {
	recordRepo := new(MockRecordRepository)
	userRepo := new(MockUserRepository)
	service := newService(recordRepo, userRepo)
	subjectID := uuid.New()

	userRepo.On("FindByTrackingCode", mock.Anything, "GHOST123").Return(nil, shared.ErrNotFound)
	userRepo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, shared.ErrNotFound)
	passthroughSave(recordRepo)

	info, err := service.Resolve(context.Background(), ResolveInput{
		SubjectID:    subjectID,
		TrackingCode: "GHOST123",
		Email:        "new@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, attribution.MethodDirect, info.Method)
	assert.Nil(t, info.ReferrerID)
	assert.True(t, info.CommissionRate.IsZero())
}

func TestResolverService_Resolve_InactiveReferrerFallsThrough(t *testing.T) {
	recordRepo := new(MockRecordRepository)
	userRepo := new(MockUserRepository)
	service := newService(recordRepo, userRepo)
	referrer := newAffiliate(t, 0.15)
	require.NoError(t, referrer.Suspend())
	subjectID := uuid.New()

	userRepo.On("FindByTrackingCode", mock.Anything, "RITA2024").Return(referrer, nil)
	passthroughSave(recordRepo)

	info, err := service.Resolve(context.Background(), ResolveInput{
		SubjectID:    subjectID,
		TrackingCode: "RITA2024",
	})

	require.NoError(t, err)
	assert.Equal(t, attribution.MethodDirect, info.Method)
}

func TestResolverService_Resolve_FirstTouchLocked(t *testing.T) {
	recordRepo := new(MockRecordRepository)
	userRepo := new(MockUserRepository)
	service := newService(recordRepo, userRepo)
	referrer := newAffiliate(t, 0.15)
	subjectID := uuid.New()

	winner, err := attribution.NewRecord(subjectID, &referrer.ID, "RITA2024", attribution.MethodCookie, decimal.NewFromFloat(0.15))
	require.NoError(t, err)

	userRepo.On("FindByTrackingCode", mock.Anything, "OTHER456").Return(nil, shared.ErrNotFound)
	recordRepo.On("SaveIfAbsent", mock.Anything, mock.AnythingOfType("*attribution.Record")).
		Return(winner, shared.ErrAttributionLocked)

	info, err := service.Resolve(context.Background(), ResolveInput{
		SubjectID:    subjectID,
		TrackingCode: "OTHER456",
	})

	require.NoError(t, err)
	assert.True(t, info.AlreadyLocked)
	// The original lock survives the second touch untouched
	assert.Equal(t, attribution.MethodCookie, info.Method)
	require.NotNil(t, info.ReferrerID)
	assert.Equal(t, referrer.ID, *info.ReferrerID)
}

func TestResolverService_CarryForward_CopiesFrozenRate(t *testing.T) {
	recordRepo := new(MockRecordRepository)
	userRepo := new(MockUserRepository)
	service := newService(recordRepo, userRepo)
	referrer := newAffiliate(t, 0.25)
	leadID := uuid.New()
	userID := uuid.New()

	leadRecord, err := attribution.NewRecord(leadID, &referrer.ID, "RITA2024", attribution.MethodCookie, decimal.NewFromFloat(0.15))
	require.NoError(t, err)

	recordRepo.On("FindByClientID", mock.Anything, leadID).Return(leadRecord, nil)
	passthroughSave(recordRepo)

	info, err := service.CarryForward(context.Background(), leadID, userID)

	require.NoError(t, err)
	assert.Equal(t, userID, info.SubjectID)
	assert.Equal(t, attribution.MethodCookie, info.Method)
	// Conversion carries the rate frozen at first touch, ignoring the
	// referrer's current (higher) rate
	assert.True(t, info.CommissionRate.Equal(decimal.NewFromFloat(0.15)))
}

func TestResolverService_CarryForward_NoPriorRecordLocksDirect(t *testing.T) {
	recordRepo := new(MockRecordRepository)
	userRepo := new(MockUserRepository)
	service := newService(recordRepo, userRepo)
	leadID := uuid.New()
	userID := uuid.New()

	recordRepo.On("FindByClientID", mock.Anything, leadID).Return(nil, shared.ErrNotFound)
	passthroughSave(recordRepo)

	info, err := service.CarryForward(context.Background(), leadID, userID)

	require.NoError(t, err)
	assert.Equal(t, attribution.MethodDirect, info.Method)
	assert.Nil(t, info.ReferrerID)
}

func TestResolverService_GetReferrerStats(t *testing.T) {
	recordRepo := new(MockRecordRepository)
	userRepo := new(MockUserRepository)
	service := newService(recordRepo, userRepo)
	referrerID := uuid.New()

	recordRepo.On("CountByReferrer", mock.Anything, referrerID).Return(int64(7), nil)

	stats, err := service.GetReferrerStats(context.Background(), referrerID)

	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.TotalAttributed)
}
