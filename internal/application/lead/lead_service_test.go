package lead

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appattribution "github.com/taxpilot/backend/internal/application/attribution"
	"github.com/taxpilot/backend/internal/domain/attribution"
	"github.com/taxpilot/backend/internal/domain/identity"
	"github.com/taxpilot/backend/internal/domain/lead"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/infrastructure/auth"
	"github.com/taxpilot/backend/internal/infrastructure/email"
)

// MockLeadRepository is a mock implementation of lead.LeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Save(ctx context.Context, l *lead.Lead) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*lead.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lead.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindOpenByEmail(ctx context.Context, email string) (*lead.Lead, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*lead.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*lead.Lead], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*lead.Lead]), args.Error(1)
}

func (m *MockLeadRepository) FindByStatus(ctx context.Context, status lead.LeadStatus, filter shared.Filter) (*shared.Paginated[*lead.Lead], error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*lead.Lead]), args.Error(1)
}

func (m *MockLeadRepository) FindByAssignee(ctx context.Context, preparerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*lead.Lead], error) {
	args := m.Called(ctx, preparerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*lead.Lead]), args.Error(1)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeadRepository) CountByStatus(ctx context.Context, status lead.LeadStatus) (int64, error) {
	args := m.Called(ctx, status)
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

// MockResolver is a mock implementation of AttributionResolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, input appattribution.ResolveInput) (*appattribution.RecordInfo, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appattribution.RecordInfo), args.Error(1)
}

func (m *MockResolver) CarryForward(ctx context.Context, leadID, userID uuid.UUID) (*appattribution.RecordInfo, error) {
	args := m.Called(ctx, leadID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appattribution.RecordInfo), args.Error(1)
}

// MockSender is a mock implementation of email.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type leadServiceFixture struct {
	leadRepo *MockLeadRepository
	userRepo *MockUserRepository
	resolver *MockResolver
	sender   *MockSender
	service  *LeadService
}

func newFixture() *leadServiceFixture {
	f := &leadServiceFixture{
		leadRepo: new(MockLeadRepository),
		userRepo: new(MockUserRepository),
		resolver: new(MockResolver),
		sender:   new(MockSender),
	}
	f.service = NewLeadService(f.leadRepo, f.userRepo, f.resolver, auth.NewPasswordHasher(), f.sender, nil, zap.NewNop())
	return f
}

func directRecord(subjectID uuid.UUID) *appattribution.RecordInfo {
	return &appattribution.RecordInfo{SubjectID: subjectID, Method: attribution.MethodDirect}
}

func TestLeadService_Capture_NewLead(t *testing.T) {
	f := newFixture()

	f.leadRepo.On("FindOpenByEmail", mock.Anything, "dana@example.com").Return(nil, shared.ErrNotFound)
	f.leadRepo.On("Save", mock.Anything, mock.AnythingOfType("*lead.Lead")).Return(nil)
	f.resolver.On("Resolve", mock.Anything, mock.AnythingOfType("attribution.ResolveInput")).
		Return(directRecord(uuid.New()), nil)
	f.sender.On("Send", mock.Anything, mock.AnythingOfType("email.Message")).Return(nil)

	info, err := f.service.Capture(context.Background(), CaptureInput{
		FirstName:    "Dana",
		LastName:     "Reyes",
		Email:        "Dana@Example.com",
		Phone:        "+1 555 0100",
		Message:      "Need help with my 2025 return",
		TrackingCode: "RITA2024",
	})

	require.NoError(t, err)
	assert.Equal(t, lead.LeadStatusNew, info.Status)
	assert.Equal(t, "dana@example.com", info.Email)
	assert.False(t, info.Merged)
	f.resolver.AssertCalled(t, "Resolve", mock.Anything, mock.MatchedBy(func(in appattribution.ResolveInput) bool {
		return in.TrackingCode == "RITA2024" && in.Email == "dana@example.com"
	}))
	f.sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestLeadService_Capture_DuplicateEmailMerges(t *testing.T) {
	f := newFixture()
	open, err := lead.NewLead("Dana", "Reyes", "dana@example.com", "", lead.LeadSourceWebForm, "first message")
	require.NoError(t, err)

	f.leadRepo.On("FindOpenByEmail", mock.Anything, "dana@example.com").Return(open, nil)
	f.leadRepo.On("Save", mock.Anything, open).Return(nil)

	info, err := f.service.Capture(context.Background(), CaptureInput{
		FirstName: "Dana",
		Email:     "dana@example.com",
		Phone:     "+1 555 0100",
		Message:   "second message",
	})

	require.NoError(t, err)
	assert.True(t, info.Merged)
	assert.Equal(t, "second message", info.Message)
	assert.Equal(t, "+1 555 0100", info.Phone)
	// A merge is not a fresh touch: no attribution, no confirmation
	f.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	f.sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestLeadService_Capture_AttributionFailureDoesNotLoseLead(t *testing.T) {
	f := newFixture()

	f.leadRepo.On("FindOpenByEmail", mock.Anything, "dana@example.com").Return(nil, shared.ErrNotFound)
	f.leadRepo.On("Save", mock.Anything, mock.AnythingOfType("*lead.Lead")).Return(nil)
	f.resolver.On("Resolve", mock.Anything, mock.Anything).
		Return(nil, shared.NewDomainError("INTERNAL_ERROR", "boom"))
	f.sender.On("Send", mock.Anything, mock.Anything).Return(assert.AnError)

	info, err := f.service.Capture(context.Background(), CaptureInput{
		FirstName: "Dana",
		Email:     "dana@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, lead.LeadStatusNew, info.Status)
}

func TestLeadService_Capture_InvalidEmail(t *testing.T) {
	f := newFixture()

	_, err := f.service.Capture(context.Background(), CaptureInput{
		FirstName: "Dana",
		Email:     "not-an-email",
	})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_EMAIL", domainErr.Code)
}

func TestLeadService_Assign_RequiresPreparerRole(t *testing.T) {
	f := newFixture()
	client, err := identity.NewUser("c@example.com", "hash", "Carl", "North", identity.UserRoleClient)
	require.NoError(t, err)

	f.userRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)

	_, err = f.service.Assign(context.Background(), AssignInput{
		LeadID:     uuid.New(),
		PreparerID: client.ID,
	})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_ROLE", domainErr.Code)
}

func TestLeadService_StatusTransitions(t *testing.T) {
	f := newFixture()
	l, err := lead.NewLead("Dana", "Reyes", "dana@example.com", "", lead.LeadSourceWebForm, "")
	require.NoError(t, err)

	f.leadRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
	f.leadRepo.On("Save", mock.Anything, l).Return(nil)

	info, err := f.service.MarkContacted(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.LeadStatusContacted, info.Status)

	info, err = f.service.Qualify(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.LeadStatusQualified, info.Status)

	// Qualifying twice is an invalid transition
	_, err = f.service.Qualify(context.Background(), l.ID)
	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
}

func TestLeadService_Convert_CreatesClientAndCarriesAttribution(t *testing.T) {
	f := newFixture()
	l, err := lead.NewLead("Dana", "Reyes", "dana@example.com", "", lead.LeadSourceWebForm, "")
	require.NoError(t, err)
	require.NoError(t, l.MarkContacted())
	require.NoError(t, l.Qualify())

	f.leadRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
	f.leadRepo.On("Save", mock.Anything, l).Return(nil)
	f.userRepo.On("FindByEmail", mock.Anything, "dana@example.com").Return(nil, shared.ErrNotFound)
	f.userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)
	f.resolver.On("CarryForward", mock.Anything, l.ID, mock.AnythingOfType("uuid.UUID")).
		Return(directRecord(uuid.New()), nil)

	result, err := f.service.Convert(context.Background(), ConvertInput{LeadID: l.ID})

	require.NoError(t, err)
	assert.False(t, result.AlreadyConverted)
	assert.Equal(t, lead.LeadStatusConverted, result.Lead.Status)
	assert.NotEqual(t, uuid.Nil, result.UserID)
	f.resolver.AssertCalled(t, "CarryForward", mock.Anything, l.ID, result.UserID)
}

func TestLeadService_Convert_ReusesExistingAccount(t *testing.T) {
	f := newFixture()
	l, err := lead.NewLead("Dana", "Reyes", "dana@example.com", "", lead.LeadSourceWebForm, "")
	require.NoError(t, err)
	existing, err := identity.NewUser("dana@example.com", "hash", "Dana", "Reyes", identity.UserRoleClient)
	require.NoError(t, err)

	f.leadRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)
	f.leadRepo.On("Save", mock.Anything, l).Return(nil)
	f.userRepo.On("FindByEmail", mock.Anything, "dana@example.com").Return(existing, nil)
	f.resolver.On("CarryForward", mock.Anything, l.ID, existing.ID).
		Return(directRecord(existing.ID), nil)

	result, err := f.service.Convert(context.Background(), ConvertInput{LeadID: l.ID})

	require.NoError(t, err)
	assert.Equal(t, existing.ID, result.UserID)
	f.userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLeadService_Convert_IdempotentRetry(t *testing.T) {
	f := newFixture()
	l, err := lead.NewLead("Dana", "Reyes", "dana@example.com", "", lead.LeadSourceWebForm, "")
	require.NoError(t, err)
	userID := uuid.New()
	require.NoError(t, l.Convert(userID))

	f.leadRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)

	result, err := f.service.Convert(context.Background(), ConvertInput{LeadID: l.ID})

	require.NoError(t, err)
	assert.True(t, result.AlreadyConverted)
	assert.Equal(t, userID, result.UserID)
	f.leadRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestLeadService_Convert_LostLeadRejected(t *testing.T) {
	f := newFixture()
	l, err := lead.NewLead("Dana", "Reyes", "dana@example.com", "", lead.LeadSourceWebForm, "")
	require.NoError(t, err)
	require.NoError(t, l.MarkLost("went elsewhere"))

	f.leadRepo.On("FindByID", mock.Anything, l.ID).Return(l, nil)

	_, err = f.service.Convert(context.Background(), ConvertInput{LeadID: l.ID})

	require.Error(t, err)
	domainErr, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_TRANSITION", domainErr.Code)
}

func TestLeadService_FunnelCounts(t *testing.T) {
	f := newFixture()

	f.leadRepo.On("CountByStatus", mock.Anything, lead.LeadStatusNew).Return(int64(10), nil)
	f.leadRepo.On("CountByStatus", mock.Anything, lead.LeadStatusContacted).Return(int64(6), nil)
	f.leadRepo.On("CountByStatus", mock.Anything, lead.LeadStatusQualified).Return(int64(4), nil)
	f.leadRepo.On("CountByStatus", mock.Anything, lead.LeadStatusConverted).Return(int64(3), nil)
	f.leadRepo.On("CountByStatus", mock.Anything, lead.LeadStatusLost).Return(int64(2), nil)

	counts, err := f.service.FunnelCounts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(10), counts.New)
	assert.Equal(t, int64(3), counts.Converted)
	assert.Equal(t, int64(2), counts.Lost)
}
