package tax

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
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/tax"
	"github.com/taxpilot/backend/internal/infrastructure/email"
)

type MockTaxReturnRepository struct {
	mock.Mock
}

func (m *MockTaxReturnRepository) Save(ctx context.Context, tr *tax.TaxReturn) error {
	args := m.Called(ctx, tr)
	return args.Error(0)
}

func (m *MockTaxReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*tax.TaxReturn, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tax.TaxReturn), args.Error(1)
}

func (m *MockTaxReturnRepository) FindByClientAndYear(ctx context.Context, clientID uuid.UUID, taxYear int) (*tax.TaxReturn, error) {
	args := m.Called(ctx, clientID, taxYear)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tax.TaxReturn), args.Error(1)
}

func (m *MockTaxReturnRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (*shared.Paginated[*tax.TaxReturn], error) {
	args := m.Called(ctx, clientID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*tax.TaxReturn]), args.Error(1)
}

func (m *MockTaxReturnRepository) FindByPreparer(ctx context.Context, preparerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*tax.TaxReturn], error) {
	args := m.Called(ctx, preparerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*tax.TaxReturn]), args.Error(1)
}

func (m *MockTaxReturnRepository) FindByStatus(ctx context.Context, status tax.ReturnStatus, filter shared.Filter) (*shared.Paginated[*tax.TaxReturn], error) {
	args := m.Called(ctx, status, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*tax.TaxReturn]), args.Error(1)
}

func (m *MockTaxReturnRepository) CountByStatus(ctx context.Context, status tax.ReturnStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
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

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newUserWithRole(t *testing.T, role identity.UserRole) *identity.User {
	t.Helper()
	user, err := identity.NewUser("person@example.com", "hashed-password", "Dana", "Reyes", role)
	require.NoError(t, err)
	return user
}

func newIntakeReturn(t *testing.T, clientID uuid.UUID) *tax.TaxReturn {
	t.Helper()
	tr, err := tax.NewTaxReturn(clientID, time.Now().Year()-1, tax.FilingStatusSingle)
	require.NoError(t, err)
	return tr
}

func TestReturnService_OpenReturn_Success(t *testing.T) {
	returnRepo := new(MockTaxReturnRepository)
	userRepo := new(MockUserRepository)
	service := NewReturnService(returnRepo, userRepo, nil, zap.NewNop())

	client := newUserWithRole(t, identity.UserRoleClient)
	year := time.Now().Year() - 1

	userRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	returnRepo.On("FindByClientAndYear", mock.Anything, client.ID, year).Return(nil, shared.ErrNotFound)
	returnRepo.On("Save", mock.Anything, mock.AnythingOfType("*tax.TaxReturn")).Return(nil)

	info, err := service.OpenReturn(context.Background(), OpenReturnInput{
		ClientID:     client.ID,
		TaxYear:      year,
		FilingStatus: "single",
		Notes:        "W-2 plus one 1099",
	})

	require.NoError(t, err)
	assert.Equal(t, string(tax.ReturnStatusIntake), info.Status)
	assert.Equal(t, year, info.TaxYear)
	assert.Equal(t, "W-2 plus one 1099", info.Notes)
	returnRepo.AssertExpectations(t)
}

func TestReturnService_OpenReturn_DuplicateYear(t *testing.T) {
	returnRepo := new(MockTaxReturnRepository)
	userRepo := new(MockUserRepository)
	service := NewReturnService(returnRepo, userRepo, nil, zap.NewNop())

	client := newUserWithRole(t, identity.UserRoleClient)
	year := time.Now().Year() - 1
	existing := newIntakeReturn(t, client.ID)

	userRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	returnRepo.On("FindByClientAndYear", mock.Anything, client.ID, year).Return(existing, nil)

	_, err := service.OpenReturn(context.Background(), OpenReturnInput{
		ClientID:     client.ID,
		TaxYear:      year,
		FilingStatus: "single",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "RETURN_EXISTS", domainErr.Code)
	returnRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReturnService_Lifecycle_NotifiesClient(t *testing.T) {
	returnRepo := new(MockTaxReturnRepository)
	userRepo := new(MockUserRepository)
	sender := new(MockSender)
	service := NewReturnService(returnRepo, userRepo, sender, zap.NewNop())

	client := newUserWithRole(t, identity.UserRoleClient)
	preparer := newUserWithRole(t, identity.UserRolePreparer)
	tr := newIntakeReturn(t, client.ID)
	tr.PreparerID = &preparer.ID

	returnRepo.On("FindByID", mock.Anything, tr.ID).Return(tr, nil)
	returnRepo.On("Save", mock.Anything, tr).Return(nil)
	userRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	sender.On("Send", mock.Anything, mock.AnythingOfType("email.Message")).Return(nil)

	info, err := service.StartReview(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(tax.ReturnStatusInReview), info.Status)

	info, err = service.MarkReady(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(tax.ReturnStatusReadyToFile), info.Status)

	info, err = service.FileReturn(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(tax.ReturnStatusFiled), info.Status)
	assert.NotNil(t, info.FiledAt)

	sender.AssertNumberOfCalls(t, "Send", 3)
}

func TestReturnService_RejectThenReopen(t *testing.T) {
	returnRepo := new(MockTaxReturnRepository)
	userRepo := new(MockUserRepository)
	service := NewReturnService(returnRepo, userRepo, nil, zap.NewNop())

	client := newUserWithRole(t, identity.UserRoleClient)
	preparer := newUserWithRole(t, identity.UserRolePreparer)
	tr := newIntakeReturn(t, client.ID)
	tr.PreparerID = &preparer.ID
	require.NoError(t, tr.StartReview())
	require.NoError(t, tr.MarkReady())
	require.NoError(t, tr.File())

	returnRepo.On("FindByID", mock.Anything, tr.ID).Return(tr, nil)
	returnRepo.On("Save", mock.Anything, tr).Return(nil)
	userRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)

	info, err := service.RejectReturn(context.Background(), RejectReturnInput{
		ReturnID: tr.ID,
		Reason:   "SSN mismatch on dependent",
	})
	require.NoError(t, err)
	assert.Equal(t, string(tax.ReturnStatusRejected), info.Status)
	assert.Equal(t, "SSN mismatch on dependent", info.RejectReason)

	info, err = service.ReopenReview(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, string(tax.ReturnStatusInReview), info.Status)
	assert.Nil(t, info.FiledAt)
	assert.Empty(t, info.RejectReason)
}

func TestReturnService_StartReview_RequiresPreparer(t *testing.T) {
	returnRepo := new(MockTaxReturnRepository)
	userRepo := new(MockUserRepository)
	service := NewReturnService(returnRepo, userRepo, nil, zap.NewNop())

	client := newUserWithRole(t, identity.UserRoleClient)
	tr := newIntakeReturn(t, client.ID)

	returnRepo.On("FindByID", mock.Anything, tr.ID).Return(tr, nil)

	_, err := service.StartReview(context.Background(), tr.ID)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NO_PREPARER", domainErr.Code)
	returnRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReturnService_AssignPreparer_RejectsClientRole(t *testing.T) {
	returnRepo := new(MockTaxReturnRepository)
	userRepo := new(MockUserRepository)
	service := NewReturnService(returnRepo, userRepo, nil, zap.NewNop())

	notAPreparer := newUserWithRole(t, identity.UserRoleClient)
	userRepo.On("FindByID", mock.Anything, notAPreparer.ID).Return(notAPreparer, nil)

	_, err := service.AssignPreparer(context.Background(), AssignPreparerInput{
		ReturnID:   uuid.New(),
		PreparerID: notAPreparer.ID,
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ROLE", domainErr.Code)
}

func TestReturnService_EmailFailureDoesNotFailTransition(t *testing.T) {
	returnRepo := new(MockTaxReturnRepository)
	userRepo := new(MockUserRepository)
	sender := new(MockSender)
	service := NewReturnService(returnRepo, userRepo, sender, zap.NewNop())

	client := newUserWithRole(t, identity.UserRoleClient)
	preparer := newUserWithRole(t, identity.UserRolePreparer)
	tr := newIntakeReturn(t, client.ID)
	tr.PreparerID = &preparer.ID

	returnRepo.On("FindByID", mock.Anything, tr.ID).Return(tr, nil)
	returnRepo.On("Save", mock.Anything, tr).Return(nil)
	userRepo.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	sender.On("Send", mock.Anything, mock.Anything).Return(assert.AnError)

	info, err := service.StartReview(context.Background(), tr.ID)

	require.NoError(t, err)
	assert.Equal(t, string(tax.ReturnStatusInReview), info.Status)
}
