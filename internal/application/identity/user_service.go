package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/identity"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/infrastructure/auth"
)

// trackingCodeAttempts bounds retries when a generated code collides
// with an existing one.
const trackingCodeAttempts = 5

// UserService handles admin-side account management
type UserService struct {
	userRepo identity.UserRepository
	hasher   *auth.PasswordHasher
	logger   *zap.Logger
}

// NewUserService creates a new user management service
func NewUserService(userRepo identity.UserRepository, hasher *auth.PasswordHasher, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		logger:   logger,
	}
}

// CreateUser creates an account with any role. Preparers and
// affiliates get a tracking code assigned immediately so their
// referral links work from day one.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to check email existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		if err == auth.ErrPasswordTooShort || err == auth.ErrPasswordTooLong {
			return nil, shared.NewDomainError("INVALID_PASSWORD", err.Error())
		}
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to process password")
	}

	user, err := identity.NewUser(email, hash, input.FirstName, input.LastName, input.Role)
	if err != nil {
		return nil, err
	}
	if input.Phone != "" {
		if err := user.UpdateProfile(input.FirstName, input.LastName, input.Phone); err != nil {
			return nil, err
		}
	}

	if user.CanRefer() {
		if err := user.AssignTrackingCode(identity.GenerateTrackingCode()); err != nil {
			return nil, err
		}
	}

	if err := s.saveWithTrackingRetry(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	info := NewUserInfo(user)
	return &info, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	info := NewUserInfo(user)
	return &info, nil
}

// ListUsers returns a filtered page of users
func (s *UserService) ListUsers(ctx context.Context, input ListUsersInput) (*shared.Paginated[UserInfo], error) {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}
	filter.Search = input.Search

	var (
		page *shared.Paginated[*identity.User]
		err  error
	)
	if input.Role != "" {
		page, err = s.userRepo.FindByRole(ctx, input.Role, filter)
	} else {
		page, err = s.userRepo.FindAll(ctx, filter)
	}
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}

	items := make([]UserInfo, 0, len(page.Items))
	for _, u := range page.Items {
		items = append(items, NewUserInfo(u))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// ActivateUser reactivates a deactivated or suspended account
func (s *UserService) ActivateUser(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, func(u *identity.User) error { return u.Activate() })
}

// DeactivateUser deactivates an account
func (s *UserService) DeactivateUser(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, func(u *identity.User) error { return u.Deactivate() })
}

// SuspendUser suspends an account
func (s *UserService) SuspendUser(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, func(u *identity.User) error { return u.Suspend() })
}

// DeleteUser removes an account
func (s *UserService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to delete user", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete user")
	}
	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}

// AssignTrackingCode assigns or regenerates a referral tracking code
// for a preparer or affiliate. An empty code generates a fresh one.
func (s *UserService) AssignTrackingCode(ctx context.Context, id uuid.UUID, code string) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if code == "" {
		code = identity.GenerateTrackingCode()
	}
	if err := user.AssignTrackingCode(code); err != nil {
		return nil, err
	}

	if err := s.saveWithTrackingRetry(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Tracking code assigned",
		zap.String("user_id", id.String()),
		zap.String("tracking_code", user.TrackingCode))

	info := NewUserInfo(user)
	return &info, nil
}

// SetCommissionRate sets the rate locked into future attributions for
// this referrer. Existing attribution records keep their locked rate.
func (s *UserService) SetCommissionRate(ctx context.Context, input SetCommissionRateInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}

	if err := user.SetCommissionRate(input.Rate); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update commission rate", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update commission rate")
	}

	s.logger.Info("Commission rate updated",
		zap.String("user_id", input.UserID.String()),
		zap.String("rate", input.Rate.String()))

	info := NewUserInfo(user)
	return &info, nil
}

// FindReferrerByTrackingCode resolves a tracking code to its owner
func (s *UserService) FindReferrerByTrackingCode(ctx context.Context, code string) (*ReferrerInfo, error) {
	user, err := s.userRepo.FindByTrackingCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, shared.NewDomainError("REFERRER_NOT_FOUND", "No referrer with this tracking code")
	}
	return &ReferrerInfo{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Role:           user.Role,
		TrackingCode:   user.TrackingCode,
		CommissionRate: user.CommissionRate,
	}, nil
}

func (s *UserService) transition(ctx context.Context, id uuid.UUID, fn func(*identity.User) error) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return shared.NewDomainError("USER_NOT_FOUND", "User not found")
	}
	if err := fn(user); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user status", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}
	return nil
}

// saveWithTrackingRetry saves the user, regenerating the tracking code
// on a duplicate-code conflict.
func (s *UserService) saveWithTrackingRetry(ctx context.Context, user *identity.User) error {
	var err error
	for attempt := 0; attempt < trackingCodeAttempts; attempt++ {
		err = s.userRepo.Save(ctx, user)
		if err == nil {
			return nil
		}
		if err != shared.ErrAlreadyExists || user.TrackingCode == "" {
			break
		}
		if codeErr := user.AssignTrackingCode(identity.GenerateTrackingCode()); codeErr != nil {
			return codeErr
		}
	}
	s.logger.Error("Failed to save user", zap.Error(err))
	return shared.NewDomainError("INTERNAL_ERROR", "Failed to save user")
}
