package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/identity"
)

// RegisterInput contains the input for self-service registration
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      identity.UserRole // empty defaults to client
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// UserInfo contains basic user information returned to callers
type UserInfo struct {
	ID             uuid.UUID
	Email          string
	FirstName      string
	LastName       string
	Phone          string
	Role           identity.UserRole
	Status         identity.UserStatus
	TrackingCode   string
	CommissionRate decimal.Decimal
	CreatedAt      time.Time
	LastLoginAt    *time.Time
}

// NewUserInfo maps a domain user to its outward representation
func NewUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Phone:          u.Phone,
		Role:           u.Role,
		Status:         u.Status,
		TrackingCode:   u.TrackingCode,
		CommissionRate: u.CommissionRate,
		CreatedAt:      u.CreatedAt,
		LastLoginAt:    u.LastLoginAt,
	}
}

// RefreshTokenInput contains the input for token refresh
type RefreshTokenInput struct {
	RefreshToken string
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// LogoutInput contains the input for user logout
type LogoutInput struct {
	UserID      uuid.UUID
	TokenJTI    string
	TokenExpiry time.Time
	Everywhere  bool // revoke all sessions, not just this token
}

// ChangePasswordInput contains the input for a password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// UpdateProfileInput contains the input for a profile update
type UpdateProfileInput struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Phone     string
}

// CreateUserInput contains the input for admin user creation
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Role      identity.UserRole
}

// ListUsersInput contains filter parameters for user listing
type ListUsersInput struct {
	Role     identity.UserRole // empty = all roles
	Search   string
	Page     int
	PageSize int
}

// SetCommissionRateInput contains the input for setting a referrer's rate
type SetCommissionRateInput struct {
	UserID uuid.UUID
	Rate   decimal.Decimal
}

// ReferrerInfo describes a user that can receive attributions
type ReferrerInfo struct {
	ID             uuid.UUID
	Email          string
	FirstName      string
	LastName       string
	Role           identity.UserRole
	TrackingCode   string
	CommissionRate decimal.Decimal
}
