package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// UserRole represents the role a user plays on the platform
type UserRole string

const (
	UserRoleClient    UserRole = "client"
	UserRolePreparer  UserRole = "preparer"
	UserRoleAffiliate UserRole = "affiliate"
	UserRoleAdmin     UserRole = "admin"
)

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

var (
	emailRegex        = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	trackingCodeRegex = regexp.MustCompile(`^[A-Z0-9]{4,16}$`)
	phoneRegex        = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
)

// User is the aggregate root for platform accounts across all roles.
// Preparers and affiliates additionally carry a tracking code used for
// referral-link attribution and a default commission rate.
type User struct {
	shared.BaseAggregateRoot
	Email          string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash   string          `gorm:"type:varchar(200);not null"`
	FirstName      string          `gorm:"type:varchar(100);not null"`
	LastName       string          `gorm:"type:varchar(100);not null"`
	Phone          string          `gorm:"type:varchar(50);index"`
	Role           UserRole        `gorm:"type:varchar(20);not null;default:'client'"`
	Status         UserStatus      `gorm:"type:varchar(20);not null;default:'active'"`
	TrackingCode   string          `gorm:"type:varchar(16);uniqueIndex"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0"`
	LastLoginAt    *time.Time
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with required fields
func NewUser(email, passwordHash, firstName, lastName string, role UserRole) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}
	if firstName == "" || lastName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First and last name are required")
	}
	if err := validateRole(role); err != nil {
		return nil, err
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             strings.ToLower(email),
		PasswordHash:      passwordHash,
		FirstName:         firstName,
		LastName:          lastName,
		Role:              role,
		Status:            UserStatusActive,
		CommissionRate:    decimal.Zero,
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UpdateProfile updates the user's profile fields
func (u *User) UpdateProfile(firstName, lastName, phone string) error {
	if firstName == "" || lastName == "" {
		return shared.NewDomainError("INVALID_NAME", "First and last name are required")
	}
	if phone != "" {
		if len(phone) > 50 || !phoneRegex.MatchString(phone) {
			return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
		}
	}

	u.FirstName = firstName
	u.LastName = lastName
	u.Phone = phone
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// ChangePassword replaces the stored password hash
func (u *User) ChangePassword(passwordHash string) error {
	if passwordHash == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// AssignTrackingCode assigns a referral tracking code.
// Only preparers and affiliates participate in attribution.
func (u *User) AssignTrackingCode(code string) error {
	if !u.CanRefer() {
		return shared.NewDomainError("INVALID_ROLE", "Only preparers and affiliates can have a tracking code")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if !trackingCodeRegex.MatchString(code) {
		return shared.NewDomainError("INVALID_TRACKING_CODE", "Tracking code must be 4-16 alphanumeric characters")
	}

	u.TrackingCode = code
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetCommissionRate sets the default commission rate used when locking
// new attributions to this referrer. The rate is a fraction (0.15 = 15%).
func (u *User) SetCommissionRate(rate decimal.Decimal) error {
	if !u.CanRefer() {
		return shared.NewDomainError("INVALID_ROLE", "Only preparers and affiliates earn commission")
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_COMMISSION_RATE", "Commission rate must be between 0 and 1")
	}

	u.CommissionRate = rate
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// RecordLogin records a successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Activate activates the user account
func (u *User) Activate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}
	u.Status = UserStatusActive
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// Deactivate deactivates the user account
func (u *User) Deactivate() error {
	if u.Status == UserStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "User is already inactive")
	}
	u.Status = UserStatusInactive
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// Suspend suspends the user account
func (u *User) Suspend() error {
	if u.Status == UserStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "User is already suspended")
	}
	u.Status = UserStatusSuspended
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// IsActive returns true if the user is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// CanRefer returns true if the user's role participates in attribution
func (u *User) CanRefer() bool {
	return u.Role == UserRolePreparer || u.Role == UserRoleAffiliate
}

// IsAdmin returns true for admin accounts
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 || !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validateRole(role UserRole) error {
	switch role {
	case UserRoleClient, UserRolePreparer, UserRoleAffiliate, UserRoleAdmin:
		return nil
	default:
		return shared.NewDomainError("INVALID_ROLE", "Invalid user role")
	}
}

// GenerateTrackingCode derives a candidate tracking code from a UUID.
// Uniqueness is enforced by the database; callers retry on conflict.
func GenerateTrackingCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return raw[:8]
}
