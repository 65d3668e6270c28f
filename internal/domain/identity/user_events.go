package identity

import (
	"github.com/taxpilot/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeUserRegistered = "identity.user.registered"
	EventTypeUserSuspended  = "identity.user.suspended"
)

// UserRegisteredEvent is raised when an account is created
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// NewUserRegisteredEvent creates a new user registered event
func NewUserRegisteredEvent(user *User) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, "User", user.ID),
		Email:           user.Email,
		Role:            user.Role,
	}
}

// UserSuspendedEvent is raised when an account is suspended
type UserSuspendedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewUserSuspendedEvent creates a new user suspended event
func NewUserSuspendedEvent(user *User) *UserSuspendedEvent {
	return &UserSuspendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserSuspended, "User", user.ID),
		Email:           user.Email,
	}
}
