package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// UserRepository defines the persistence port for users
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByTrackingCode(ctx context.Context, code string) (*User, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*User], error)
	FindByRole(ctx context.Context, role UserRole, filter shared.Filter) (*shared.Paginated[*User], error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
