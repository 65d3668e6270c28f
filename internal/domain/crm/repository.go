package crm

import (
	"context"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// ContactRepository defines the persistence port for contacts
type ContactRepository interface {
	Save(ctx context.Context, contact *Contact) error
	FindByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	FindByEmail(ctx context.Context, email string) (*Contact, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Contact], error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Contact], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InteractionRepository defines the persistence port for interactions
type InteractionRepository interface {
	Save(ctx context.Context, interaction *Interaction) error
	FindByContact(ctx context.Context, contactID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Interaction], error)
}

// TaskRepository defines the persistence port for tasks
type TaskRepository interface {
	Save(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Task], error)
	FindByAssignee(ctx context.Context, assigneeID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Task], error)
	FindByStatus(ctx context.Context, status TaskStatus, filter shared.Filter) (*shared.Paginated[*Task], error)
	FindOverdue(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Task], error)
	Delete(ctx context.Context, id uuid.UUID) error
}
