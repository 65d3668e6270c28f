package lead

import (
	"context"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// LeadRepository defines the persistence port for leads
type LeadRepository interface {
	Save(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	FindOpenByEmail(ctx context.Context, email string) (*Lead, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Lead], error)
	FindByStatus(ctx context.Context, status LeadStatus, filter shared.Filter) (*shared.Paginated[*Lead], error)
	FindByAssignee(ctx context.Context, preparerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Lead], error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, status LeadStatus) (int64, error)
}
