package storefront

import (
	"context"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// PrintProductRepository defines the persistence port for products.
// Find methods load the full aggregate including tiers, papers,
// turnarounds and add-ons.
type PrintProductRepository interface {
	Save(ctx context.Context, product *PrintProduct) error
	FindByID(ctx context.Context, id uuid.UUID) (*PrintProduct, error)
	FindBySlug(ctx context.Context, slug string) (*PrintProduct, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*PrintProduct], error)
	FindActive(ctx context.Context, filter shared.Filter) (*shared.Paginated[*PrintProduct], error)
	Delete(ctx context.Context, id uuid.UUID) error
}
