package tax

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// TaxReturnRepository defines the persistence port for tax returns
type TaxReturnRepository interface {
	Save(ctx context.Context, tr *TaxReturn) error
	FindByID(ctx context.Context, id uuid.UUID) (*TaxReturn, error)
	FindByClientAndYear(ctx context.Context, clientID uuid.UUID, taxYear int) (*TaxReturn, error)
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (*shared.Paginated[*TaxReturn], error)
	FindByPreparer(ctx context.Context, preparerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*TaxReturn], error)
	FindByStatus(ctx context.Context, status ReturnStatus, filter shared.Filter) (*shared.Paginated[*TaxReturn], error)
	CountByStatus(ctx context.Context, status ReturnStatus) (int64, error)
}

// DocumentRepository defines the persistence port for documents
type DocumentRepository interface {
	Save(ctx context.Context, doc *Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Document], error)
	FindByTaxReturn(ctx context.Context, taxReturnID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Document], error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AppointmentRepository defines the persistence port for appointments
type AppointmentRepository interface {
	Save(ctx context.Context, appt *Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Appointment], error)
	FindByPreparer(ctx context.Context, preparerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Appointment], error)
	// FindScheduledOverlapping returns scheduled appointments for the
	// preparer intersecting [startsAt, endsAt), excluding excludeID.
	FindScheduledOverlapping(ctx context.Context, preparerID uuid.UUID, startsAt, endsAt time.Time, excludeID uuid.UUID) ([]*Appointment, error)
	// FindScheduledBetween returns scheduled appointments starting
	// within [from, to).
	FindScheduledBetween(ctx context.Context, from, to time.Time) ([]*Appointment, error)
}
