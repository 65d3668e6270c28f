package attribution

import (
	"context"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// RecordRepository defines the persistence port for attribution records.
// SaveIfAbsent must enforce the one-record-per-client lock atomically:
// when a record already exists for the client it returns the existing
// record and shared.ErrAttributionLocked without modifying anything.
type RecordRepository interface {
	SaveIfAbsent(ctx context.Context, record *Record) (*Record, error)
	FindByClientID(ctx context.Context, clientID uuid.UUID) (*Record, error)
	FindByReferrer(ctx context.Context, referrerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Record], error)
	CountByReferrer(ctx context.Context, referrerID uuid.UUID) (int64, error)
}
