package attribution

import (
	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// EventTypeAttributionLocked is raised exactly once per client
const EventTypeAttributionLocked = "attribution.locked"

// AttributionLockedEvent is raised when a client's referrer is frozen
type AttributionLockedEvent struct {
	shared.BaseDomainEvent
	ClientID   uuid.UUID  `json:"client_id"`
	ReferrerID *uuid.UUID `json:"referrer_id,omitempty"`
	Method     Method     `json:"method"`
}

// NewAttributionLockedEvent creates a new attribution locked event
func NewAttributionLockedEvent(r *Record) *AttributionLockedEvent {
	return &AttributionLockedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAttributionLocked, "AttributionRecord", r.ID),
		ClientID:        r.ClientID,
		ReferrerID:      r.ReferrerID,
		Method:          r.Method,
	}
}
