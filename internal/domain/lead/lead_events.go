package lead

import (
	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeLeadCreated   = "lead.created"
	EventTypeLeadConverted = "lead.converted"
)

// LeadCreatedEvent is raised when a new lead enters the pipeline
type LeadCreatedEvent struct {
	shared.BaseDomainEvent
	Email  string     `json:"email"`
	Source LeadSource `json:"source"`
}

// NewLeadCreatedEvent creates a new lead created event
func NewLeadCreatedEvent(l *Lead) *LeadCreatedEvent {
	return &LeadCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadCreated, "Lead", l.ID),
		Email:           l.Email,
		Source:          l.Source,
	}
}

// LeadConvertedEvent is raised when a lead becomes a client account
type LeadConvertedEvent struct {
	shared.BaseDomainEvent
	Email  string    `json:"email"`
	UserID uuid.UUID `json:"user_id"`
}

// NewLeadConvertedEvent creates a new lead converted event
func NewLeadConvertedEvent(l *Lead, userID uuid.UUID) *LeadConvertedEvent {
	return &LeadConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeadConverted, "Lead", l.ID),
		Email:           l.Email,
		UserID:          userID,
	}
}
