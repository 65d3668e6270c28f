package crm

import (
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// InteractionKind classifies a logged touchpoint
type InteractionKind string

const (
	InteractionKindCall    InteractionKind = "call"
	InteractionKindEmail   InteractionKind = "email"
	InteractionKindMeeting InteractionKind = "meeting"
	InteractionKindNote    InteractionKind = "note"
)

// Interaction is an immutable log entry of a touchpoint with a contact
type Interaction struct {
	shared.BaseEntity
	ContactID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind       InteractionKind `gorm:"type:varchar(10);not null"`
	Summary    string          `gorm:"type:varchar(500);not null"`
	Detail     string          `gorm:"type:text"`
	OccurredAt time.Time       `gorm:"not null;index"`
	LoggedBy   *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Interaction) TableName() string {
	return "interactions"
}

// NewInteraction logs a touchpoint against a contact
func NewInteraction(contactID uuid.UUID, kind InteractionKind, summary, detail string, occurredAt time.Time) (*Interaction, error) {
	if contactID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Contact ID is required")
	}
	switch kind {
	case InteractionKindCall, InteractionKindEmail, InteractionKindMeeting, InteractionKindNote:
	default:
		return nil, shared.NewDomainError("INVALID_KIND", "Invalid interaction kind")
	}
	if summary == "" {
		return nil, shared.NewDomainError("INVALID_SUMMARY", "Interaction summary is required")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	if occurredAt.After(time.Now().Add(time.Minute)) {
		return nil, shared.NewDomainError("INVALID_TIME", "Interaction cannot occur in the future")
	}

	return &Interaction{
		BaseEntity: shared.NewBaseEntity(),
		ContactID:  contactID,
		Kind:       kind,
		Summary:    summary,
		Detail:     detail,
		OccurredAt: occurredAt,
	}, nil
}
