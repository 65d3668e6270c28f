package tax

import (
	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeReturnOpened = "tax.return.opened"
	EventTypeReturnFiled  = "tax.return.filed"
)

// ReturnOpenedEvent is raised when a return enters intake
type ReturnOpenedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	TaxYear  int       `json:"tax_year"`
}

// NewReturnOpenedEvent creates a new return opened event
func NewReturnOpenedEvent(tr *TaxReturn) *ReturnOpenedEvent {
	return &ReturnOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnOpened, "TaxReturn", tr.ID),
		ClientID:        tr.ClientID,
		TaxYear:         tr.TaxYear,
	}
}

// ReturnFiledEvent is raised when a return is submitted
type ReturnFiledEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	TaxYear  int       `json:"tax_year"`
}

// NewReturnFiledEvent creates a new return filed event
func NewReturnFiledEvent(tr *TaxReturn) *ReturnFiledEvent {
	return &ReturnFiledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnFiled, "TaxReturn", tr.ID),
		ClientID:        tr.ClientID,
		TaxYear:         tr.TaxYear,
	}
}
