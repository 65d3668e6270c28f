package lead

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// LeadStatus represents the lifecycle state of a lead
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// LeadSource describes where a lead came from
type LeadSource string

const (
	LeadSourceWebForm  LeadSource = "web_form"
	LeadSourceReferral LeadSource = "referral"
	LeadSourcePhone    LeadSource = "phone"
	LeadSourceWalkIn   LeadSource = "walk_in"
	LeadSourceImport   LeadSource = "import"
)

var leadEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Lead is the aggregate root for prospective clients. A lead is open
// until it is converted into a client account or marked lost.
type Lead struct {
	shared.OwnedAggregateRoot
	FirstName       string     `gorm:"type:varchar(100);not null"`
	LastName        string     `gorm:"type:varchar(100)"`
	Email           string     `gorm:"type:varchar(200);not null;index"`
	Phone           string     `gorm:"type:varchar(50);index"`
	Source          LeadSource `gorm:"type:varchar(20);not null;default:'web_form'"`
	Status          LeadStatus `gorm:"type:varchar(20);not null;default:'new'"`
	Message         string     `gorm:"type:text"`
	AssignedTo      *uuid.UUID `gorm:"type:uuid;index"`
	ConvertedUserID *uuid.UUID `gorm:"type:uuid;index"`
	ContactedAt     *time.Time
	ConvertedAt     *time.Time
	LostReason      string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (Lead) TableName() string {
	return "leads"
}

// NewLead creates a new lead in the new state
func NewLead(firstName, lastName, email, phone string, source LeadSource, message string) (*Lead, error) {
	if firstName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Lead first name is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !leadEmailRegex.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid lead email")
	}
	if err := validateSource(source); err != nil {
		return nil, err
	}

	lead := &Lead{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(),
		FirstName:          firstName,
		LastName:           lastName,
		Email:              email,
		Phone:              phone,
		Source:             source,
		Status:             LeadStatusNew,
		Message:            message,
	}

	lead.AddDomainEvent(NewLeadCreatedEvent(lead))

	return lead, nil
}

// IsOpen returns true while the lead can still progress
func (l *Lead) IsOpen() bool {
	return l.Status != LeadStatusConverted && l.Status != LeadStatusLost
}

// Touch merges a repeat inquiry into this open lead instead of
// creating a duplicate. The newest message wins; phone fills in
// only when previously empty.
func (l *Lead) Touch(phone, message string) error {
	if !l.IsOpen() {
		return shared.NewDomainError("LEAD_CLOSED", "Cannot update a converted or lost lead")
	}
	if message != "" {
		l.Message = message
	}
	if l.Phone == "" && phone != "" {
		l.Phone = phone
	}
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// Assign assigns the lead to a preparer
func (l *Lead) Assign(preparerID uuid.UUID) error {
	if !l.IsOpen() {
		return shared.NewDomainError("LEAD_CLOSED", "Cannot assign a converted or lost lead")
	}
	l.AssignedTo = &preparerID
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// MarkContacted transitions the lead from new to contacted
func (l *Lead) MarkContacted() error {
	if l.Status != LeadStatusNew {
		return shared.NewDomainError("INVALID_TRANSITION", "Only new leads can be marked contacted")
	}
	now := time.Now()
	l.Status = LeadStatusContacted
	l.ContactedAt = &now
	l.UpdatedAt = now
	l.IncrementVersion()
	return nil
}

// Qualify transitions the lead from contacted to qualified
func (l *Lead) Qualify() error {
	if l.Status != LeadStatusContacted {
		return shared.NewDomainError("INVALID_TRANSITION", "Only contacted leads can be qualified")
	}
	l.Status = LeadStatusQualified
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

// Convert marks the lead converted and records the resulting user.
// Converting an already-converted lead with the same user is a no-op
// so that retried conversions stay idempotent.
func (l *Lead) Convert(userID uuid.UUID) error {
	if l.Status == LeadStatusConverted {
		if l.ConvertedUserID != nil && *l.ConvertedUserID == userID {
			return nil
		}
		return shared.NewDomainError("ALREADY_CONVERTED", "Lead is already converted to a different user")
	}
	if l.Status == LeadStatusLost {
		return shared.NewDomainError("INVALID_TRANSITION", "Cannot convert a lost lead")
	}

	now := time.Now()
	l.Status = LeadStatusConverted
	l.ConvertedUserID = &userID
	l.ConvertedAt = &now
	l.UpdatedAt = now
	l.IncrementVersion()

	l.AddDomainEvent(NewLeadConvertedEvent(l, userID))

	return nil
}

// MarkLost closes the lead without conversion
func (l *Lead) MarkLost(reason string) error {
	if !l.IsOpen() {
		return shared.NewDomainError("LEAD_CLOSED", "Lead is already closed")
	}
	l.Status = LeadStatusLost
	l.LostReason = reason
	l.UpdatedAt = time.Now()
	l.IncrementVersion()
	return nil
}

func validateSource(source LeadSource) error {
	switch source {
	case LeadSourceWebForm, LeadSourceReferral, LeadSourcePhone, LeadSourceWalkIn, LeadSourceImport:
		return nil
	default:
		return shared.NewDomainError("INVALID_SOURCE", "Invalid lead source")
	}
}
