package crm

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

var contactEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Contact is the aggregate root for a person a preparer works with.
// A contact may be linked to a platform user account once the person
// signs up, but exists independently of one.
type Contact struct {
	shared.OwnedAggregateRoot
	FirstName string     `gorm:"type:varchar(100);not null"`
	LastName  string     `gorm:"type:varchar(100)"`
	Email     string     `gorm:"type:varchar(200);index"`
	Phone     string     `gorm:"type:varchar(50);index"`
	Company   string     `gorm:"type:varchar(200)"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	Notes     string     `gorm:"type:text"`
	Tags      string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// NewContact creates a new contact
func NewContact(firstName, lastName, email, phone string) (*Contact, error) {
	if firstName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Contact first name is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && !contactEmailRegex.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid contact email")
	}
	if email == "" && phone == "" {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Contact needs at least an email or a phone number")
	}

	return &Contact{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(),
		FirstName:          firstName,
		LastName:           lastName,
		Email:              email,
		Phone:              phone,
	}, nil
}

// FullName returns the contact's display name
func (c *Contact) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Update replaces the contact's mutable fields
func (c *Contact) Update(firstName, lastName, email, phone, company, notes string) error {
	if firstName == "" {
		return shared.NewDomainError("INVALID_NAME", "Contact first name is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && !contactEmailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid contact email")
	}
	if email == "" && phone == "" {
		return shared.NewDomainError("INVALID_CONTACT", "Contact needs at least an email or a phone number")
	}

	c.FirstName = firstName
	c.LastName = lastName
	c.Email = email
	c.Phone = phone
	c.Company = company
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// LinkUser associates the contact with a platform account
func (c *Contact) LinkUser(userID uuid.UUID) error {
	if c.UserID != nil && *c.UserID != userID {
		return shared.NewDomainError("ALREADY_LINKED", "Contact is already linked to another account")
	}
	c.UserID = &userID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}
