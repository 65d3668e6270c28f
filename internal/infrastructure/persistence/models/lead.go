package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/lead"
)

// LeadModel is the persistence model for the Lead domain entity.
type LeadModel struct {
	OwnedAggregateModel
	FirstName       string          `gorm:"type:varchar(100);not null"`
	LastName        string          `gorm:"type:varchar(100)"`
	Email           string          `gorm:"type:varchar(200);not null;index"`
	Phone           string          `gorm:"type:varchar(50);index"`
	Source          lead.LeadSource `gorm:"type:varchar(20);not null;default:'web_form'"`
	Status          lead.LeadStatus `gorm:"type:varchar(20);not null;default:'new';index"`
	Message         string          `gorm:"type:text"`
	AssignedTo      *uuid.UUID      `gorm:"type:uuid;index"`
	ConvertedUserID *uuid.UUID      `gorm:"type:uuid;index"`
	ContactedAt     *time.Time
	ConvertedAt     *time.Time
	LostReason      string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (LeadModel) TableName() string {
	return "leads"
}

// ToDomain converts the persistence model to a domain Lead entity.
func (m *LeadModel) ToDomain() *lead.Lead {
	return &lead.Lead{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Email:              m.Email,
		Phone:              m.Phone,
		Source:             m.Source,
		Status:             m.Status,
		Message:            m.Message,
		AssignedTo:         m.AssignedTo,
		ConvertedUserID:    m.ConvertedUserID,
		ContactedAt:        m.ContactedAt,
		ConvertedAt:        m.ConvertedAt,
		LostReason:         m.LostReason,
	}
}

// FromDomain populates the persistence model from a domain Lead entity.
func (m *LeadModel) FromDomain(l *lead.Lead) {
	m.FromDomainOwnedAggregateRoot(l.OwnedAggregateRoot)
	m.FirstName = l.FirstName
	m.LastName = l.LastName
	m.Email = l.Email
	m.Phone = l.Phone
	m.Source = l.Source
	m.Status = l.Status
	m.Message = l.Message
	m.AssignedTo = l.AssignedTo
	m.ConvertedUserID = l.ConvertedUserID
	m.ContactedAt = l.ContactedAt
	m.ConvertedAt = l.ConvertedAt
	m.LostReason = l.LostReason
}

// LeadModelFromDomain creates a new persistence model from a domain Lead entity.
func LeadModelFromDomain(l *lead.Lead) *LeadModel {
	m := &LeadModel{}
	m.FromDomain(l)
	return m
}
