package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/crm"
)

// ContactModel is the persistence model for the Contact domain entity.
type ContactModel struct {
	OwnedAggregateModel
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
func (ContactModel) TableName() string {
	return "contacts"
}

// ToDomain converts the persistence model to a domain Contact entity.
func (m *ContactModel) ToDomain() *crm.Contact {
	return &crm.Contact{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Email:              m.Email,
		Phone:              m.Phone,
		Company:            m.Company,
		UserID:             m.UserID,
		Notes:              m.Notes,
		Tags:               m.Tags,
	}
}

// FromDomain populates the persistence model from a domain Contact entity.
func (m *ContactModel) FromDomain(c *crm.Contact) {
	m.FromDomainOwnedAggregateRoot(c.OwnedAggregateRoot)
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.Email = c.Email
	m.Phone = c.Phone
	m.Company = c.Company
	m.UserID = c.UserID
	m.Notes = c.Notes
	m.Tags = c.Tags
}

// ContactModelFromDomain creates a new persistence model from a domain Contact.
func ContactModelFromDomain(c *crm.Contact) *ContactModel {
	m := &ContactModel{}
	m.FromDomain(c)
	return m
}

// InteractionModel is the persistence model for interaction log entries.
type InteractionModel struct {
	BaseModel
	ContactID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	Kind       crm.InteractionKind `gorm:"type:varchar(10);not null"`
	Summary    string              `gorm:"type:varchar(500);not null"`
	Detail     string              `gorm:"type:text"`
	OccurredAt time.Time           `gorm:"not null;index"`
	LoggedBy   *uuid.UUID          `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (InteractionModel) TableName() string {
	return "interactions"
}

// ToDomain converts the persistence model to a domain Interaction entity.
func (m *InteractionModel) ToDomain() *crm.Interaction {
	return &crm.Interaction{
		BaseEntity: m.BaseModel.ToDomain(),
		ContactID:  m.ContactID,
		Kind:       m.Kind,
		Summary:    m.Summary,
		Detail:     m.Detail,
		OccurredAt: m.OccurredAt,
		LoggedBy:   m.LoggedBy,
	}
}

// FromDomain populates the persistence model from a domain Interaction entity.
func (m *InteractionModel) FromDomain(i *crm.Interaction) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.ContactID = i.ContactID
	m.Kind = i.Kind
	m.Summary = i.Summary
	m.Detail = i.Detail
	m.OccurredAt = i.OccurredAt
	m.LoggedBy = i.LoggedBy
}

// InteractionModelFromDomain creates a new persistence model from a domain Interaction.
func InteractionModelFromDomain(i *crm.Interaction) *InteractionModel {
	m := &InteractionModel{}
	m.FromDomain(i)
	return m
}

// TaskModel is the persistence model for the Task domain entity.
type TaskModel struct {
	OwnedAggregateModel
	Title       string           `gorm:"type:varchar(200);not null"`
	Description string           `gorm:"type:text"`
	Status      crm.TaskStatus   `gorm:"type:varchar(20);not null;default:'open';index"`
	Priority    crm.TaskPriority `gorm:"type:varchar(10);not null;default:'normal'"`
	ContactID   *uuid.UUID       `gorm:"type:uuid;index"`
	AssigneeID  *uuid.UUID       `gorm:"type:uuid;index"`
	DueAt       *time.Time       `gorm:"index"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (TaskModel) TableName() string {
	return "tasks"
}

// ToDomain converts the persistence model to a domain Task entity.
func (m *TaskModel) ToDomain() *crm.Task {
	return &crm.Task{
		OwnedAggregateRoot: m.ToDomainOwnedAggregateRoot(),
		Title:              m.Title,
		Description:        m.Description,
		Status:             m.Status,
		Priority:           m.Priority,
		ContactID:          m.ContactID,
		AssigneeID:         m.AssigneeID,
		DueAt:              m.DueAt,
		CompletedAt:        m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain Task entity.
func (m *TaskModel) FromDomain(t *crm.Task) {
	m.FromDomainOwnedAggregateRoot(t.OwnedAggregateRoot)
	m.Title = t.Title
	m.Description = t.Description
	m.Status = t.Status
	m.Priority = t.Priority
	m.ContactID = t.ContactID
	m.AssigneeID = t.AssigneeID
	m.DueAt = t.DueAt
	m.CompletedAt = t.CompletedAt
}

// TaskModelFromDomain creates a new persistence model from a domain Task.
func TaskModelFromDomain(t *crm.Task) *TaskModel {
	m := &TaskModel{}
	m.FromDomain(t)
	return m
}
