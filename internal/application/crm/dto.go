package crm

import (
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/crm"
)

// CreateContactInput contains the input for contact creation
type CreateContactInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Notes     string
	Tags      string
	OwnerID   *uuid.UUID
}

// UpdateContactInput contains the input for a contact update
type UpdateContactInput struct {
	ContactID uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	Notes     string
}

// ContactInfo is the outward representation of a contact
type ContactInfo struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Company   string
	UserID    *uuid.UUID
	Notes     string
	Tags      string
	OwnerID   *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func newContactInfo(c *crm.Contact) *ContactInfo {
	return &ContactInfo{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		UserID:    c.UserID,
		Notes:     c.Notes,
		Tags:      c.Tags,
		OwnerID:   c.GetCreatedBy(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ListContactsInput contains filter parameters for contact listing
type ListContactsInput struct {
	OwnerID  *uuid.UUID
	Search   string
	Page     int
	PageSize int
}

// LogInteractionInput records a touchpoint with a contact
type LogInteractionInput struct {
	ContactID  uuid.UUID
	Kind       crm.InteractionKind
	Summary    string
	Detail     string
	OccurredAt time.Time
	LoggedBy   *uuid.UUID
}

// InteractionInfo is the outward representation of an interaction
type InteractionInfo struct {
	ID         uuid.UUID
	ContactID  uuid.UUID
	Kind       crm.InteractionKind
	Summary    string
	Detail     string
	OccurredAt time.Time
	LoggedBy   *uuid.UUID
}

func newInteractionInfo(i *crm.Interaction) InteractionInfo {
	return InteractionInfo{
		ID:         i.ID,
		ContactID:  i.ContactID,
		Kind:       i.Kind,
		Summary:    i.Summary,
		Detail:     i.Detail,
		OccurredAt: i.OccurredAt,
		LoggedBy:   i.LoggedBy,
	}
}

// CreateTaskInput contains the input for task creation
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    crm.TaskPriority
	ContactID   *uuid.UUID
	AssigneeID  *uuid.UUID
	DueAt       *time.Time
	CreatedBy   *uuid.UUID
}

// UpdateTaskInput contains the input for a task update
type UpdateTaskInput struct {
	TaskID      uuid.UUID
	Title       string
	Description string
	Priority    crm.TaskPriority
	DueAt       *time.Time
}

// TaskInfo is the outward representation of a task
type TaskInfo struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      crm.TaskStatus
	Priority    crm.TaskPriority
	ContactID   *uuid.UUID
	AssigneeID  *uuid.UUID
	DueAt       *time.Time
	CompletedAt *time.Time
	Overdue     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func newTaskInfo(t *crm.Task) *TaskInfo {
	return &TaskInfo{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		ContactID:   t.ContactID,
		AssigneeID:  t.AssigneeID,
		DueAt:       t.DueAt,
		CompletedAt: t.CompletedAt,
		Overdue:     t.IsOverdue(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ListTasksInput contains filter parameters for task listing
type ListTasksInput struct {
	Status      crm.TaskStatus
	AssigneeID  *uuid.UUID
	OverdueOnly bool
	Page        int
	PageSize    int
}
