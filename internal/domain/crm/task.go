package crm

import (
	"time"

	"github.com/google/uuid"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "open"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority orders tasks in a preparer's queue
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityNormal TaskPriority = "normal"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Task is the aggregate root for follow-up work items, optionally
// pinned to a contact.
type Task struct {
	shared.OwnedAggregateRoot
	Title       string       `gorm:"type:varchar(200);not null"`
	Description string       `gorm:"type:text"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'open'"`
	Priority    TaskPriority `gorm:"type:varchar(10);not null;default:'normal'"`
	ContactID   *uuid.UUID   `gorm:"type:uuid;index"`
	AssigneeID  *uuid.UUID   `gorm:"type:uuid;index"`
	DueAt       *time.Time   `gorm:"index"`
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (Task) TableName() string {
	return "tasks"
}

// NewTask creates a new open task
func NewTask(title, description string, priority TaskPriority, dueAt *time.Time) (*Task, error) {
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Task title is required")
	}
	if priority == "" {
		priority = TaskPriorityNormal
	}
	if err := validatePriority(priority); err != nil {
		return nil, err
	}

	return &Task{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(),
		Title:              title,
		Description:        description,
		Status:             TaskStatusOpen,
		Priority:           priority,
		DueAt:              dueAt,
	}, nil
}

// IsClosed returns true once the task has reached a terminal state
func (t *Task) IsClosed() bool {
	return t.Status == TaskStatusDone || t.Status == TaskStatusCancelled
}

// IsOverdue returns true when an open task is past its due date
func (t *Task) IsOverdue() bool {
	return !t.IsClosed() && t.DueAt != nil && t.DueAt.Before(time.Now())
}

// Update replaces the task's editable fields
func (t *Task) Update(title, description string, priority TaskPriority, dueAt *time.Time) error {
	if t.IsClosed() {
		return shared.NewDomainError("TASK_CLOSED", "Cannot edit a closed task")
	}
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Task title is required")
	}
	if err := validatePriority(priority); err != nil {
		return err
	}

	t.Title = title
	t.Description = description
	t.Priority = priority
	t.DueAt = dueAt
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// AttachContact pins the task to a contact
func (t *Task) AttachContact(contactID uuid.UUID) error {
	if t.IsClosed() {
		return shared.NewDomainError("TASK_CLOSED", "Cannot edit a closed task")
	}
	t.ContactID = &contactID
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Assign assigns the task to a user
func (t *Task) Assign(assigneeID uuid.UUID) error {
	if t.IsClosed() {
		return shared.NewDomainError("TASK_CLOSED", "Cannot assign a closed task")
	}
	t.AssigneeID = &assigneeID
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Start transitions the task from open to in progress
func (t *Task) Start() error {
	if t.Status != TaskStatusOpen {
		return shared.NewDomainError("INVALID_TRANSITION", "Only open tasks can be started")
	}
	t.Status = TaskStatusInProgress
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Complete finishes the task from open or in progress
func (t *Task) Complete() error {
	if t.IsClosed() {
		return shared.NewDomainError("INVALID_TRANSITION", "Task is already closed")
	}
	now := time.Now()
	t.Status = TaskStatusDone
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()
	return nil
}

// Cancel abandons the task from any non-terminal state
func (t *Task) Cancel() error {
	if t.IsClosed() {
		return shared.NewDomainError("INVALID_TRANSITION", "Task is already closed")
	}
	t.Status = TaskStatusCancelled
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

func validatePriority(p TaskPriority) error {
	switch p {
	case TaskPriorityLow, TaskPriorityNormal, TaskPriorityHigh, TaskPriorityUrgent:
		return nil
	default:
		return shared.NewDomainError("INVALID_PRIORITY", "Invalid task priority")
	}
}
