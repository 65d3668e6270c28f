package crm

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/crm"
	"github.com/taxpilot/backend/internal/domain/shared"
)

// TaskService manages follow-up tasks
type TaskService struct {
	taskRepo    crm.TaskRepository
	contactRepo crm.ContactRepository
	logger      *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo crm.TaskRepository, contactRepo crm.ContactRepository, logger *zap.Logger) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		contactRepo: contactRepo,
		logger:      logger,
	}
}

// CreateTask creates a new task, optionally pinned to a contact
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*TaskInfo, error) {
	task, err := crm.NewTask(input.Title, input.Description, input.Priority, input.DueAt)
	if err != nil {
		return nil, err
	}

	if input.ContactID != nil {
		if _, err := s.contactRepo.FindByID(ctx, *input.ContactID); err != nil {
			return nil, shared.NewDomainError("CONTACT_NOT_FOUND", "Contact not found")
		}
		if err := task.AttachContact(*input.ContactID); err != nil {
			return nil, err
		}
	}
	if input.AssigneeID != nil {
		if err := task.Assign(*input.AssigneeID); err != nil {
			return nil, err
		}
	}
	if input.CreatedBy != nil {
		task.SetCreatedBy(*input.CreatedBy)
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		s.logger.Error("Failed to save task", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create task")
	}

	s.logger.Info("Task created", zap.String("task_id", task.ID.String()))
	return newTaskInfo(task), nil
}

// GetTask retrieves a task by ID
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*TaskInfo, error) {
	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return newTaskInfo(task), nil
}

// UpdateTask updates a task's editable fields
func (s *TaskService) UpdateTask(ctx context.Context, input UpdateTaskInput) (*TaskInfo, error) {
	return s.mutate(ctx, input.TaskID, func(t *crm.Task) error {
		return t.Update(input.Title, input.Description, input.Priority, input.DueAt)
	})
}

// AssignTask hands a task to an assignee
func (s *TaskService) AssignTask(ctx context.Context, taskID, assigneeID uuid.UUID) (*TaskInfo, error) {
	return s.mutate(ctx, taskID, func(t *crm.Task) error { return t.Assign(assigneeID) })
}

// StartTask moves an open task to in progress
func (s *TaskService) StartTask(ctx context.Context, id uuid.UUID) (*TaskInfo, error) {
	return s.mutate(ctx, id, func(t *crm.Task) error { return t.Start() })
}

// CompleteTask closes a task as done
func (s *TaskService) CompleteTask(ctx context.Context, id uuid.UUID) (*TaskInfo, error) {
	return s.mutate(ctx, id, func(t *crm.Task) error { return t.Complete() })
}

// CancelTask closes a task without completion
func (s *TaskService) CancelTask(ctx context.Context, id uuid.UUID) (*TaskInfo, error) {
	return s.mutate(ctx, id, func(t *crm.Task) error { return t.Cancel() })
}

// DeleteTask removes a task
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := s.taskRepo.Delete(ctx, id); err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("TASK_NOT_FOUND", "Task not found")
		}
		s.logger.Error("Failed to delete task", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete task")
	}
	return nil
}

// ListTasks returns a filtered page of tasks
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) (*shared.Paginated[TaskInfo], error) {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}

	var (
		page *shared.Paginated[*crm.Task]
		err  error
	)
	switch {
	case input.OverdueOnly:
		page, err = s.taskRepo.FindOverdue(ctx, filter)
	case input.AssigneeID != nil:
		page, err = s.taskRepo.FindByAssignee(ctx, *input.AssigneeID, filter)
	case input.Status != "":
		page, err = s.taskRepo.FindByStatus(ctx, input.Status, filter)
	default:
		page, err = s.taskRepo.FindAll(ctx, filter)
	}
	if err != nil {
		s.logger.Error("Failed to list tasks", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list tasks")
	}

	items := make([]TaskInfo, 0, len(page.Items))
	for _, t := range page.Items {
		items = append(items, *newTaskInfo(t))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

func (s *TaskService) findTask(ctx context.Context, id uuid.UUID) (*crm.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("TASK_NOT_FOUND", "Task not found")
		}
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load task")
	}
	return task, nil
}

func (s *TaskService) mutate(ctx context.Context, id uuid.UUID, fn func(*crm.Task) error) (*TaskInfo, error) {
	task, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(task); err != nil {
		return nil, err
	}
	if err := s.taskRepo.Save(ctx, task); err != nil {
		s.logger.Error("Failed to save task", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update task")
	}
	return newTaskInfo(task), nil
}
