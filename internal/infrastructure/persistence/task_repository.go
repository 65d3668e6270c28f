package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/taxpilot/backend/internal/domain/crm"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/infrastructure/persistence/models"
)

// GormTaskRepository implements crm.TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// Save creates or updates a task
func (r *GormTaskRepository) Save(ctx context.Context, task *crm.Task) error {
	model := models.TaskModelFromDomain(task)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByID finds a task by its ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Task, error) {
	var model models.TaskModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all tasks matching the filter
func (r *GormTaskRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*crm.Task], error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Model(&models.TaskModel{}), filter)
}

// FindByAssignee finds tasks assigned to a user
func (r *GormTaskRepository) FindByAssignee(ctx context.Context, assigneeID uuid.UUID, filter shared.Filter) (*shared.Paginated[*crm.Task], error) {
	query := r.db.WithContext(ctx).Model(&models.TaskModel{}).Where("assignee_id = ?", assigneeID)
	return r.findPage(ctx, query, filter)
}

// FindByStatus finds tasks in the given state
func (r *GormTaskRepository) FindByStatus(ctx context.Context, status crm.TaskStatus, filter shared.Filter) (*shared.Paginated[*crm.Task], error) {
	query := r.db.WithContext(ctx).Model(&models.TaskModel{}).Where("status = ?", status)
	return r.findPage(ctx, query, filter)
}

// FindOverdue finds open or in-progress tasks past their due date
func (r *GormTaskRepository) FindOverdue(ctx context.Context, filter shared.Filter) (*shared.Paginated[*crm.Task], error) {
	query := r.db.WithContext(ctx).
		Model(&models.TaskModel{}).
		Where("status IN ? AND due_at IS NOT NULL AND due_at < ?",
			[]crm.TaskStatus{crm.TaskStatusOpen, crm.TaskStatusInProgress}, time.Now())
	return r.findPage(ctx, query, filter)
}

// Delete deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TaskModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormTaskRepository) findPage(ctx context.Context, query *gorm.DB, filter shared.Filter) (*shared.Paginated[*crm.Task], error) {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if priority, ok := filter.Filters["priority"]; ok {
		query = query.Where("priority = ?", priority)
	}
	if contactID, ok := filter.Filters["contact_id"]; ok {
		query = query.Where("contact_id = ?", contactID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var taskModels []models.TaskModel
	query = applySort(query, filter, TaskSortFields, "created_at")
	if err := applyPagination(query, filter).Find(&taskModels).Error; err != nil {
		return nil, err
	}

	tasks := make([]*crm.Task, len(taskModels))
	for i := range taskModels {
		tasks[i] = taskModels[i].ToDomain()
	}

	page, pageSize := normalizedPage(filter)
	result := shared.NewPaginated(tasks, total, page, pageSize)
	return &result, nil
}
