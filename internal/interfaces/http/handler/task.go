package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	crmapp "github.com/taxpilot/backend/internal/application/crm"
	"github.com/taxpilot/backend/internal/domain/crm"
	"github.com/taxpilot/backend/internal/interfaces/http/middleware"
)

// TaskHandler handles the follow-up task queue
type TaskHandler struct {
	BaseHandler
	taskService *crmapp.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *crmapp.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// RegisterRoutes mounts the task endpoints
func (h *TaskHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tasks := rg.Group("/tasks")
	tasks.POST("", h.Create)
	tasks.GET("", h.List)
	tasks.GET("/:id", h.Get)
	tasks.PUT("/:id", h.Update)
	tasks.DELETE("/:id", h.Delete)
	tasks.POST("/:id/assign", h.Assign)
	tasks.POST("/:id/start", h.Start)
	tasks.POST("/:id/complete", h.Complete)
	tasks.POST("/:id/cancel", h.Cancel)
}

// CreateTaskRequest is the request body for task creation
type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
	ContactID   *uuid.UUID `json:"contact_id"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
	DueAt       *time.Time `json:"due_at"`
}

// UpdateTaskRequest is the request body for a task update
type UpdateTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
	DueAt       *time.Time `json:"due_at"`
}

// AssignTaskRequest routes a task to an assignee
type AssignTaskRequest struct {
	AssigneeID uuid.UUID `json:"assignee_id" binding:"required"`
}

// TaskResponse is the outward representation of a task
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	ContactID   *uuid.UUID `json:"contact_id,omitempty"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Overdue     bool       `json:"overdue"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newTaskResponse(t crmapp.TaskInfo) TaskResponse {
	return TaskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		ContactID:   t.ContactID,
		AssigneeID:  t.AssigneeID,
		DueAt:       t.DueAt,
		CompletedAt: t.CompletedAt,
		Overdue:     t.Overdue,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// Create creates a task
func (h *TaskHandler) Create(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	input := crmapp.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    crm.TaskPriority(req.Priority),
		ContactID:   req.ContactID,
		AssigneeID:  req.AssigneeID,
		DueAt:       req.DueAt,
	}
	if userID := middleware.GetJWTUserID(c); userID != uuid.Nil {
		input.CreatedBy = &userID
	}

	info, err := h.taskService.CreateTask(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newTaskResponse(*info))
}

// List lists tasks with optional status, assignee and overdue filters
func (h *TaskHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	input := crmapp.ListTasksInput{
		Status:      crm.TaskStatus(c.Query("status")),
		OverdueOnly: c.Query("overdue") == "true",
		Page:        page,
		PageSize:    pageSize,
	}
	if v := c.Query("assignee_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid assignee_id parameter")
			return
		}
		input.AssigneeID = &id
	}

	result, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	tasks := make([]TaskResponse, 0, len(result.Items))
	for _, t := range result.Items {
		tasks = append(tasks, newTaskResponse(t))
	}
	h.SuccessWithMeta(c, tasks, paginatedMeta(result))
}

// Get returns one task
func (h *TaskHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newTaskResponse(*info))
}

// Update rewrites a task's details
func (h *TaskHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.taskService.UpdateTask(c.Request.Context(), crmapp.UpdateTaskInput{
		TaskID:      id,
		Title:       req.Title,
		Description: req.Description,
		Priority:    crm.TaskPriority(req.Priority),
		DueAt:       req.DueAt,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newTaskResponse(*info))
}

// Delete removes a task
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Assign routes a task to an assignee
func (h *TaskHandler) Assign(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.taskService.AssignTask(c.Request.Context(), id, req.AssigneeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newTaskResponse(*info))
}

// Start moves a task to in_progress
func (h *TaskHandler) Start(c *gin.Context) {
	h.mutate(c, h.taskService.StartTask)
}

// Complete closes a task as done
func (h *TaskHandler) Complete(c *gin.Context) {
	h.mutate(c, h.taskService.CompleteTask)
}

// Cancel closes a task without completion
func (h *TaskHandler) Cancel(c *gin.Context) {
	h.mutate(c, h.taskService.CancelTask)
}

func (h *TaskHandler) mutate(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*crmapp.TaskInfo, error)) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newTaskResponse(*info))
}
