package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	taxapp "github.com/taxpilot/backend/internal/application/tax"
	"github.com/taxpilot/backend/internal/interfaces/http/middleware"
)

// AppointmentHandler handles preparer meeting slots
type AppointmentHandler struct {
	BaseHandler
	appointmentService *taxapp.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler
func NewAppointmentHandler(appointmentService *taxapp.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// RegisterRoutes mounts the appointment endpoints
func (h *AppointmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	appts := rg.Group("/appointments")
	appts.POST("", h.Book)
	appts.GET("", h.List)
	appts.GET("/:id", h.Get)
	appts.PUT("/:id", h.Reschedule)
	appts.POST("/:id/complete", h.Complete)
	appts.POST("/:id/cancel", h.Cancel)
	appts.POST("/:id/no-show", h.MarkNoShow)
}

// Book schedules a meeting in a free slot
func (h *AppointmentHandler) Book(c *gin.Context) {
	var input taxapp.BookAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.appointmentService.Book(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// List lists appointments for a client or preparer, soonest first.
// Without an explicit filter it lists the caller's own.
func (h *AppointmentHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)
	ctx := c.Request.Context()

	if v := c.Query("preparer_id"); v != "" {
		preparerID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid preparer_id parameter")
			return
		}
		result, err := h.appointmentService.ListByPreparer(ctx, preparerID, page, pageSize)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.SuccessWithMeta(c, result.Items, paginatedMeta(result))
		return
	}

	clientID := middleware.GetJWTUserID(c)
	if v := c.Query("client_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid client_id parameter")
			return
		}
		clientID = id
	}

	result, err := h.appointmentService.ListByClient(ctx, clientID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, paginatedMeta(result))
}

// Get returns one appointment
func (h *AppointmentHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := h.appointmentService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Reschedule moves an appointment to a new slot
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var input taxapp.RescheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	input.AppointmentID = id

	info, err := h.appointmentService.Reschedule(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Complete marks a held appointment complete
func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.mutate(c, h.appointmentService.Complete)
}

// Cancel cancels a scheduled appointment
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.mutate(c, h.appointmentService.Cancel)
}

// MarkNoShow records that the client did not attend
func (h *AppointmentHandler) MarkNoShow(c *gin.Context) {
	h.mutate(c, h.appointmentService.MarkNoShow)
}

func (h *AppointmentHandler) mutate(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*taxapp.AppointmentInfo, error)) {
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

	h.Success(c, info)
}
