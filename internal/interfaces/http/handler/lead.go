package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	leadapp "github.com/taxpilot/backend/internal/application/lead"
	"github.com/taxpilot/backend/internal/domain/lead"
)

// LeadHandler handles the inquiry pipeline. Capture is public; every
// other operation is staff-only and gated by middleware supplied at
// registration time.
type LeadHandler struct {
	BaseHandler
	leadService *leadapp.LeadService
	staffOnly   []gin.HandlerFunc
}

// NewLeadHandler creates a new LeadHandler. staffOnly middleware is
// applied to everything except the public capture endpoint.
func NewLeadHandler(leadService *leadapp.LeadService, staffOnly ...gin.HandlerFunc) *LeadHandler {
	return &LeadHandler{leadService: leadService, staffOnly: staffOnly}
}

// RegisterRoutes mounts the lead endpoints
func (h *LeadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	leads := rg.Group("/leads")
	leads.POST("", h.Capture)

	staff := leads.Group("")
	staff.Use(h.staffOnly...)
	staff.GET("", h.List)
	staff.GET("/funnel", h.Funnel)
	staff.GET("/:id", h.Get)
	staff.POST("/:id/assign", h.Assign)
	staff.POST("/:id/contact", h.MarkContacted)
	staff.POST("/:id/qualify", h.Qualify)
	staff.POST("/:id/lose", h.MarkLost)
	staff.POST("/:id/convert", h.Convert)
}

// CaptureLeadRequest is the public inquiry form payload
type CaptureLeadRequest struct {
	FirstName    string `json:"first_name" binding:"required,max=100"`
	LastName     string `json:"last_name" binding:"required,max=100"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"max=30"`
	Source       string `json:"source" binding:"omitempty,oneof=web_form referral phone walk_in import"`
	Message      string `json:"message" binding:"max=2000"`
	TrackingCode string `json:"tracking_code" binding:"max=16"`
}

// AssignLeadRequest assigns a lead to a preparer
type AssignLeadRequest struct {
	PreparerID uuid.UUID `json:"preparer_id" binding:"required"`
}

// MarkLostRequest closes a lead without conversion
type MarkLostRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ConvertLeadRequest converts a qualified lead into a client account
type ConvertLeadRequest struct {
	// Password for the new account; empty generates a one-time password
	Password string `json:"password" binding:"omitempty,min=8,max=128"`
}

// LeadResponse is the outward representation of a lead
type LeadResponse struct {
	ID              string     `json:"id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone,omitempty"`
	Source          string     `json:"source"`
	Status          string     `json:"status"`
	Message         string     `json:"message,omitempty"`
	AssignedTo      *uuid.UUID `json:"assigned_to,omitempty"`
	ConvertedUserID *uuid.UUID `json:"converted_user_id,omitempty"`
	ContactedAt     *time.Time `json:"contacted_at,omitempty"`
	ConvertedAt     *time.Time `json:"converted_at,omitempty"`
	LostReason      string     `json:"lost_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ConvertLeadResponse reports a conversion outcome
type ConvertLeadResponse struct {
	Lead             LeadResponse `json:"lead"`
	UserID           string       `json:"user_id"`
	AlreadyConverted bool         `json:"already_converted"`
}

// FunnelResponse is the pipeline broken out by status
type FunnelResponse struct {
	New       int64 `json:"new"`
	Contacted int64 `json:"contacted"`
	Qualified int64 `json:"qualified"`
	Converted int64 `json:"converted"`
	Lost      int64 `json:"lost"`
}

func newLeadResponse(l leadapp.LeadInfo) LeadResponse {
	return LeadResponse{
		ID:              l.ID.String(),
		FirstName:       l.FirstName,
		LastName:        l.LastName,
		Email:           l.Email,
		Phone:           l.Phone,
		Source:          string(l.Source),
		Status:          string(l.Status),
		Message:         l.Message,
		AssignedTo:      l.AssignedTo,
		ConvertedUserID: l.ConvertedUserID,
		ContactedAt:     l.ContactedAt,
		ConvertedAt:     l.ConvertedAt,
		LostReason:      l.LostReason,
		CreatedAt:       l.CreatedAt,
	}
}

// Capture records a public inquiry
func (h *LeadHandler) Capture(c *gin.Context) {
	var req CaptureLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.leadService.Capture(c.Request.Context(), leadapp.CaptureInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Source:       lead.LeadSource(req.Source),
		Message:      req.Message,
		TrackingCode: req.TrackingCode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newLeadResponse(*info))
}

// List lists leads with optional status, assignee and search filters
func (h *LeadHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	input := leadapp.ListInput{
		Status:   lead.LeadStatus(c.Query("status")),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}
	if v := c.Query("assigned_to"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid assigned_to parameter")
			return
		}
		input.AssignedTo = &id
	}

	result, err := h.leadService.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	leads := make([]LeadResponse, 0, len(result.Items))
	for _, l := range result.Items {
		leads = append(leads, newLeadResponse(l))
	}
	h.SuccessWithMeta(c, leads, paginatedMeta(result))
}

// Funnel returns pipeline counts by status
func (h *LeadHandler) Funnel(c *gin.Context) {
	counts, err := h.leadService.FunnelCounts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, FunnelResponse{
		New:       counts.New,
		Contacted: counts.Contacted,
		Qualified: counts.Qualified,
		Converted: counts.Converted,
		Lost:      counts.Lost,
	})
}

// Get returns one lead
func (h *LeadHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := h.leadService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newLeadResponse(*info))
}

// Assign routes a lead to a preparer
func (h *LeadHandler) Assign(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.leadService.Assign(c.Request.Context(), leadapp.AssignInput{
		LeadID:     id,
		PreparerID: req.PreparerID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newLeadResponse(*info))
}

// MarkContacted records the first outreach
func (h *LeadHandler) MarkContacted(c *gin.Context) {
	h.mutate(c, h.leadService.MarkContacted)
}

// Qualify promotes a contacted lead
func (h *LeadHandler) Qualify(c *gin.Context) {
	h.mutate(c, h.leadService.Qualify)
}

// MarkLost closes a lead without conversion
func (h *LeadHandler) MarkLost(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req MarkLostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.leadService.MarkLost(c.Request.Context(), leadapp.MarkLostInput{
		LeadID: id,
		Reason: req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newLeadResponse(*info))
}

// Convert turns a qualified lead into a client account. Converting an
// already-converted lead is idempotent.
func (h *LeadHandler) Convert(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req ConvertLeadRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	result, err := h.leadService.Convert(c.Request.Context(), leadapp.ConvertInput{
		LeadID:   id,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ConvertLeadResponse{
		Lead:             newLeadResponse(result.Lead),
		UserID:           result.UserID.String(),
		AlreadyConverted: result.AlreadyConverted,
	})
}

func (h *LeadHandler) mutate(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*leadapp.LeadInfo, error)) {
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

	h.Success(c, newLeadResponse(*info))
}
