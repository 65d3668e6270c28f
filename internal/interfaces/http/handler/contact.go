package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	crmapp "github.com/taxpilot/backend/internal/application/crm"
	"github.com/taxpilot/backend/internal/domain/crm"
	"github.com/taxpilot/backend/internal/interfaces/http/middleware"
)

// ContactHandler handles the CRM contact book and interaction log
type ContactHandler struct {
	BaseHandler
	contactService *crmapp.ContactService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService *crmapp.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// RegisterRoutes mounts the contact endpoints
func (h *ContactHandler) RegisterRoutes(rg *gin.RouterGroup) {
	contacts := rg.Group("/contacts")
	contacts.POST("", h.Create)
	contacts.GET("", h.List)
	contacts.GET("/:id", h.Get)
	contacts.PUT("/:id", h.Update)
	contacts.DELETE("/:id", h.Delete)
	contacts.POST("/:id/link-user", h.LinkUser)
	contacts.POST("/:id/interactions", h.LogInteraction)
	contacts.GET("/:id/timeline", h.Timeline)
}

// CreateContactRequest is the request body for contact creation
type CreateContactRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"max=30"`
	Company   string `json:"company" binding:"max=200"`
	Notes     string `json:"notes" binding:"max=2000"`
	Tags      string `json:"tags" binding:"max=500"`
}

// UpdateContactRequest is the request body for a contact update
type UpdateContactRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone" binding:"max=30"`
	Company   string `json:"company" binding:"max=200"`
	Notes     string `json:"notes" binding:"max=2000"`
}

// LinkUserRequest ties a contact to a platform account
type LinkUserRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// LogInteractionRequest records a touchpoint with a contact
type LogInteractionRequest struct {
	Kind       string    `json:"kind" binding:"required,oneof=call email meeting note"`
	Summary    string    `json:"summary" binding:"required,max=500"`
	Detail     string    `json:"detail" binding:"max=5000"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ContactResponse is the outward representation of a contact
type ContactResponse struct {
	ID        string     `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Company   string     `json:"company,omitempty"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Tags      string     `json:"tags,omitempty"`
	OwnerID   *uuid.UUID `json:"owner_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// InteractionResponse is one entry on a contact's timeline
type InteractionResponse struct {
	ID         string     `json:"id"`
	ContactID  string     `json:"contact_id"`
	Kind       string     `json:"kind"`
	Summary    string     `json:"summary"`
	Detail     string     `json:"detail,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
	LoggedBy   *uuid.UUID `json:"logged_by,omitempty"`
}

func newContactResponse(ci crmapp.ContactInfo) ContactResponse {
	return ContactResponse{
		ID:        ci.ID.String(),
		FirstName: ci.FirstName,
		LastName:  ci.LastName,
		Email:     ci.Email,
		Phone:     ci.Phone,
		Company:   ci.Company,
		UserID:    ci.UserID,
		Notes:     ci.Notes,
		Tags:      ci.Tags,
		OwnerID:   ci.OwnerID,
		CreatedAt: ci.CreatedAt,
		UpdatedAt: ci.UpdatedAt,
	}
}

func newInteractionResponse(ii crmapp.InteractionInfo) InteractionResponse {
	return InteractionResponse{
		ID:         ii.ID.String(),
		ContactID:  ii.ContactID.String(),
		Kind:       string(ii.Kind),
		Summary:    ii.Summary,
		Detail:     ii.Detail,
		OccurredAt: ii.OccurredAt,
		LoggedBy:   ii.LoggedBy,
	}
}

// Create creates a contact owned by the caller
func (h *ContactHandler) Create(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	input := crmapp.CreateContactInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Notes:     req.Notes,
		Tags:      req.Tags,
	}
	if userID := middleware.GetJWTUserID(c); userID != uuid.Nil {
		input.OwnerID = &userID
	}

	info, err := h.contactService.CreateContact(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newContactResponse(*info))
}

// List lists contacts with optional owner and search filters
func (h *ContactHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	input := crmapp.ListContactsInput{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	}
	if v := c.Query("owner_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid owner_id parameter")
			return
		}
		input.OwnerID = &id
	}

	result, err := h.contactService.ListContacts(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	contacts := make([]ContactResponse, 0, len(result.Items))
	for _, ci := range result.Items {
		contacts = append(contacts, newContactResponse(ci))
	}
	h.SuccessWithMeta(c, contacts, paginatedMeta(result))
}

// Get returns one contact
func (h *ContactHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := h.contactService.GetContact(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newContactResponse(*info))
}

// Update rewrites a contact's details
func (h *ContactHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.contactService.UpdateContact(c.Request.Context(), crmapp.UpdateContactInput{
		ContactID: id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Notes:     req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newContactResponse(*info))
}

// Delete removes a contact and its timeline
func (h *ContactHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.contactService.DeleteContact(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// LinkUser ties a contact to a platform account
func (h *ContactHandler) LinkUser(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req LinkUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.contactService.LinkUser(c.Request.Context(), id, req.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newContactResponse(*info))
}

// LogInteraction appends a touchpoint to a contact's timeline
func (h *ContactHandler) LogInteraction(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req LogInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	input := crmapp.LogInteractionInput{
		ContactID:  id,
		Kind:       crm.InteractionKind(req.Kind),
		Summary:    req.Summary,
		Detail:     req.Detail,
		OccurredAt: req.OccurredAt,
	}
	if userID := middleware.GetJWTUserID(c); userID != uuid.Nil {
		input.LoggedBy = &userID
	}

	info, err := h.contactService.LogInteraction(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newInteractionResponse(*info))
}

// Timeline returns a contact's interactions, newest first
func (h *ContactHandler) Timeline(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := parsePagination(c)
	result, err := h.contactService.GetTimeline(c.Request.Context(), id, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	timeline := make([]InteractionResponse, 0, len(result.Items))
	for _, ii := range result.Items {
		timeline = append(timeline, newInteractionResponse(ii))
	}
	h.SuccessWithMeta(c, timeline, paginatedMeta(result))
}
