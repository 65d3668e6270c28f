package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	identityapp "github.com/taxpilot/backend/internal/application/identity"
	"github.com/taxpilot/backend/internal/domain/identity"
)

// UserHandler handles admin account management
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes mounts the user management endpoints
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.POST("", h.Create)
	users.GET("", h.List)
	users.GET("/:id", h.Get)
	users.DELETE("/:id", h.Delete)
	users.POST("/:id/activate", h.Activate)
	users.POST("/:id/deactivate", h.Deactivate)
	users.POST("/:id/suspend", h.Suspend)
	users.PUT("/:id/tracking-code", h.AssignTrackingCode)
	users.PUT("/:id/commission-rate", h.SetCommissionRate)
}

// CreateUserRequest is the request body for admin account creation
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"max=30"`
	Role      string `json:"role" binding:"required,oneof=client preparer affiliate admin"`
}

// AssignTrackingCodeRequest sets a referrer's tracking code
type AssignTrackingCodeRequest struct {
	// Code is the short code embedded in referral links. Empty
	// generates a random one.
	Code string `json:"code" binding:"omitempty,min=4,max=16"`
}

// SetCommissionRateRequest sets a referrer's commission rate
type SetCommissionRateRequest struct {
	Rate decimal.Decimal `json:"rate" binding:"required"`
}

// Create creates an account with any role
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.userService.CreateUser(c.Request.Context(), identityapp.CreateUserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      identity.UserRole(req.Role),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, newUserResponse(*info))
}

// List lists accounts with optional role and search filters
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)

	result, err := h.userService.ListUsers(c.Request.Context(), identityapp.ListUsersInput{
		Role:     identity.UserRole(c.Query("role")),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	users := make([]UserResponse, 0, len(result.Items))
	for _, u := range result.Items {
		users = append(users, newUserResponse(u))
	}
	h.SuccessWithMeta(c, users, paginatedMeta(result))
}

// Get returns one account
func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newUserResponse(*info))
}

// Delete removes an account
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Activate re-enables a deactivated account
func (h *UserHandler) Activate(c *gin.Context) {
	h.transition(c, h.userService.ActivateUser)
}

// Deactivate disables an account without deleting it
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.userService.DeactivateUser)
}

// Suspend locks an account pending review
func (h *UserHandler) Suspend(c *gin.Context) {
	h.transition(c, h.userService.SuspendUser)
}

// AssignTrackingCode sets or generates a referrer's tracking code
func (h *UserHandler) AssignTrackingCode(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req AssignTrackingCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.userService.AssignTrackingCode(c.Request.Context(), id, req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newUserResponse(*info))
}

// SetCommissionRate sets a referrer's commission rate
func (h *UserHandler) SetCommissionRate(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req SetCommissionRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.userService.SetCommissionRate(c.Request.Context(), identityapp.SetCommissionRateInput{
		UserID: id,
		Rate:   req.Rate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newUserResponse(*info))
}

func (h *UserHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) error) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := fn(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
