package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	taxapp "github.com/taxpilot/backend/internal/application/tax"
)

// TaxReturnHandler handles the tax return lifecycle
type TaxReturnHandler struct {
	BaseHandler
	returnService *taxapp.ReturnService
}

// NewTaxReturnHandler creates a new TaxReturnHandler
func NewTaxReturnHandler(returnService *taxapp.ReturnService) *TaxReturnHandler {
	return &TaxReturnHandler{returnService: returnService}
}

// RegisterRoutes mounts the tax return endpoints
func (h *TaxReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	returns := rg.Group("/returns")
	returns.POST("", h.Open)
	returns.GET("", h.List)
	returns.GET("/:id", h.Get)
	returns.POST("/:id/assign", h.AssignPreparer)
	returns.POST("/:id/review", h.StartReview)
	returns.POST("/:id/ready", h.MarkReady)
	returns.POST("/:id/file", h.File)
	returns.POST("/:id/accept", h.Accept)
	returns.POST("/:id/reject", h.Reject)
	returns.POST("/:id/reopen", h.Reopen)
}

// Open opens a return for a client and tax year
func (h *TaxReturnHandler) Open(c *gin.Context) {
	var input taxapp.OpenReturnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.returnService.OpenReturn(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// List lists returns filtered by client, preparer or status
func (h *TaxReturnHandler) List(c *gin.Context) {
	var input taxapp.ListReturnsInput
	if err := c.ShouldBindQuery(&input); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	input.Page, input.PageSize = parsePagination(c)

	result, err := h.returnService.ListReturns(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, paginatedMeta(result))
}

// Get returns one tax return
func (h *TaxReturnHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := h.returnService.GetReturn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// AssignPreparer assigns a preparer to a return
func (h *TaxReturnHandler) AssignPreparer(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var input taxapp.AssignPreparerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	input.ReturnID = id

	info, err := h.returnService.AssignPreparer(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// StartReview moves an intake return into review
func (h *TaxReturnHandler) StartReview(c *gin.Context) {
	h.mutate(c, h.returnService.StartReview)
}

// MarkReady marks a reviewed return ready to file
func (h *TaxReturnHandler) MarkReady(c *gin.Context) {
	h.mutate(c, h.returnService.MarkReady)
}

// File records the e-file submission
func (h *TaxReturnHandler) File(c *gin.Context) {
	h.mutate(c, h.returnService.FileReturn)
}

// Accept records IRS acceptance
func (h *TaxReturnHandler) Accept(c *gin.Context) {
	h.mutate(c, h.returnService.AcceptReturn)
}

// RejectReturnRequest records an IRS rejection reason
type RejectReturnRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// Reject records an IRS rejection
func (h *TaxReturnHandler) Reject(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req RejectReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.returnService.RejectReturn(c.Request.Context(), taxapp.RejectReturnInput{
		ReturnID: id,
		Reason:   req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Reopen puts a rejected return back into review
func (h *TaxReturnHandler) Reopen(c *gin.Context) {
	h.mutate(c, h.returnService.ReopenReview)
}

func (h *TaxReturnHandler) mutate(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*taxapp.ReturnInfo, error)) {
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
