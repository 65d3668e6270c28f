package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	taxapp "github.com/taxpilot/backend/internal/application/tax"
	"github.com/taxpilot/backend/internal/interfaces/http/middleware"
)

// DocumentHandler handles tax document intake. Files never pass
// through this API: clients receive presigned URLs and talk to object
// storage directly.
type DocumentHandler struct {
	BaseHandler
	documentService *taxapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *taxapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// RegisterRoutes mounts the document endpoints
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	docs.POST("/uploads", h.RequestUpload)
	docs.GET("", h.List)
	docs.GET("/:id", h.Get)
	docs.GET("/:id/download", h.Download)
	docs.POST("/:id/confirm", h.ConfirmUpload)
	docs.POST("/:id/verify", h.Verify)
	docs.POST("/:id/reject", h.Reject)
	docs.DELETE("/:id", h.Delete)
}

// RequestUpload registers a pending document and returns a presigned
// upload URL. The document belongs to the authenticated client.
func (h *DocumentHandler) RequestUpload(c *gin.Context) {
	var input taxapp.RequestUploadInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	input.ClientID = middleware.GetJWTUserID(c)

	ticket, err := h.documentService.RequestUpload(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, ticket)
}

// List lists documents for a client or a tax return. Without an
// explicit filter it lists the authenticated user's own documents.
func (h *DocumentHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c)
	ctx := c.Request.Context()

	if v := c.Query("tax_return_id"); v != "" {
		returnID, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid tax_return_id parameter")
			return
		}
		result, err := h.documentService.ListByReturn(ctx, returnID, page, pageSize)
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

	result, err := h.documentService.ListByClient(ctx, clientID, page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, paginatedMeta(result))
}

// Get returns one document's metadata
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := h.documentService.GetDocument(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Download returns a presigned download URL for an uploaded document
func (h *DocumentHandler) Download(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ticket, err := h.documentService.GetDownloadURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ticket)
}

// ConfirmUpload verifies the object landed in storage and marks the
// document uploaded
func (h *DocumentHandler) ConfirmUpload(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := h.documentService.ConfirmUpload(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Verify marks a document reviewed and accepted
func (h *DocumentHandler) Verify(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := h.documentService.VerifyDocument(c.Request.Context(), id, middleware.GetJWTUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// RejectDocumentRequest carries the reviewer's rejection note
type RejectDocumentRequest struct {
	Note string `json:"note" binding:"required,max=1000"`
}

// Reject refuses a document with a note telling the client what to fix
func (h *DocumentHandler) Reject(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req RejectDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.documentService.RejectDocument(c.Request.Context(), taxapp.RejectDocumentInput{
		DocumentID: id,
		ReviewerID: middleware.GetJWTUserID(c),
		Note:       req.Note,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Delete removes a document and its stored object
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
