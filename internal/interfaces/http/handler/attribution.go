package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	attributionapp "github.com/taxpilot/backend/internal/application/attribution"
	"github.com/taxpilot/backend/internal/interfaces/http/middleware"
)

// AttributionHandler exposes locked referral attributions. Staff can
// inspect any record; affiliates see only their own book.
type AttributionHandler struct {
	BaseHandler
	resolver *attributionapp.ResolverService
}

// NewAttributionHandler creates a new AttributionHandler
func NewAttributionHandler(resolver *attributionapp.ResolverService) *AttributionHandler {
	return &AttributionHandler{resolver: resolver}
}

// RegisterRoutes mounts the attribution endpoints
func (h *AttributionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	attr := rg.Group("/attributions")
	attr.GET("/subjects/:id", h.GetBySubject)
	attr.GET("/referrers/:id", h.ListByReferrer)
	attr.GET("/referrers/:id/stats", h.ReferrerStats)
	attr.GET("/mine", h.ListMine)
	attr.GET("/mine/stats", h.MyStats)
}

// AttributionResponse is the outward representation of a locked record
type AttributionResponse struct {
	ID             string          `json:"id"`
	SubjectID      string          `json:"subject_id"`
	ReferrerID     *uuid.UUID      `json:"referrer_id,omitempty"`
	TrackingCode   string          `json:"tracking_code,omitempty"`
	Method         string          `json:"method"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	LockedAt       time.Time       `json:"locked_at"`
}

// ReferrerStatsResponse summarizes a referrer's attributed subjects
type ReferrerStatsResponse struct {
	ReferrerID      string `json:"referrer_id"`
	TotalAttributed int64  `json:"total_attributed"`
}

func newAttributionResponse(r attributionapp.RecordInfo) AttributionResponse {
	return AttributionResponse{
		ID:             r.ID.String(),
		SubjectID:      r.SubjectID.String(),
		ReferrerID:     r.ReferrerID,
		TrackingCode:   r.TrackingCode,
		Method:         string(r.Method),
		CommissionRate: r.CommissionRate,
		LockedAt:       r.LockedAt,
	}
}

// GetBySubject returns the locked attribution for a subject
func (h *AttributionHandler) GetBySubject(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := h.resolver.GetBySubject(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, newAttributionResponse(*info))
}

// ListByReferrer lists a referrer's attributed subjects
func (h *AttributionHandler) ListByReferrer(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.listForReferrer(c, id)
}

// ReferrerStats summarizes a referrer's attributed subjects
func (h *AttributionHandler) ReferrerStats(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.statsForReferrer(c, id)
}

// ListMine lists the authenticated referrer's own attributions
func (h *AttributionHandler) ListMine(c *gin.Context) {
	h.listForReferrer(c, middleware.GetJWTUserID(c))
}

// MyStats summarizes the authenticated referrer's own attributions
func (h *AttributionHandler) MyStats(c *gin.Context) {
	h.statsForReferrer(c, middleware.GetJWTUserID(c))
}

func (h *AttributionHandler) listForReferrer(c *gin.Context, referrerID uuid.UUID) {
	page, pageSize := parsePagination(c)

	filter := sharedFilter(page, pageSize)
	result, err := h.resolver.ListByReferrer(c.Request.Context(), referrerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	records := make([]AttributionResponse, 0, len(result.Items))
	for _, r := range result.Items {
		records = append(records, newAttributionResponse(r))
	}
	h.SuccessWithMeta(c, records, paginatedMeta(result))
}

func (h *AttributionHandler) statsForReferrer(c *gin.Context, referrerID uuid.UUID) {
	stats, err := h.resolver.GetReferrerStats(c.Request.Context(), referrerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, ReferrerStatsResponse{
		ReferrerID:      stats.ReferrerID.String(),
		TotalAttributed: stats.TotalAttributed,
	})
}
