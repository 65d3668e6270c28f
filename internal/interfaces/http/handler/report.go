package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	reportapp "github.com/taxpilot/backend/internal/application/report"
	"github.com/taxpilot/backend/internal/domain/report"
)

// ReportHandler exposes the daily operational snapshots
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RegisterRoutes mounts the report endpoints
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	reports.GET("/daily", h.DailyRange)
}

// DailyRangeResponse wraps the snapshots for a date range
type DailyRangeResponse struct {
	From      string                  `json:"from"`
	To        string                  `json:"to"`
	Snapshots []*report.DailySnapshot `json:"snapshots"`
}

// DailyRange returns the daily snapshots between from and to
// (inclusive), both formatted YYYY-MM-DD. Defaults to the last 30 days.
func (h *ReportHandler) DailyRange(c *gin.Context) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		to = parsed
	}

	snapshots, err := h.reportService.GetRange(c.Request.Context(), from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, DailyRangeResponse{
		From:      from.Format("2006-01-02"),
		To:        to.Format("2006-01-02"),
		Snapshots: snapshots,
	})
}
