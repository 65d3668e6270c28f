package handler

import (
	"github.com/gin-gonic/gin"

	shippingapp "github.com/taxpilot/backend/internal/application/shipping"
	"github.com/taxpilot/backend/internal/domain/shipping"
)

// ShippingHandler handles rate shopping across carriers
type ShippingHandler struct {
	BaseHandler
	rateService *shippingapp.RateService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(rateService *shippingapp.RateService) *ShippingHandler {
	return &ShippingHandler{rateService: rateService}
}

// RegisterRoutes mounts the shipping endpoints
func (h *ShippingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ship := rg.Group("/shipping")
	ship.POST("/rates", h.GetRates)
}

// RateRequestBody is the request body for a rate lookup
type RateRequestBody struct {
	PostalCode  string  `json:"postal_code" binding:"required,max=16"`
	CountryCode string  `json:"country_code" binding:"required,len=2"`
	WeightKg    float64 `json:"weight_kg" binding:"required,gt=0"`
}

// RatesResponse is the aggregated rate list, cheapest first
type RatesResponse struct {
	Rates []shipping.RateQuote `json:"rates"`
}

// GetRates fans the request out to every configured carrier and
// returns the surviving quotes sorted by price
func (h *ShippingHandler) GetRates(c *gin.Context) {
	var req RateRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	quotes, err := h.rateService.GetRates(c.Request.Context(), shipping.RateRequest{
		PostalCode:  req.PostalCode,
		CountryCode: req.CountryCode,
		WeightKg:    req.WeightKg,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RatesResponse{Rates: quotes})
}
