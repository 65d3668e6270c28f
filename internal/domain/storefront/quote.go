package storefront

import (
	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// MaxBrokerDiscount caps broker discounts at 50%
var MaxBrokerDiscount = decimal.NewFromFloat(0.5)

// QuoteRequest captures the options a quote is priced against
type QuoteRequest struct {
	ProductSlug    string
	Quantity       int
	PaperCode      string
	TurnaroundCode string
	AddOnCodes     []string
	BrokerDiscount decimal.Decimal
}

// Validate checks the request's standalone constraints
func (r QuoteRequest) Validate() error {
	if r.ProductSlug == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Product slug is required")
	}
	if r.Quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if r.PaperCode == "" || r.TurnaroundCode == "" {
		return shared.NewDomainError("INVALID_OPTIONS", "Paper and turnaround are required")
	}
	if r.BrokerDiscount.IsNegative() || r.BrokerDiscount.GreaterThan(MaxBrokerDiscount) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Broker discount must be between 0 and 0.5")
	}
	return nil
}

// AddOnCharge is one priced extra on a quote
type AddOnCharge struct {
	Code   string          `json:"code"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Quote is the fully priced result. All money values are rounded to
// cents; the unit price keeps four decimal places so large quantities
// do not accumulate rounding drift.
type Quote struct {
	ProductSlug    string          `json:"product_slug"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	AddOns         []AddOnCharge   `json:"add_ons"`
	AddOnTotal     decimal.Decimal `json:"add_on_total"`
	DiscountRate   decimal.Decimal `json:"discount_rate"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	BusinessDays   int             `json:"business_days"`
}
