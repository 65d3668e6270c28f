package shipping

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/shared"
)

// MaxParcelWeightKg is the heaviest parcel any carrier will take
const MaxParcelWeightKg = 70.0

// RateRequest describes a parcel and destination to price
type RateRequest struct {
	PostalCode  string  `json:"postal_code"`
	CountryCode string  `json:"country_code"`
	WeightKg    float64 `json:"weight_kg"`
}

// Normalize uppercases codes and trims whitespace
func (r RateRequest) Normalize() RateRequest {
	r.PostalCode = strings.ToUpper(strings.TrimSpace(r.PostalCode))
	r.CountryCode = strings.ToUpper(strings.TrimSpace(r.CountryCode))
	return r
}

// Validate checks the request before fan-out
func (r RateRequest) Validate() error {
	if r.PostalCode == "" {
		return shared.NewDomainError("INVALID_DESTINATION", "Postal code is required")
	}
	if len(r.CountryCode) != 2 {
		return shared.NewDomainError("INVALID_DESTINATION", "Country code must be two letters")
	}
	if r.WeightKg <= 0 || r.WeightKg > MaxParcelWeightKg {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight must be between 0 and 70 kg")
	}
	return nil
}

// RateQuote is a single shipping option from one carrier
type RateQuote struct {
	Carrier      string          `json:"carrier"`
	ServiceCode  string          `json:"service_code"`
	ServiceName  string          `json:"service_name"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	DeliveryDays int             `json:"delivery_days"`
}

// Carrier is the port each shipping provider adapter implements.
// GetRates returns every service level the carrier offers for the
// parcel, or an error when the carrier cannot quote it at all.
type Carrier interface {
	Name() string
	GetRates(ctx context.Context, req RateRequest) ([]RateQuote, error)
}
