// Package carrier contains the shipping provider adapters. Each adapter
// speaks one carrier's JSON API and maps its responses onto the domain's
// RateQuote. All outbound calls go through the shared rate-limited client.
package carrier

import (
	"errors"
	"net/http"

	"github.com/taxpilot/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrCarrierUnavailable = errors.New("carrier unavailable")
	ErrCarrierRequest     = errors.New("carrier request failed")
	ErrInvalidConfig      = errors.New("invalid carrier config")
)

// Doer abstracts the HTTP client so adapters can share the rate-limited
// outbound client and tests can inject a stub transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

func validateConfig(cfg config.CarrierAPIConfig) error {
	if cfg.BaseURL == "" {
		return errors.New("carrier base_url is required")
	}
	if cfg.APIKey == "" {
		return errors.New("carrier api_key is required")
	}
	return nil
}
