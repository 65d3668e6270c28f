package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/shipping"
	"github.com/taxpilot/backend/internal/infrastructure/config"
)

const uspsRateSearchPath = "/prices/v3/total-rates/search"

// USPSAdapter implements shipping.Carrier for the USPS pricing API.
// USPS only ships domestically, so non-US destinations return no quotes.
type USPSAdapter struct {
	config config.CarrierAPIConfig
	client Doer
}

// NewUSPSAdapter creates a new USPS adapter
func NewUSPSAdapter(cfg config.CarrierAPIConfig, client Doer) (*USPSAdapter, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: usps: %v", ErrInvalidConfig, err)
	}
	return &USPSAdapter{config: cfg, client: client}, nil
}

// Name returns the carrier identifier
func (a *USPSAdapter) Name() string {
	return "usps"
}

type uspsRateRequest struct {
	DestinationZIPCode string  `json:"destinationZIPCode"`
	Weight             float64 `json:"weight"`
	WeightUOM          string  `json:"weightUOM"`
}

type uspsRateResponse struct {
	Rates []struct {
		MailClass   string  `json:"mailClass"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		TransitDays int     `json:"serviceStandardDays"`
	} `json:"rates"`
}

type uspsErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GetRates prices every mail class for the parcel
func (a *USPSAdapter) GetRates(ctx context.Context, req shipping.RateRequest) ([]shipping.RateQuote, error) {
	if req.CountryCode != "US" {
		return nil, nil
	}

	body := uspsRateRequest{
		DestinationZIPCode: req.PostalCode,
		Weight:             req.WeightKg,
		WeightUOM:          "kg",
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("usps: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, uspsRateSearchPath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var rateResp uspsRateResponse
	if err := json.Unmarshal(respBody, &rateResp); err != nil {
		return nil, fmt.Errorf("usps: failed to parse response: %w", err)
	}

	quotes := make([]shipping.RateQuote, 0, len(rateResp.Rates))
	for _, rate := range rateResp.Rates {
		quotes = append(quotes, shipping.RateQuote{
			Carrier:      a.Name(),
			ServiceCode:  rate.MailClass,
			ServiceName:  rate.Description,
			Amount:       decimal.NewFromFloat(rate.Price),
			Currency:     "USD",
			DeliveryDays: rate.TransitDays,
		})
	}

	return quotes, nil
}

func (a *USPSAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("usps: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: usps: %v", ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("usps: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp uspsErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return nil, fmt.Errorf("%w: usps: %s - %s", ErrCarrierRequest,
				errResp.Error.Code, errResp.Error.Message)
		}
		return nil, fmt.Errorf("%w: usps: status %d", ErrCarrierRequest, resp.StatusCode)
	}

	return respBody, nil
}

var _ shipping.Carrier = (*USPSAdapter)(nil)
