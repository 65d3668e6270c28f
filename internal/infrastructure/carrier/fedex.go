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

const fedexRateQuotePath = "/rate/v1/rates/quotes"

// FedExAdapter implements shipping.Carrier for the FedEx rating API
type FedExAdapter struct {
	config config.CarrierAPIConfig
	client Doer
}

// NewFedExAdapter creates a new FedEx adapter
func NewFedExAdapter(cfg config.CarrierAPIConfig, client Doer) (*FedExAdapter, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: fedex: %v", ErrInvalidConfig, err)
	}
	return &FedExAdapter{config: cfg, client: client}, nil
}

// Name returns the carrier identifier
func (a *FedExAdapter) Name() string {
	return "fedex"
}

// fedexRateRequest is the rating request body
type fedexRateRequest struct {
	AccountNumber string `json:"accountNumber,omitempty"`
	Recipient     struct {
		PostalCode  string `json:"postalCode"`
		CountryCode string `json:"countryCode"`
	} `json:"recipient"`
	Packages []fedexPackage `json:"requestedPackageLineItems"`
}

type fedexPackage struct {
	Weight struct {
		Units string  `json:"units"`
		Value float64 `json:"value"`
	} `json:"weight"`
}

// fedexRateResponse is the rating response body
type fedexRateResponse struct {
	Output struct {
		RateReplyDetails []struct {
			ServiceType          string `json:"serviceType"`
			ServiceName          string `json:"serviceName"`
			RatedShipmentDetails []struct {
				TotalNetCharge float64 `json:"totalNetCharge"`
				Currency       string  `json:"currency"`
			} `json:"ratedShipmentDetails"`
			Commit struct {
				TransitDays int `json:"transitDays"`
			} `json:"commit"`
		} `json:"rateReplyDetails"`
	} `json:"output"`
}

type fedexErrorResponse struct {
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// GetRates requests every service level FedEx offers for the parcel
func (a *FedExAdapter) GetRates(ctx context.Context, req shipping.RateRequest) ([]shipping.RateQuote, error) {
	body := fedexRateRequest{}
	body.Recipient.PostalCode = req.PostalCode
	body.Recipient.CountryCode = req.CountryCode
	pkg := fedexPackage{}
	pkg.Weight.Units = "KG"
	pkg.Weight.Value = req.WeightKg
	body.Packages = []fedexPackage{pkg}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("fedex: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, fedexRateQuotePath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var rateResp fedexRateResponse
	if err := json.Unmarshal(respBody, &rateResp); err != nil {
		return nil, fmt.Errorf("fedex: failed to parse response: %w", err)
	}

	quotes := make([]shipping.RateQuote, 0, len(rateResp.Output.RateReplyDetails))
	for _, detail := range rateResp.Output.RateReplyDetails {
		if len(detail.RatedShipmentDetails) == 0 {
			continue
		}
		rated := detail.RatedShipmentDetails[0]
		quotes = append(quotes, shipping.RateQuote{
			Carrier:      a.Name(),
			ServiceCode:  detail.ServiceType,
			ServiceName:  detail.ServiceName,
			Amount:       decimal.NewFromFloat(rated.TotalNetCharge),
			Currency:     rated.Currency,
			DeliveryDays: detail.Commit.TransitDays,
		})
	}

	return quotes, nil
}

func (a *FedExAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("fedex: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fedex: %v", ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fedex: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp fedexErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && len(errResp.Errors) > 0 {
			return nil, fmt.Errorf("%w: fedex: %s - %s", ErrCarrierRequest,
				errResp.Errors[0].Code, errResp.Errors[0].Message)
		}
		return nil, fmt.Errorf("%w: fedex: status %d", ErrCarrierRequest, resp.StatusCode)
	}

	return respBody, nil
}

var _ shipping.Carrier = (*FedExAdapter)(nil)
