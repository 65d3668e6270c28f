package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/taxpilot/backend/internal/domain/shipping"
	"github.com/taxpilot/backend/internal/infrastructure/config"
)

const upsShopRatesPath = "/api/rating/v1/shop"

// upsServiceNames maps UPS numeric service codes to display names
var upsServiceNames = map[string]string{
	"01": "UPS Next Day Air",
	"02": "UPS 2nd Day Air",
	"03": "UPS Ground",
	"12": "UPS 3 Day Select",
	"65": "UPS Worldwide Saver",
}

// UPSAdapter implements shipping.Carrier for the UPS rating API
type UPSAdapter struct {
	config config.CarrierAPIConfig
	client Doer
}

// NewUPSAdapter creates a new UPS adapter
func NewUPSAdapter(cfg config.CarrierAPIConfig, client Doer) (*UPSAdapter, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: ups: %v", ErrInvalidConfig, err)
	}
	return &UPSAdapter{config: cfg, client: client}, nil
}

// Name returns the carrier identifier
func (a *UPSAdapter) Name() string {
	return "ups"
}

type upsRateRequest struct {
	RateRequest struct {
		Shipment struct {
			ShipTo struct {
				Address struct {
					PostalCode  string `json:"PostalCode"`
					CountryCode string `json:"CountryCode"`
				} `json:"Address"`
			} `json:"ShipTo"`
			Package struct {
				PackageWeight struct {
					UnitOfMeasurement struct {
						Code string `json:"Code"`
					} `json:"UnitOfMeasurement"`
					Weight string `json:"Weight"`
				} `json:"PackageWeight"`
			} `json:"Package"`
		} `json:"Shipment"`
	} `json:"RateRequest"`
}

// UPS quotes monetary values and day counts as strings
type upsRateResponse struct {
	RateResponse struct {
		RatedShipment []struct {
			Service struct {
				Code string `json:"Code"`
			} `json:"Service"`
			TotalCharges struct {
				CurrencyCode  string `json:"CurrencyCode"`
				MonetaryValue string `json:"MonetaryValue"`
			} `json:"TotalCharges"`
			GuaranteedDelivery struct {
				BusinessDaysInTransit string `json:"BusinessDaysInTransit"`
			} `json:"GuaranteedDelivery"`
		} `json:"RatedShipment"`
	} `json:"RateResponse"`
}

type upsErrorResponse struct {
	Response struct {
		Errors []struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"response"`
}

// GetRates shops all UPS service levels for the parcel
func (a *UPSAdapter) GetRates(ctx context.Context, req shipping.RateRequest) ([]shipping.RateQuote, error) {
	body := upsRateRequest{}
	shipment := &body.RateRequest.Shipment
	shipment.ShipTo.Address.PostalCode = req.PostalCode
	shipment.ShipTo.Address.CountryCode = req.CountryCode
	shipment.Package.PackageWeight.UnitOfMeasurement.Code = "KGS"
	shipment.Package.PackageWeight.Weight = strconv.FormatFloat(req.WeightKg, 'f', 2, 64)

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ups: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, upsShopRatesPath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var rateResp upsRateResponse
	if err := json.Unmarshal(respBody, &rateResp); err != nil {
		return nil, fmt.Errorf("ups: failed to parse response: %w", err)
	}

	quotes := make([]shipping.RateQuote, 0, len(rateResp.RateResponse.RatedShipment))
	for _, rated := range rateResp.RateResponse.RatedShipment {
		amount, err := decimal.NewFromString(rated.TotalCharges.MonetaryValue)
		if err != nil {
			// One malformed entry should not sink the rest
			continue
		}

		days := 0
		if rated.GuaranteedDelivery.BusinessDaysInTransit != "" {
			days, _ = strconv.Atoi(rated.GuaranteedDelivery.BusinessDaysInTransit)
		}

		name := upsServiceNames[rated.Service.Code]
		if name == "" {
			name = "UPS Service " + rated.Service.Code
		}

		quotes = append(quotes, shipping.RateQuote{
			Carrier:      a.Name(),
			ServiceCode:  rated.Service.Code,
			ServiceName:  name,
			Amount:       amount,
			Currency:     rated.TotalCharges.CurrencyCode,
			DeliveryDays: days,
		})
	}

	return quotes, nil
}

func (a *UPSAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ups: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ups: %v", ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ups: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp upsErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && len(errResp.Response.Errors) > 0 {
			return nil, fmt.Errorf("%w: ups: %s - %s", ErrCarrierRequest,
				errResp.Response.Errors[0].Code, errResp.Response.Errors[0].Message)
		}
		return nil, fmt.Errorf("%w: ups: status %d", ErrCarrierRequest, resp.StatusCode)
	}

	return respBody, nil
}

var _ shipping.Carrier = (*UPSAdapter)(nil)
