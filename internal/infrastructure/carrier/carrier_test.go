package carrier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxpilot/backend/internal/domain/shipping"
	"github.com/taxpilot/backend/internal/infrastructure/config"
)

func testRequest() shipping.RateRequest {
	return shipping.RateRequest{
		PostalCode:  "94103",
		CountryCode: "US",
		WeightKg:    2.5,
	}
}

func TestFedExAdapter_GetRates(t *testing.T) {
	t.Run("maps rate reply details", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, fedexRateQuotePath, r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{
				"output": {
					"rateReplyDetails": [
						{
							"serviceType": "FEDEX_GROUND",
							"serviceName": "FedEx Ground",
							"ratedShipmentDetails": [{"totalNetCharge": 12.45, "currency": "USD"}],
							"commit": {"transitDays": 3}
						},
						{
							"serviceType": "PRIORITY_OVERNIGHT",
							"serviceName": "FedEx Priority Overnight",
							"ratedShipmentDetails": [{"totalNetCharge": 48.9, "currency": "USD"}],
							"commit": {"transitDays": 1}
						}
					]
				}
			}`))
		}))
		defer srv.Close()

		adapter, err := NewFedExAdapter(config.CarrierAPIConfig{
			BaseURL: srv.URL,
			APIKey:  "test-key",
		}, srv.Client())
		require.NoError(t, err)

		quotes, err := adapter.GetRates(context.Background(), testRequest())

		require.NoError(t, err)
		require.Len(t, quotes, 2)
		assert.Equal(t, "fedex", quotes[0].Carrier)
		assert.Equal(t, "FEDEX_GROUND", quotes[0].ServiceCode)
		assert.Equal(t, "12.45", quotes[0].Amount.StringFixed(2))
		assert.Equal(t, 3, quotes[0].DeliveryDays)
		assert.Equal(t, 1, quotes[1].DeliveryDays)
	})

	t.Run("surfaces API error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":[{"code":"RATE.DESTINATION.INVALID","message":"bad destination"}]}`))
		}))
		defer srv.Close()

		adapter, err := NewFedExAdapter(config.CarrierAPIConfig{
			BaseURL: srv.URL,
			APIKey:  "test-key",
		}, srv.Client())
		require.NoError(t, err)

		_, err = adapter.GetRates(context.Background(), testRequest())
		assert.ErrorIs(t, err, ErrCarrierRequest)
		assert.Contains(t, err.Error(), "RATE.DESTINATION.INVALID")
	})

	t.Run("rejects missing config", func(t *testing.T) {
		_, err := NewFedExAdapter(config.CarrierAPIConfig{}, http.DefaultClient)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestUPSAdapter_GetRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, upsShopRatesPath, r.URL.Path)
		_, _ = w.Write([]byte(`{
			"RateResponse": {
				"RatedShipment": [
					{
						"Service": {"Code": "03"},
						"TotalCharges": {"CurrencyCode": "USD", "MonetaryValue": "11.20"},
						"GuaranteedDelivery": {"BusinessDaysInTransit": "4"}
					},
					{
						"Service": {"Code": "99"},
						"TotalCharges": {"CurrencyCode": "USD", "MonetaryValue": "not-a-number"}
					}
				]
			}
		}`))
	}))
	defer srv.Close()

	adapter, err := NewUPSAdapter(config.CarrierAPIConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
	}, srv.Client())
	require.NoError(t, err)

	quotes, err := adapter.GetRates(context.Background(), testRequest())

	require.NoError(t, err)
	// Malformed monetary value is skipped rather than failing the call
	require.Len(t, quotes, 1)
	assert.Equal(t, "ups", quotes[0].Carrier)
	assert.Equal(t, "UPS Ground", quotes[0].ServiceName)
	assert.Equal(t, "11.20", quotes[0].Amount.StringFixed(2))
	assert.Equal(t, 4, quotes[0].DeliveryDays)
}

func TestUSPSAdapter_GetRates(t *testing.T) {
	t.Run("skips non-US destinations", func(t *testing.T) {
		adapter, err := NewUSPSAdapter(config.CarrierAPIConfig{
			BaseURL: "http://localhost",
			APIKey:  "test-key",
		}, http.DefaultClient)
		require.NoError(t, err)

		req := testRequest()
		req.CountryCode = "CA"

		quotes, err := adapter.GetRates(context.Background(), req)
		assert.NoError(t, err)
		assert.Empty(t, quotes)
	})

	t.Run("maps mail classes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{
				"rates": [
					{"mailClass": "USPS_GROUND_ADVANTAGE", "description": "USPS Ground Advantage", "price": 8.15, "serviceStandardDays": 5}
				]
			}`))
		}))
		defer srv.Close()

		adapter, err := NewUSPSAdapter(config.CarrierAPIConfig{
			BaseURL: srv.URL,
			APIKey:  "test-key",
		}, srv.Client())
		require.NoError(t, err)

		quotes, err := adapter.GetRates(context.Background(), testRequest())

		require.NoError(t, err)
		require.Len(t, quotes, 1)
		assert.Equal(t, "USPS_GROUND_ADVANTAGE", quotes[0].ServiceCode)
		assert.Equal(t, "USD", quotes[0].Currency)
	})
}
