package shipping

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/shipping"
)

type MockCarrier struct {
	mock.Mock
	name string
}

func (m *MockCarrier) Name() string {
	return m.name
}

func (m *MockCarrier) GetRates(ctx context.Context, req shipping.RateRequest) ([]shipping.RateQuote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.RateQuote), args.Error(1)
}

type MockRateCache struct {
	mock.Mock
}

func (m *MockRateCache) Get(ctx context.Context, req shipping.RateRequest) ([]shipping.RateQuote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.RateQuote), args.Error(1)
}

func (m *MockRateCache) Set(ctx context.Context, req shipping.RateRequest, quotes []shipping.RateQuote) error {
	args := m.Called(ctx, req, quotes)
	return args.Error(0)
}

func (m *MockRateCache) Invalidate(ctx context.Context, req shipping.RateRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func quoteFor(carrier, serviceCode, amount string) shipping.RateQuote {
	return shipping.RateQuote{
		Carrier:      carrier,
		ServiceCode:  serviceCode,
		ServiceName:  serviceCode,
		Amount:       decimal.RequireFromString(amount),
		Currency:     "USD",
		DeliveryDays: 3,
	}
}

func testRequest() shipping.RateRequest {
	return shipping.RateRequest{PostalCode: "97201", CountryCode: "US", WeightKg: 2.5}
}

func TestRateService_GetRates_SortedAcrossCarriers(t *testing.T) {
	fedex := &MockCarrier{name: "fedex"}
	ups := &MockCarrier{name: "ups"}
	req := testRequest()

	fedex.On("GetRates", mock.Anything, req).Return([]shipping.RateQuote{
		quoteFor("fedex", "FEDEX_GROUND", "14.80"),
		quoteFor("fedex", "FEDEX_2DAY", "31.25"),
	}, nil)
	ups.On("GetRates", mock.Anything, req).Return([]shipping.RateQuote{
		quoteFor("ups", "UPS_GROUND", "13.10"),
	}, nil)

	service := NewRateService([]shipping.Carrier{fedex, ups}, nil, zap.NewNop())
	quotes, err := service.GetRates(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, quotes, 3)
	assert.Equal(t, "UPS_GROUND", quotes[0].ServiceCode)
	assert.Equal(t, "FEDEX_GROUND", quotes[1].ServiceCode)
	assert.Equal(t, "FEDEX_2DAY", quotes[2].ServiceCode)
}

func TestRateService_GetRates_PartialFailureTolerated(t *testing.T) {
	fedex := &MockCarrier{name: "fedex"}
	ups := &MockCarrier{name: "ups"}
	req := testRequest()

	fedex.On("GetRates", mock.Anything, req).Return(nil, assert.AnError)
	ups.On("GetRates", mock.Anything, req).Return([]shipping.RateQuote{
		quoteFor("ups", "UPS_GROUND", "13.10"),
	}, nil)

	service := NewRateService([]shipping.Carrier{fedex, ups}, nil, zap.NewNop())
	quotes, err := service.GetRates(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "ups", quotes[0].Carrier)
}

func TestRateService_GetRates_AllCarriersFailed(t *testing.T) {
	fedex := &MockCarrier{name: "fedex"}
	ups := &MockCarrier{name: "ups"}
	req := testRequest()

	fedex.On("GetRates", mock.Anything, req).Return(nil, assert.AnError)
	ups.On("GetRates", mock.Anything, req).Return(nil, assert.AnError)

	service := NewRateService([]shipping.Carrier{fedex, ups}, nil, zap.NewNop())
	_, err := service.GetRates(context.Background(), req)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALL_CARRIERS_FAILED", domainErr.Code)
}

func TestRateService_GetRates_CacheHitSkipsCarriers(t *testing.T) {
	fedex := &MockCarrier{name: "fedex"}
	rateCache := new(MockRateCache)
	req := testRequest()
	cached := []shipping.RateQuote{quoteFor("fedex", "FEDEX_GROUND", "14.80")}

	rateCache.On("Get", mock.Anything, req).Return(cached, nil)

	service := NewRateService([]shipping.Carrier{fedex}, rateCache, zap.NewNop())
	quotes, err := service.GetRates(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, cached, quotes)
	fedex.AssertNotCalled(t, "GetRates", mock.Anything, mock.Anything)
}

func TestRateService_GetRates_MissPopulatesCache(t *testing.T) {
	fedex := &MockCarrier{name: "fedex"}
	rateCache := new(MockRateCache)
	req := testRequest()
	fresh := []shipping.RateQuote{quoteFor("fedex", "FEDEX_GROUND", "14.80")}

	rateCache.On("Get", mock.Anything, req).Return(nil, nil)
	fedex.On("GetRates", mock.Anything, req).Return(fresh, nil)
	rateCache.On("Set", mock.Anything, req, fresh).Return(nil)

	service := NewRateService([]shipping.Carrier{fedex}, rateCache, zap.NewNop())
	quotes, err := service.GetRates(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, fresh, quotes)
	rateCache.AssertExpectations(t)
}

func TestRateService_GetRates_ServiceAllowList(t *testing.T) {
	fedex := &MockCarrier{name: "fedex"}
	req := testRequest()

	fedex.On("GetRates", mock.Anything, req).Return([]shipping.RateQuote{
		quoteFor("fedex", "FEDEX_GROUND", "14.80"),
		quoteFor("fedex", "FEDEX_FIRST_OVERNIGHT", "89.00"),
	}, nil)

	service := NewRateService([]shipping.Carrier{fedex}, nil, zap.NewNop(),
		WithAllowedServices([]string{"FEDEX_GROUND"}))
	quotes, err := service.GetRates(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "FEDEX_GROUND", quotes[0].ServiceCode)
}

func TestRateService_GetRates_InvalidRequest(t *testing.T) {
	service := NewRateService([]shipping.Carrier{&MockCarrier{name: "fedex"}}, nil, zap.NewNop())

	_, err := service.GetRates(context.Background(), shipping.RateRequest{
		PostalCode: "97201", CountryCode: "USA", WeightKg: 2,
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_DESTINATION", domainErr.Code)
}

func TestRateService_GetRates_CarrierTimeoutBounds(t *testing.T) {
	slow := &MockCarrier{name: "slow"}
	req := testRequest()

	slow.On("GetRates", mock.Anything, req).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		<-ctx.Done()
	}).Return(nil, context.DeadlineExceeded)

	service := NewRateService([]shipping.Carrier{slow}, nil, zap.NewNop(),
		WithCarrierTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := service.GetRates(context.Background(), req)

	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
