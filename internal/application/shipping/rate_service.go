package shipping

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/shipping"
	"github.com/taxpilot/backend/internal/infrastructure/cache"
	"github.com/taxpilot/backend/internal/infrastructure/telemetry"
)

const defaultCarrierTimeout = 5 * time.Second

// RateService aggregates shipping quotes across carriers. Carriers are
// queried concurrently, each bounded by its own timeout; one failing
// carrier degrades the result instead of failing the request. Results
// are cached by destination and rounded weight.
type RateService struct {
	carriers        []shipping.Carrier
	rateCache       cache.RateCache
	carrierTimeout  time.Duration
	allowedServices map[string]bool // empty = all services pass
	metrics         *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// RateServiceOption is a functional option for configuring the service
type RateServiceOption func(*RateService)

// WithCarrierTimeout bounds each carrier call
func WithCarrierTimeout(timeout time.Duration) RateServiceOption {
	return func(s *RateService) {
		if timeout > 0 {
			s.carrierTimeout = timeout
		}
	}
}

// WithAllowedServices restricts results to the given service codes
func WithAllowedServices(codes []string) RateServiceOption {
	return func(s *RateService) {
		for _, code := range codes {
			s.allowedServices[code] = true
		}
	}
}

// WithMetrics wires business metrics recording
func WithMetrics(metrics *telemetry.BusinessMetrics) RateServiceOption {
	return func(s *RateService) {
		s.metrics = metrics
	}
}

// NewRateService creates a rate aggregation service
func NewRateService(carriers []shipping.Carrier, rateCache cache.RateCache, logger *zap.Logger, opts ...RateServiceOption) *RateService {
	if rateCache == nil {
		rateCache = cache.NoopRateCache{}
	}
	service := &RateService{
		carriers:        carriers,
		rateCache:       rateCache,
		carrierTimeout:  defaultCarrierTimeout,
		allowedServices: make(map[string]bool),
		logger:          logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type carrierResult struct {
	carrier string
	quotes  []shipping.RateQuote
	err     error
}

// GetRates returns all available quotes for a parcel, cheapest first.
// It errors only when the request is invalid or every carrier failed.
func (s *RateService) GetRates(ctx context.Context, req shipping.RateRequest) ([]shipping.RateQuote, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(s.carriers) == 0 {
		return nil, shared.NewDomainError("NO_CARRIERS", "No carriers are configured")
	}

	if cached, err := s.rateCache.Get(ctx, req); err == nil && cached != nil {
		s.metrics.RecordRateLookup(ctx, true)
		return cached, nil
	} else if err != nil {
		s.logger.Warn("Rate cache read failed", zap.Error(err))
	}

	results := make(chan carrierResult, len(s.carriers))
	var wg sync.WaitGroup
	for _, c := range s.carriers {
		wg.Add(1)
		go func(c shipping.Carrier) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, s.carrierTimeout)
			defer cancel()
			quotes, err := c.GetRates(callCtx, req)
			results <- carrierResult{carrier: c.Name(), quotes: quotes, err: err}
		}(c)
	}
	wg.Wait()
	close(results)

	var quotes []shipping.RateQuote
	failures := 0
	for r := range results {
		if r.err != nil {
			failures++
			s.logger.Warn("Carrier quote failed",
				zap.String("carrier", r.carrier),
				zap.Error(r.err))
			continue
		}
		quotes = append(quotes, s.filterServices(r.quotes)...)
	}
	if failures == len(s.carriers) {
		return nil, shared.NewDomainError("ALL_CARRIERS_FAILED", "No carrier could quote this parcel")
	}

	sort.Slice(quotes, func(i, j int) bool {
		return quotes[i].Amount.LessThan(quotes[j].Amount)
	})

	s.metrics.RecordRateLookup(ctx, false)
	if err := s.rateCache.Set(ctx, req, quotes); err != nil {
		s.logger.Warn("Rate cache write failed", zap.Error(err))
	}

	s.logger.Info("Rates aggregated",
		zap.String("postal_code", req.PostalCode),
		zap.Int("quotes", len(quotes)),
		zap.Int("failed_carriers", failures))

	return quotes, nil
}

func (s *RateService) filterServices(quotes []shipping.RateQuote) []shipping.RateQuote {
	if len(s.allowedServices) == 0 {
		return quotes
	}
	filtered := quotes[:0:0]
	for _, q := range quotes {
		if s.allowedServices[q.ServiceCode] {
			filtered = append(filtered, q)
		}
	}
	return filtered
}
