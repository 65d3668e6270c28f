package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/infrastructure/config"
)

// MeterProvider wraps the OpenTelemetry MeterProvider with lifecycle management.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
	config   config.TelemetryConfig
}

// NewMeterProvider creates and configures a new MeterProvider.
// If telemetry is disabled, the global no-op meter is used.
func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{
		logger: logger,
		config: cfg,
	}

	if !cfg.Enabled {
		logger.Info("metrics disabled, using no-op meter provider")
		return mp, nil
	}

	exporterOpts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint),
	}
	if cfg.Insecure {
		exporterOpts = append(exporterOpts, otlpmetricgrpc.WithInsecure())
	}

	exporter, err := otlpmetricgrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(60*time.Second)),
		),
	)

	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName),
	)

	return mp, nil
}

// Shutdown gracefully shuts down the meter provider, flushing pending metrics.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := mp.provider.Shutdown(shutdownCtx); err != nil {
		mp.logger.Error("error shutting down meter provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// BusinessMetrics holds the counters the application layer records
type BusinessMetrics struct {
	leadsCaptured      metric.Int64Counter
	leadsConverted     metric.Int64Counter
	attributionsLocked metric.Int64Counter
	quotesPriced       metric.Int64Counter
	rateLookups        metric.Int64Counter
}

// NewBusinessMetrics registers the application counters on the global meter
func NewBusinessMetrics() (*BusinessMetrics, error) {
	meter := otel.Meter("taxpilot")

	leadsCaptured, err := meter.Int64Counter("leads_captured_total",
		metric.WithDescription("Leads captured through the public endpoint"))
	if err != nil {
		return nil, err
	}

	leadsConverted, err := meter.Int64Counter("leads_converted_total",
		metric.WithDescription("Leads converted into client accounts"))
	if err != nil {
		return nil, err
	}

	attributionsLocked, err := meter.Int64Counter("attributions_locked_total",
		metric.WithDescription("First-touch attribution records locked"))
	if err != nil {
		return nil, err
	}

	quotesPriced, err := meter.Int64Counter("print_quotes_priced_total",
		metric.WithDescription("Print storefront quotes priced"))
	if err != nil {
		return nil, err
	}

	rateLookups, err := meter.Int64Counter("shipping_rate_lookups_total",
		metric.WithDescription("Shipping rate lookups, labeled by cache outcome"))
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		leadsCaptured:      leadsCaptured,
		leadsConverted:     leadsConverted,
		attributionsLocked: attributionsLocked,
		quotesPriced:       quotesPriced,
		rateLookups:        rateLookups,
	}, nil
}

// Record methods tolerate a nil receiver so services can skip metrics
// wiring in tests.

func (m *BusinessMetrics) RecordLeadCaptured(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.leadsCaptured.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

func (m *BusinessMetrics) RecordLeadConverted(ctx context.Context) {
	if m == nil {
		return
	}
	m.leadsConverted.Add(ctx, 1)
}

func (m *BusinessMetrics) RecordAttributionLocked(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.attributionsLocked.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

func (m *BusinessMetrics) RecordQuotePriced(ctx context.Context, productSlug string) {
	if m == nil {
		return
	}
	m.quotesPriced.Add(ctx, 1, metric.WithAttributes(attribute.String("product", productSlug)))
}

func (m *BusinessMetrics) RecordRateLookup(ctx context.Context, cacheHit bool) {
	if m == nil {
		return
	}
	m.rateLookups.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cache_hit", cacheHit)))
}
