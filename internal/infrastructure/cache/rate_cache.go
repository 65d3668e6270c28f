package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/shipping"
)

const defaultRateTTL = 10 * time.Minute

// RateCache caches aggregated shipping quotes for a destination+weight key
type RateCache interface {
	Get(ctx context.Context, req shipping.RateRequest) ([]shipping.RateQuote, error)
	Set(ctx context.Context, req shipping.RateRequest, quotes []shipping.RateQuote) error
	Invalidate(ctx context.Context, req shipping.RateRequest) error
}

// RedisRateCache implements RateCache using Redis
type RedisRateCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// RedisRateCacheOption is a functional option for configuring the cache
type RedisRateCacheOption func(*RedisRateCache)

// WithRateTTL sets the cache entry TTL
func WithRateTTL(ttl time.Duration) RedisRateCacheOption {
	return func(c *RedisRateCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRateCacheLogger sets the logger for the cache
func WithRateCacheLogger(logger *zap.Logger) RedisRateCacheOption {
	return func(c *RedisRateCache) {
		c.logger = logger
	}
}

// NewRedisRateCache creates a rate cache on an existing Redis client.
// The caller retains ownership of the client.
func NewRedisRateCache(client *redis.Client, opts ...RedisRateCacheOption) *RedisRateCache {
	cache := &RedisRateCache{
		client: client,
		ttl:    defaultRateTTL,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// rateCacheKey builds the cache key from the normalized request.
// Weight is rounded to a tenth of a kilogram so nearby weights share
// an entry instead of fragmenting the cache.
func (c *RedisRateCache) rateCacheKey(req shipping.RateRequest) string {
	return fmt.Sprintf("shipping:rates:%s:%s:%.1f", req.CountryCode, req.PostalCode, req.WeightKg)
}

// Get retrieves cached quotes. A miss returns (nil, nil).
func (c *RedisRateCache) Get(ctx context.Context, req shipping.RateRequest) ([]shipping.RateQuote, error) {
	key := c.rateCacheKey(req)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		c.logger.Debug("rate cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rates from cache: %w", err)
	}

	var quotes []shipping.RateQuote
	if err := json.Unmarshal(data, &quotes); err != nil {
		c.logger.Error("failed to unmarshal cached rates",
			zap.String("key", key),
			zap.Error(err))
		// Drop the corrupted entry so the next lookup refills it
		_ = c.client.Del(ctx, key)
		return nil, fmt.Errorf("failed to unmarshal cached rates: %w", err)
	}

	c.logger.Debug("rate cache hit", zap.String("key", key), zap.Int("quotes", len(quotes)))
	return quotes, nil
}

// Set stores quotes under the request's key with the configured TTL
func (c *RedisRateCache) Set(ctx context.Context, req shipping.RateRequest, quotes []shipping.RateQuote) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("failed to marshal rates: %w", err)
	}

	if err := c.client.Set(ctx, c.rateCacheKey(req), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rates: %w", err)
	}
	return nil
}

// Invalidate removes the cached quotes for a request
func (c *RedisRateCache) Invalidate(ctx context.Context, req shipping.RateRequest) error {
	if err := c.client.Del(ctx, c.rateCacheKey(req)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached rates: %w", err)
	}
	return nil
}

var _ RateCache = (*RedisRateCache)(nil)

// NoopRateCache disables caching. Used in tests and when Redis is not
// configured.
type NoopRateCache struct{}

func (NoopRateCache) Get(context.Context, shipping.RateRequest) ([]shipping.RateQuote, error) {
	return nil, nil
}

func (NoopRateCache) Set(context.Context, shipping.RateRequest, []shipping.RateQuote) error {
	return nil
}

func (NoopRateCache) Invalidate(context.Context, shipping.RateRequest) error {
	return nil
}

var _ RateCache = (*NoopRateCache)(nil)
