// Package httpclient provides the shared outbound HTTP client. All
// third-party API calls (carriers, email) go through it so that rate
// limiting and retry behavior are applied uniformly.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/taxpilot/backend/internal/infrastructure/config"
)

// ErrRetriesExhausted is returned when a request keeps failing after the
// configured number of retries.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Client is a rate-limited HTTP client with retry on transient failures.
// Safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxRetries  int
	baseBackoff time.Duration
	maxBackoff  time.Duration
	logger      *zap.Logger
}

// Option is a functional option for configuring the client
type Option func(*Client)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTransport overrides the underlying transport. Used in tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// New creates a client from outbound config
func New(cfg config.OutboundConfig, opts ...Option) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(rps)
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	baseBackoff := cfg.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 250 * time.Millisecond
	}
	maxBackoff := cfg.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 10 * time.Second
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries:  cfg.MaxRetries,
		baseBackoff: baseBackoff,
		maxBackoff:  maxBackoff,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Allow reports whether a request may proceed immediately without waiting
func (c *Client) Allow() bool {
	return c.limiter.Allow()
}

// Do executes the request, blocking on the rate limiter first and
// retrying on 429, 5xx and transport errors with exponential backoff and
// full jitter. Non-retryable statuses are returned to the caller as-is.
// Requests with a body must set GetBody (http.NewRequest does this for
// the common body types) or they will not be retried.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
			var err error
			req, err = rewindRequest(req)
			if err != nil {
				return nil, err
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			c.logger.Warn("outbound request failed",
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}

		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		lastErr = fmt.Errorf("received status %d", resp.StatusCode)
		c.logger.Warn("outbound request got retryable status",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode),
			zap.Int("attempt", attempt+1))
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, c.maxRetries+1, lastErr)
}

// sleepBackoff waits for the backoff of the given attempt, honoring
// context cancellation. Full jitter: the delay is uniform over
// (0, min(maxBackoff, base*2^(attempt-1))].
func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	ceiling := c.baseBackoff << uint(attempt-1)
	if ceiling > c.maxBackoff || ceiling <= 0 {
		ceiling = c.maxBackoff
	}
	delay := time.Duration(rand.Int63n(int64(ceiling))) + time.Millisecond

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// rewindRequest clones the request with a fresh body for a retry
func rewindRequest(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be rewound for retry")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
