package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/leofalp/docextract/core/client"
	"github.com/leofalp/docextract/internal/utils"
	"github.com/leofalp/docextract/providers/ai"
	"github.com/leofalp/docextract/providers/observability"
)

// NoRetries as RetryConfig.MaxRetries makes a single attempt.
const NoRetries = -1

// RetryConfig configures [NewRetryMiddleware]. Zero fields take defaults.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt. Default 3;
	// any negative value, such as [NoRetries], disables retrying.
	MaxRetries int

	// InitialBackoff is the wait before the first retry. Default 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps every wait, including server-requested ones. Default 30s.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the wait after each retry. Default 2.
	BackoffFactor float64

	// JitterFraction adds up to this fraction of random extra wait. Default 0.1.
	JitterFraction float64

	// RetryableFunc decides whether an error is worth retrying. The default
	// retries 429, 500, 502, 503 and 529 replies.
	RetryableFunc func(error) bool
}

// retryableStatus lists the statuses the default policy retries; 529 is the
// "overloaded" status some providers use.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	529:                            true,
}

func defaultRetryableFunc(err error) bool {
	code, ok := utils.StatusCode(err)
	return ok && retryableStatus[code]
}

func applyRetryDefaults(config *RetryConfig) {
	switch {
	case config.MaxRetries == 0:
		config.MaxRetries = 3
	case config.MaxRetries < 0:
		config.MaxRetries = 0
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = time.Second
	}
	if config.MaxBackoff == 0 {
		config.MaxBackoff = 30 * time.Second
	}
	if config.BackoffFactor == 0 {
		config.BackoffFactor = 2.0
	}
	if config.JitterFraction == 0 {
		config.JitterFraction = 0.1
	}
	if config.RetryableFunc == nil {
		config.RetryableFunc = defaultRetryableFunc
	}
}

// computeBackoff returns the wait before retry number attempt+1. A
// Retry-After carried by err wins over the exponential schedule when longer.
func computeBackoff(config RetryConfig, attempt int, err error) time.Duration {
	base := float64(config.InitialBackoff) * math.Pow(config.BackoffFactor, float64(attempt))
	if base > float64(config.MaxBackoff) {
		base = float64(config.MaxBackoff)
	}

	var httpErr *utils.HTTPError
	if errors.As(err, &httpErr) && float64(httpErr.RetryAfter) > base {
		return min(httpErr.RetryAfter, config.MaxBackoff)
	}

	jitter := base * config.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter is intentional
	return time.Duration(base + jitter)
}

// NewRetryMiddleware retries retryable provider errors with exponential
// backoff and jitter. It stops early when ctx is done. Each retry adds a
// retry event to the span in ctx, if any.
func NewRetryMiddleware(config RetryConfig) client.Middleware {
	applyRetryDefaults(&config)

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			var lastErr error

			for attempt := 0; attempt <= config.MaxRetries; attempt++ {
				if attempt > 0 {
					backoff := computeBackoff(config, attempt-1, lastErr)
					if span := observability.SpanFromContext(ctx); span != nil {
						span.AddEvent(observability.EventRetry,
							observability.Int(observability.AttrRetryAttempt, attempt),
							observability.Int(observability.AttrRetryMaxAttempts, config.MaxRetries),
							observability.Duration(observability.AttrRetryBackoff, backoff),
							observability.Error(lastErr),
						)
					}

					timer := time.NewTimer(backoff)
					select {
					case <-ctx.Done():
						timer.Stop()
						return nil, ctx.Err()
					case <-timer.C:
					}
				}

				response, err := next(ctx, request)
				if err == nil {
					return response, nil
				}
				lastErr = err

				if !config.RetryableFunc(err) {
					return nil, err
				}
			}

			return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, lastErr)
		}
	}
}
