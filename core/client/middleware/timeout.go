package middleware

import (
	"context"
	"time"

	"github.com/leofalp/docextract/core/client"
	"github.com/leofalp/docextract/providers/ai"
)

// NewTimeoutMiddleware bounds each call to next by timeout. Placed inside the
// retry middleware it limits single attempts; outside it limits the total.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
