// Package middleware provides [client.Middleware] implementations for the
// completion client: retry with exponential backoff, structured request
// logging and per-request timeouts.
//
// Pass them to [client.WithMiddleware]; the first one is the outermost:
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewLoggingMiddleware(slog.Default(), middleware.LogLevelStandard),
//	        middleware.NewRetryMiddleware(middleware.RetryConfig{}),
//	        middleware.NewTimeoutMiddleware(2*time.Minute),
//	    ),
//	)
package middleware
