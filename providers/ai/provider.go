package ai

import (
	"context"
	"net/http"
)

// Provider is implemented by every completion backend.
type Provider interface {
	// SendMessage sends one chat request and returns the model's reply.
	// The reply's FinishReason carries the provider's own spelling.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// IsStopMessage reports whether the model ended its reply naturally,
	// as opposed to hitting a length cap or a content filter.
	IsStopMessage(message *ChatResponse) bool

	// WithAPIKey sets the API key used for authenticating requests.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default base URL for API requests.
	WithBaseURL(baseURL string) Provider

	// WithHttpClient sets the HTTP client used for outbound requests.
	WithHttpClient(httpClient *http.Client) Provider
}
