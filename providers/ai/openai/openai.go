package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/leofalp/docextract/internal/utils"
	"github.com/leofalp/docextract/providers/ai"
	"github.com/leofalp/docextract/providers/observability"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
	providerName            = "openai"
)

// ErrMissingAPIKey is returned by SendMessage when no API key is configured.
var ErrMissingAPIKey = errors.New("openai: API key is not set")

// OpenAIProvider implements the Provider interface for OpenAI API
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider instance with default values
func NewOpenAIProvider() *OpenAIProvider {
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &OpenAIProvider{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider
func (p *OpenAIProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *OpenAIProvider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *OpenAIProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// SendMessage implements the Provider interface
func (p *OpenAIProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	url := p.baseURL + chatCompletionsEndpoint
	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, providerName),
			observability.String(observability.AttrLLMEndpoint, url),
		)
	}

	httpResponse, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, url, p.apiKey, requestToChatCompletion(request))
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("openai: empty response: %s", httpResponse.Status)
	}

	out := chatCompletionToGeneric(*resp)
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMResponseID, out.Id),
			observability.String(observability.AttrLLMFinishReason, out.FinishReason),
		)
	}
	return out, nil
}

// IsStopMessage reports whether the model finished on its own. Length and
// content-filter stops are not natural ends: the content may be cut short.
func (p *OpenAIProvider) IsStopMessage(message *ai.ChatResponse) bool {
	return message != nil && message.FinishReason == "stop"
}
