package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/docextract/core/extract"
	"github.com/leofalp/docextract/core/parse"
	"github.com/leofalp/docextract/providers/ai"
	"github.com/leofalp/docextract/providers/observability"
)

// ErrNilProvider is returned by [New] when no provider is given.
var ErrNilProvider = errors.New("client: provider is nil")

// ClientOptions collects the settings applied by the With* options.
type ClientOptions struct {
	Model        string
	SystemPrompt string
	MaxTokens    int
	Temperature  *float64
	JSONMode     bool
	Observer     observability.Provider
	Middlewares  []Middleware
	Extractor    *extract.Extractor
}

// Client sends single-turn prompts and extracts structured data from the replies.
// It holds no conversation state and is safe for concurrent use.
type Client struct {
	provider  ai.Provider
	send      SendFunc
	options   ClientOptions
	extractor *extract.Extractor
}

// WithModel sets the model requested from the provider.
func WithModel(model string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Model = model
	}
}

// WithSystemPrompt sets the system prompt sent with every request.
func WithSystemPrompt(prompt string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.SystemPrompt = prompt
	}
}

// WithMaxTokens caps the reply length. Replies that hit the cap come back with
// a length finish reason and go through truncation recovery.
func WithMaxTokens(n int) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Temperature = &t
	}
}

// WithJSONMode asks the provider for a json_object response format.
func WithJSONMode() func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.JSONMode = true
	}
}

// WithObserver enables tracing, metrics and logs for requests and extractions.
func WithObserver(observer observability.Provider) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Observer = observer
	}
}

// WithMiddleware appends middlewares to the send chain.
func WithMiddleware(middlewares ...Middleware) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Middlewares = append(o.Middlewares, middlewares...)
	}
}

// WithExtractor replaces the extraction engine used by [Client.Extract].
func WithExtractor(extractor *extract.Extractor) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Extractor = extractor
	}
}

// New creates a Client. It fails when provider is nil or a middleware is nil.
func New(provider ai.Provider, opts ...func(*ClientOptions)) (*Client, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	options := ClientOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	for i, mw := range options.Middlewares {
		if mw == nil {
			return nil, fmt.Errorf("client: middleware at index %d is nil", i)
		}
	}

	middlewares := options.Middlewares
	if options.Observer != nil {
		middlewares = append([]Middleware{NewObservabilityMiddleware(options.Observer, options.Model)}, middlewares...)
	}

	extractor := options.Extractor
	if extractor == nil {
		var extractOpts []extract.Option
		if options.Observer != nil {
			extractOpts = append(extractOpts, extract.WithObserver(options.Observer))
		}
		extractor = extract.New(extractOpts...)
	}

	return &Client{
		provider:  provider,
		send:      buildSendChain(provider, middlewares),
		options:   options,
		extractor: extractor,
	}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.options.Model
}

// Complete sends prompt as a single user message and returns the raw reply.
func (c *Client) Complete(ctx context.Context, prompt string) (*ai.ChatResponse, error) {
	if prompt == "" {
		return nil, errors.New("client: prompt is empty")
	}

	response, err := c.send(ctx, c.request(prompt))
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, errors.New("client: provider returned a nil response")
	}
	return response, nil
}

// Extract completes prompt and runs the reply through the extraction engine.
// A transport error is returned as error; an unusable reply is a Failed result.
func (c *Client) Extract(ctx context.Context, prompt string) (extract.Result, *ai.ChatResponse, error) {
	response, err := c.Complete(ctx, prompt)
	if err != nil {
		return extract.Result{}, nil, err
	}
	return c.extractor.Extract(ctx, RawCompletion(response)), response, nil
}

// CompleteAs extracts the reply to prompt and decodes it into T.
func CompleteAs[T any](ctx context.Context, c *Client, prompt string) (T, *ai.ChatResponse, error) {
	var zero T

	result, response, err := c.Extract(ctx, prompt)
	if err != nil {
		return zero, nil, err
	}
	value, err := parse.ResultAs[T](result)
	if err != nil {
		return zero, response, err
	}
	return value, response, nil
}

// RawCompletion converts a provider reply into the engine's input.
func RawCompletion(response *ai.ChatResponse) extract.RawCompletion {
	if response == nil {
		return extract.RawCompletion{FinishReason: extract.FinishOther}
	}
	return extract.RawCompletion{
		Text:         response.Content,
		FinishReason: extract.ParseFinishReason(response.FinishReason),
	}
}

func (c *Client) request(prompt string) ai.ChatRequest {
	request := ai.ChatRequest{
		Model:        c.options.Model,
		SystemPrompt: c.options.SystemPrompt,
		Messages:     []ai.Message{ai.UserMessage(prompt)},
	}
	if c.options.MaxTokens > 0 || c.options.Temperature != nil {
		request.GenerationConfig = &ai.GenerationConfig{
			MaxTokens:   c.options.MaxTokens,
			Temperature: c.options.Temperature,
		}
	}
	if c.options.JSONMode {
		request.ResponseFormat = &ai.ResponseFormat{Type: ai.ResponseFormatJSONObject}
	}
	return request
}
