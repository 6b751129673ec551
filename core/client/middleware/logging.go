package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/docextract/core/client"
	"github.com/leofalp/docextract/providers/ai"
	"github.com/leofalp/docextract/providers/observability"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs the model, duration and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds the prompt size and the finish reason.
	LogLevelStandard

	// LogLevelVerbose adds the prompt and the reply, each cut to 500 bytes.
	// Prompts carry document text; keep this for local debugging.
	LogLevelVerbose
)

const truncateLen = 500

// NewLoggingMiddleware logs every request and its outcome to logger.
// A nil logger means slog.Default().
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			logger.InfoContext(ctx, "completion request", requestAttrs(request, level)...)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "completion request failed",
					slog.String("model", request.Model),
					slog.Duration("duration", elapsed),
					slog.String("error", err.Error()),
				)
				return nil, err
			}
			if response == nil {
				return nil, nil
			}

			logger.InfoContext(ctx, "completion request done", responseAttrs(response, elapsed, level)...)
			return response, nil
		}
	}
}

func requestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{slog.String("model", request.Model)}

	if level >= LogLevelStandard {
		size := len(request.SystemPrompt)
		for _, m := range request.Messages {
			size += len(m.Content)
		}
		attrs = append(attrs, slog.Int("prompt_bytes", size))
	}

	if level >= LogLevelVerbose && len(request.Messages) > 0 {
		last := request.Messages[len(request.Messages)-1]
		attrs = append(attrs, slog.String("prompt", observability.TruncateString(last.Content, truncateLen)))
	}
	return attrs
}

func responseAttrs(response *ai.ChatResponse, elapsed time.Duration, level LogLevel) []any {
	attrs := []any{
		slog.String("model", response.Model),
		slog.Duration("duration", elapsed),
	}

	if response.Usage != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", response.Usage.PromptTokens),
			slog.Int("completion_tokens", response.Usage.CompletionTokens),
			slog.Int("total_tokens", response.Usage.TotalTokens),
		)
	}

	if level >= LogLevelStandard && response.FinishReason != "" {
		attrs = append(attrs, slog.String("finish_reason", response.FinishReason))
	}

	if level >= LogLevelVerbose && response.Content != "" {
		attrs = append(attrs, slog.String("response", observability.TruncateString(response.Content, truncateLen)))
	}
	return attrs
}
