package client

import (
	"context"
	"time"

	"github.com/leofalp/docextract/providers/ai"
	"github.com/leofalp/docextract/providers/observability"
)

// NewObservabilityMiddleware wraps every request in a client.complete span and
// records request counts, latency and token usage.
//
// The span is placed in the context before next is called, so providers and
// inner middlewares can annotate it through [observability.SpanFromContext].
// [New] prepends this middleware when [WithObserver] is set.
func NewObservabilityMiddleware(observer observability.Provider, defaultModel string) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			model := effectiveModel(request.Model, defaultModel)
			modelAttr := observability.String(observability.AttrLLMModel, model)

			ctx, span := observer.StartSpan(ctx, observability.SpanClientComplete, modelAttr)
			defer span.End()
			if gc := request.GenerationConfig; gc != nil {
				if gc.MaxTokens > 0 {
					span.SetAttributes(observability.Int(observability.AttrLLMMaxTokens, gc.MaxTokens))
				}
				if gc.Temperature != nil {
					span.SetAttributes(observability.Float64(observability.AttrLLMTemperature, *gc.Temperature))
				}
			}

			span.AddEvent(observability.EventLLMRequestStart)
			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)
			span.AddEvent(observability.EventLLMRequestEnd, observability.Duration(observability.AttrDuration, elapsed))

			observer.Histogram(observability.MetricClientRequestDuration).Record(ctx, elapsed.Seconds(), modelAttr)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(observability.StatusError, "completion failed")
				observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
					observability.String(observability.AttrStatus, "error"),
					modelAttr,
				)
				observer.Error(ctx, "completion failed",
					observability.Error(err),
					observability.Duration(observability.AttrDuration, elapsed),
					modelAttr,
				)
				return nil, err
			}

			recordSuccess(ctx, span, observer, response, elapsed, modelAttr)
			return response, nil
		}
	}
}

func recordSuccess(ctx context.Context, span observability.Span, observer observability.Provider, response *ai.ChatResponse, elapsed time.Duration, modelAttr observability.Attribute) {
	observer.Counter(observability.MetricClientRequestCount).Add(ctx, 1,
		observability.String(observability.AttrStatus, "success"),
		modelAttr,
	)

	if response == nil {
		span.SetStatus(observability.StatusOK, "")
		return
	}

	logAttrs := []observability.Attribute{
		modelAttr,
		observability.String(observability.AttrLLMFinishReason, response.FinishReason),
		observability.Duration(observability.AttrDuration, elapsed),
		observability.Int(observability.AttrExtractInputSize, len(response.Content)),
	}

	if u := response.Usage; u != nil {
		observer.Counter(observability.MetricClientTokensTotal).Add(ctx, int64(u.TotalTokens), modelAttr)
		usageAttrs := []observability.Attribute{
			observability.Int(observability.AttrLLMTokensPrompt, u.PromptTokens),
			observability.Int(observability.AttrLLMTokensCompletion, u.CompletionTokens),
			observability.Int(observability.AttrLLMTokensTotal, u.TotalTokens),
		}
		span.SetAttributes(usageAttrs...)
		logAttrs = append(logAttrs, usageAttrs...)
	}

	span.SetAttributes(observability.String(observability.AttrLLMFinishReason, response.FinishReason))
	span.SetStatus(observability.StatusOK, "")

	// A capped reply is still a successful request, but worth a louder log line.
	if response.FinishReason != "" && response.FinishReason != "stop" {
		observer.Warn(ctx, "completion did not stop naturally", logAttrs...)
		return
	}
	observer.Info(ctx, "completion received", logAttrs...)
}

// effectiveModel returns the request-level model when set, falling back to the
// client's configured default.
func effectiveModel(requestModel, defaultModel string) string {
	if requestModel != "" {
		return requestModel
	}
	return defaultModel
}
