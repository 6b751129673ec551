package client

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/leofalp/docextract/providers/ai"
	"github.com/leofalp/docextract/providers/observability"
	"github.com/leofalp/docextract/providers/observability/slogobs"
)

func newObserver(buf *bytes.Buffer) *slogobs.Observer {
	return slogobs.New(slogobs.WithFormat(slogobs.FormatCompact), slogobs.WithLevel(slog.LevelDebug), slogobs.WithOutput(buf))
}

func TestObservabilityMiddleware_Success(t *testing.T) {
	var buf bytes.Buffer
	observer := newObserver(&buf)

	var sawSpan bool
	next := func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		sawSpan = observability.SpanFromContext(ctx) != nil
		return &ai.ChatResponse{
			Content:      "[]",
			FinishReason: "length",
			Usage:        &ai.Usage{PromptTokens: 7, CompletionTokens: 3, TotalTokens: 10},
		}, nil
	}

	request := ai.ChatRequest{GenerationConfig: &ai.GenerationConfig{MaxTokens: 3}}
	if _, err := NewObservabilityMiddleware(observer, "default-model")(next)(context.Background(), request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sawSpan {
		t.Error("span not propagated to next")
	}
	if got := observer.CounterValue(observability.MetricClientRequestCount); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
	if got := observer.CounterValue(observability.MetricClientTokensTotal); got != 10 {
		t.Errorf("tokens = %d, want 10", got)
	}
	if got := observer.HistogramCount(observability.MetricClientRequestDuration); got != 1 {
		t.Errorf("duration samples = %d, want 1", got)
	}

	out := buf.String()
	for _, want := range []string{observability.SpanClientComplete, "default-model", "completion did not stop naturally", observability.EventLLMRequestEnd} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestObservabilityMiddleware_Error(t *testing.T) {
	var buf bytes.Buffer
	observer := newObserver(&buf)
	boom := errors.New("upstream exploded")

	next := func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) { return nil, boom }
	_, err := NewObservabilityMiddleware(observer, "m")(next)(context.Background(), ai.ChatRequest{Model: "request-model"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "completion failed") || !strings.Contains(out, "request-model") {
		t.Errorf("failure not logged:\n%s", out)
	}
	if got := observer.CounterValue(observability.MetricClientTokensTotal); got != 0 {
		t.Errorf("tokens = %d, want 0", got)
	}
}

func TestNew_WithObserver(t *testing.T) {
	var buf bytes.Buffer
	observer := newObserver(&buf)

	c, err := New(&fakeProvider{reply: &ai.ChatResponse{Content: `[{"a": 1}, {"a"`, FinishReason: "length"}},
		WithObserver(observer), WithModel("gpt-test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, _, err := c.Extract(context.Background(), "prompt"); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got := observer.CounterValue(observability.MetricClientRequestCount); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
	if got := observer.CounterValue(observability.MetricExtractResults); got != 1 {
		t.Errorf("extract results = %d, want 1", got)
	}
	if !strings.Contains(buf.String(), "extraction recovered") {
		t.Errorf("extractor did not use the client's observer:\n%s", buf.String())
	}
}

func TestEffectiveModel(t *testing.T) {
	if got := effectiveModel("", "d"); got != "d" {
		t.Errorf("got %q", got)
	}
	if got := effectiveModel("r", "d"); got != "r" {
		t.Errorf("got %q", got)
	}
}
