package slogobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/leofalp/docextract/providers/observability"
)

func TestObserver_CompactOutput(t *testing.T) {
	var buf bytes.Buffer
	o := New(WithFormat(FormatCompact), WithLevel(slog.LevelInfo), WithOutput(&buf))

	o.Info(context.Background(), "extraction recovered",
		observability.String(observability.AttrExtractStrategy, "array_pattern"),
		observability.Int(observability.AttrExtractInputSize, 42),
	)

	out := buf.String()
	for _, want := range []string{" INFO extraction recovered", " → ", `"extract.strategy":"array_pattern"`, `"extract.input.size":42`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestObserver_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	o := New(WithFormat(FormatJSON), WithLevel(LevelTrace), WithOutput(&buf))

	o.Trace(context.Background(), "deep", observability.Bool("flag", true))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if record["level"] != "TRACE" {
		t.Errorf("level = %v, want TRACE", record["level"])
	}
	if record["msg"] != "deep" || record["flag"] != true {
		t.Errorf("unexpected record: %v", record)
	}
}

func TestObserver_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	o := New(WithFormat(FormatCompact), WithLevel(slog.LevelWarn), WithOutput(&buf))
	ctx := context.Background()

	o.Debug(ctx, "hidden debug")
	o.Info(ctx, "hidden info")
	o.Warn(ctx, "shown warn")
	o.Error(ctx, "shown error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("records below WARN leaked: %q", out)
	}
	if !strings.Contains(out, "shown warn") || !strings.Contains(out, "shown error") {
		t.Errorf("expected WARN and ERROR records: %q", out)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	o := New(WithLogger(logger), WithFormat(FormatJSON))

	o.Info(context.Background(), "through custom logger")
	if !strings.Contains(buf.String(), "msg=\"through custom logger\"") {
		t.Errorf("custom logger not used: %q", buf.String())
	}
	if o.Logger() != logger {
		t.Error("Logger() should return the injected logger")
	}
}

func TestObserver_Span(t *testing.T) {
	var buf bytes.Buffer
	o := New(WithFormat(FormatCompact), WithLevel(slog.LevelDebug), WithOutput(&buf))

	ctx, span := o.StartSpan(context.Background(), observability.SpanPipelinePage, observability.Int(observability.AttrPageNumber, 3))
	if observability.SpanFromContext(ctx) != span {
		t.Fatal("span not attached to returned context")
	}
	span.SetAttributes(observability.Int(observability.AttrPageRecords, 7))
	span.SetStatus(observability.StatusOK, "")
	span.AddEvent("page.done")
	span.End()
	span.End()

	out := buf.String()
	if got := strings.Count(out, "span ended"); got != 1 {
		t.Errorf("span ended logged %d times, want 1", got)
	}
	for _, want := range []string{`"page.number":3`, `"page.records":7`, `"status":"ok"`, `"event":"page.done"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestObserver_SpanRecordError(t *testing.T) {
	var buf bytes.Buffer
	o := New(WithFormat(FormatCompact), WithLevel(slog.LevelError), WithOutput(&buf))

	_, span := o.StartSpan(context.Background(), observability.SpanPipelinePage)
	span.RecordError(nil)
	if buf.Len() != 0 {
		t.Fatalf("nil error should not log: %q", buf.String())
	}
	span.RecordError(errors.New("upstream 500"))
	if !strings.Contains(buf.String(), "upstream 500") {
		t.Errorf("error not logged: %q", buf.String())
	}
}

func TestObserver_Metrics(t *testing.T) {
	o := New(WithOutput(&bytes.Buffer{}))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.Counter(observability.MetricPipelineRecords).Add(ctx, 2)
			o.Histogram(observability.MetricExtractInputSize).Record(ctx, 128)
		}()
	}
	wg.Wait()

	if got := o.CounterValue(observability.MetricPipelineRecords); got != 40 {
		t.Errorf("CounterValue = %d, want 40", got)
	}
	if got := o.HistogramCount(observability.MetricExtractInputSize); got != 20 {
		t.Errorf("HistogramCount = %d, want 20", got)
	}
	if got := o.CounterValue("never.used"); got != 0 {
		t.Errorf("unknown counter = %d, want 0", got)
	}
	if o.Counter("same") != o.Counter("same") {
		t.Error("Counter should return the same instance for the same name")
	}
}

func TestCompactHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newCompactHandler(&buf, slog.LevelInfo)).
		With("run.id", "r1").
		WithGroup("page")

	logger.Info("done", "number", 2)

	out := buf.String()
	if !strings.Contains(out, `"run.id":"r1"`) || !strings.Contains(out, `"page.number":2`) {
		t.Errorf("unexpected grouping: %q", out)
	}
}
