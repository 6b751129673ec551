package observability

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"
)

// Provider bundles everything the extractor, client and pipeline report to.
// A nil Provider is valid wherever one is accepted and means "report nothing".
type Provider interface {
	Tracer
	Metrics
	Logger
}

// --- TRACING ---

type Tracer interface {
	// StartSpan returns ctx carrying the new span; see [SpanFromContext].
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span covers one run, one page or one completion request. Attributes set
// after start are reported when the span ends.
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	SetStatus(code StatusCode, description string)
	RecordError(err error)
	AddEvent(name string, attrs ...Attribute)
}

type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

func (c StatusCode) String() string {
	switch c {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	default:
		return "unset"
	}
}

// --- METRICS ---

// Metrics hands out named instruments; the same name always yields the same
// instrument. Names live in semconv.go.
type Metrics interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

// --- LOGGING ---

type Logger interface {
	Trace(ctx context.Context, msg string, attrs ...Attribute)
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// --- ATTRIBUTES ---

// Attribute is one key/value pair on a span, metric point or log record.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute          { return Attribute{key, value} }
func Int(key string, value int) Attribute         { return Attribute{key, value} }
func Float64(key string, value float64) Attribute { return Attribute{key, value} }
func Bool(key string, value bool) Attribute       { return Attribute{key, value} }

func Duration(key string, value time.Duration) Attribute { return Attribute{key, value} }

// StringSlice copies values, so a caller reusing its slice cannot change a
// record that is still buffered.
func StringSlice(key string, values []string) Attribute {
	return Attribute{key, append([]string(nil), values...)}
}

// Error puts err's message under [AttrError]; nil gives an empty value.
func Error(err error) Attribute {
	if err == nil {
		return Attribute{AttrError, ""}
	}
	return Attribute{AttrError, err.Error()}
}

// DefaultMaxStringLength is the cut used by [TruncateString] for maxLen <= 0.
const DefaultMaxStringLength = 500

// TruncateString bounds prompts, replies and error bodies before they are
// logged. The cut never splits a UTF-8 sequence and the result notes the
// original byte length.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s...[%d bytes]", s[:cut], len(s))
}
