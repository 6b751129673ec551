// Package observability defines the interfaces and attribute conventions used
// for tracing, metrics and structured logging across docextract.
//
// Components accept a [Provider] (usually through a WithObserver option) and
// stay silent when none is configured. The active [Span] travels in a
// [context.Context] via [ContextWithSpan] and [SpanFromContext], so the
// OpenAI provider can annotate the span the client opened for a request.
//
// semconv.go holds the attribute keys, span names and metric names. Use them
// instead of ad-hoc strings so every backend sees the same vocabulary.
package observability
