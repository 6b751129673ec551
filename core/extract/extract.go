package extract

import (
	"context"
	"strings"

	"github.com/leofalp/docextract/providers/observability"
)

// Extractor runs the extraction pipeline. It is immutable after [New] and safe
// for concurrent use.
type Extractor struct {
	observer    observability.Provider
	strategies  []strategy
	objectFirst bool
}

// Option configures an Extractor.
type Option func(*options)

type options struct {
	observer      observability.Provider
	libraryRepair bool
	objectFirst   bool
}

// WithObserver reports every extraction to the given observability provider.
// Without it the extractor is silent.
func WithObserver(observer observability.Provider) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithLibraryRepair appends a last-resort strategy that runs the candidate
// through a general JSON repair library. It is skipped on truncated input.
func WithLibraryRepair() Option {
	return func(o *options) {
		o.libraryRepair = true
	}
}

// WithObjectRoot makes the locator pick the first '{' even when a '[' exists,
// for callers that expect a single record rather than a list.
func WithObjectRoot() Option {
	return func(o *options) {
		o.objectFirst = true
	}
}

// New creates an Extractor with the standard strategy chain:
// truncation recovery, array pattern, first object, syntax normalization and
// suffix trimming, in that order.
func New(opts ...Option) *Extractor {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Extractor{
		observer:    cfg.observer,
		strategies:  defaultStrategies(cfg.libraryRepair),
		objectFirst: cfg.objectFirst,
	}
}

var defaultExtractor = New()

// Extract runs the default extractor on raw.
func Extract(raw RawCompletion) Result {
	return defaultExtractor.Extract(context.Background(), raw)
}

// Extract turns raw into a Result. It never panics and never returns a nil
// diagnostic for a failed result. ctx is only used for observability.
func (e *Extractor) Extract(ctx context.Context, raw RawCompletion) Result {
	result := e.run(ctx, raw)
	e.report(ctx, raw, result)
	return result
}

func (e *Extractor) run(ctx context.Context, raw RawCompletion) Result {
	text := Normalize(raw.Text)

	if value, err := strictParse(text); err == nil {
		return complete(value, text, false)
	}

	candidate, ok := e.locate(text)
	if !ok {
		return failed(newDiagnostic(NoStructureFound, text, nil))
	}

	slice := candidate.Slice(text)
	value, parseErr := strictParse(slice)
	if parseErr == nil {
		return complete(value, slice, true)
	}

	truncated := truncationLikely(raw.FinishReason, candidate)
	e.debug(ctx, "candidate rejected by strict parse",
		observability.String(observability.AttrExtractKind, candidate.Kind.String()),
		observability.Int(observability.AttrExtractCandidateStart, candidate.Start),
		observability.Int(observability.AttrExtractCandidateEnd, candidate.End),
		observability.Bool(observability.AttrExtractBalanced, candidate.Balanced),
		observability.Bool(observability.AttrExtractTruncated, truncated),
		observability.Error(parseErr),
	)

	a := attempt{text: text, candidate: candidate, truncated: truncated}
	for _, s := range e.strategies {
		if o, ok := s.apply(a); ok {
			return recovered(s.name, o)
		}
		e.debug(ctx, "strategy did not apply", observability.String(observability.AttrExtractStrategy, s.name))
	}

	return failed(newDiagnostic(classify(truncated, parseErr), text, parseErr))
}

func (e *Extractor) locate(text string) (Candidate, bool) {
	if e.objectFirst {
		if start := strings.IndexByte(text, '{'); start >= 0 {
			return locateFrom(text, start, KindObject), true
		}
	}
	return Locate(text)
}

// classify prefers the truncation-specific kind so callers get an actionable
// hint ("ask for less output") over a generic parse failure.
func classify(truncated bool, parseErr error) ErrorKind {
	switch {
	case truncated:
		return UnbalancedUnrecoverable
	case syntaxErrorOffset(parseErr) >= 0:
		return StrictParseError
	default:
		return AllStrategiesExhausted
	}
}

func (e *Extractor) debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	if e.observer == nil {
		return
	}
	e.observer.Debug(ctx, msg, attrs...)
}

func (e *Extractor) report(ctx context.Context, raw RawCompletion, result Result) {
	if e.observer == nil {
		return
	}

	attrs := []observability.Attribute{
		observability.String(observability.AttrExtractStatus, result.Status.String()),
		observability.String(observability.AttrLLMFinishReason, string(raw.FinishReason)),
		observability.Int(observability.AttrExtractInputSize, len(raw.Text)),
	}

	e.observer.Counter(observability.MetricExtractResults).Add(ctx, 1, attrs[0])
	e.observer.Histogram(observability.MetricExtractInputSize).Record(ctx, float64(len(raw.Text)), attrs[0])

	switch result.Status {
	case StatusComplete:
		e.observer.Debug(ctx, "extraction complete", append(attrs, observability.Bool(observability.AttrExtractTrimmed, result.Trimmed))...)
	case StatusRecovered:
		e.observer.Info(ctx, "extraction recovered",
			append(attrs,
				observability.String(observability.AttrExtractStrategy, result.Strategy),
				observability.StringSlice(observability.AttrExtractWarnings, warningStrings(result.Warnings)),
			)...,
		)
	case StatusFailed:
		e.observer.Warn(ctx, "extraction failed",
			append(attrs,
				observability.String(observability.AttrExtractErrorKind, result.Diagnostic.Kind.String()),
				observability.String(observability.AttrExtractExcerpt, result.Diagnostic.Excerpt),
			)...,
		)
	}
}

func warningStrings(warnings []Warning) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = string(w)
	}
	return out
}
