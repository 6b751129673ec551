package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leofalp/docextract/core/extract"
	"github.com/leofalp/docextract/providers/ai"
	"github.com/leofalp/docextract/providers/observability"
	"github.com/leofalp/docextract/providers/pages"
)

// DefaultConcurrency is the number of pages in flight when none is configured.
const DefaultConcurrency = 4

// Extractor completes a prompt and extracts structured data from the reply.
// *client.Client implements it.
type Extractor interface {
	Extract(ctx context.Context, prompt string) (extract.Result, *ai.ChatResponse, error)
}

// Pipeline turns documents into records. It is safe for concurrent use.
type Pipeline struct {
	extractor   Extractor
	prompt      string
	concurrency int
	observer    observability.Provider
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPrompt replaces [DefaultPrompt]. See [BuildPrompt] for placeholder rules.
func WithPrompt(template string) Option {
	return func(p *Pipeline) {
		p.prompt = template
	}
}

// WithConcurrency bounds how many pages are processed at once. Values below
// one mean one.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.concurrency = max(n, 1)
	}
}

// WithObserver reports runs and pages to observer.
func WithObserver(observer observability.Provider) Option {
	return func(p *Pipeline) {
		p.observer = observer
	}
}

// New creates a Pipeline around extractor.
func New(extractor Extractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:   extractor,
		prompt:      DefaultPrompt,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run extracts every page of src. Page results keep page order whatever the
// completion order. The first transport error cancels the remaining pages and
// is returned; Failed page results are not errors.
func (p *Pipeline) Run(ctx context.Context, src pages.Provider) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Source: src.Source()}

	ctx, span := p.startSpan(ctx, observability.SpanPipelineRun,
		observability.String(observability.AttrRunID, report.RunID),
		observability.String(observability.AttrDocumentSource, report.Source),
		observability.Int(observability.AttrRunConcurrency, p.concurrency),
	)
	defer span.End()

	docPages, err := src.Pages(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "reading pages failed")
		return nil, fmt.Errorf("pipeline: read %s: %w", report.Source, err)
	}
	span.SetAttributes(observability.Int(observability.AttrDocumentPages, len(docPages)))

	results := make([]PageResult, len(docPages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, page := range docPages {
		g.Go(func() error {
			res, err := p.runPage(gctx, page)
			if err != nil {
				return fmt.Errorf("pipeline: page %d: %w", page.Number, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "run aborted")
		return nil, err
	}

	report.Pages = results
	p.summarize(ctx, span, report)
	return report, nil
}

func (p *Pipeline) runPage(ctx context.Context, page pages.Page) (PageResult, error) {
	ctx, span := p.startSpan(ctx, observability.SpanPipelinePage,
		observability.Int(observability.AttrPageNumber, page.Number),
		observability.Int(observability.AttrPageChars, len(page.Text)),
	)
	defer span.End()

	result, response, err := p.extractor.Extract(ctx, BuildPrompt(p.prompt, page.Text))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "completion failed")
		return PageResult{}, err
	}

	pr := PageResult{Page: page, Result: result}
	if response != nil {
		pr.Usage = response.Usage
		pr.FinishReason = response.FinishReason
	}

	statusAttr := observability.String(observability.AttrExtractStatus, result.Status.String())
	span.SetAttributes(statusAttr, observability.Int(observability.AttrPageRecords, pr.RecordCount()))
	if result.Status == extract.StatusFailed {
		kind := result.Diagnostic.Kind.String()
		span.SetAttributes(observability.String(observability.AttrErrorType, kind))
		span.SetStatus(observability.StatusError, kind)
	} else {
		span.SetStatus(observability.StatusOK, "")
	}

	if p.observer != nil {
		p.observer.Counter(observability.MetricPipelinePages).Add(ctx, 1, statusAttr)
		p.observer.Counter(observability.MetricPipelineRecords).Add(ctx, int64(pr.RecordCount()))
	}
	return pr, nil
}

func (p *Pipeline) summarize(ctx context.Context, span observability.Span, report *Report) {
	span.SetStatus(observability.StatusOK, "")
	if p.observer == nil {
		return
	}

	attrs := []observability.Attribute{
		observability.String(observability.AttrRunID, report.RunID),
		observability.String(observability.AttrDocumentSource, report.Source),
		observability.Int(observability.AttrDocumentPages, len(report.Pages)),
		observability.Int(observability.AttrPageRecords, len(report.Records())),
	}
	if failed := report.Failed(); len(failed) > 0 {
		p.observer.Warn(ctx, "run finished with failed pages",
			append(attrs, observability.Int(observability.AttrRunPagesFailed, len(failed)))...)
		return
	}
	if incomplete := report.Incomplete(); len(incomplete) > 0 {
		p.observer.Warn(ctx, "run finished, data may be incomplete",
			append(attrs, observability.Int(observability.AttrRunPagesIncomplete, len(incomplete)))...)
		return
	}
	p.observer.Info(ctx, "run finished", attrs...)
}

func (p *Pipeline) startSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	if p.observer == nil {
		return ctx, noopSpan{}
	}
	return p.observer.StartSpan(ctx, name, attrs...)
}

type noopSpan struct{}

func (noopSpan) End()                                        {}
func (noopSpan) SetAttributes(...observability.Attribute)    {}
func (noopSpan) SetStatus(observability.StatusCode, string)  {}
func (noopSpan) RecordError(error)                           {}
func (noopSpan) AddEvent(string, ...observability.Attribute) {}
