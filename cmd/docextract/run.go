package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leofalp/docextract/core/client"
	"github.com/leofalp/docextract/core/client/middleware"
	"github.com/leofalp/docextract/core/export"
	"github.com/leofalp/docextract/core/pipeline"
	"github.com/leofalp/docextract/providers/ai"
	"github.com/leofalp/docextract/providers/ai/openai"
	"github.com/leofalp/docextract/providers/observability/slogobs"
	"github.com/leofalp/docextract/providers/pages"
	"github.com/leofalp/docextract/providers/pages/htmlpages"
	"github.com/leofalp/docextract/providers/pages/pdfpages"
	"github.com/leofalp/docextract/providers/pages/textpages"
)

const (
	envModel     = "DOCEXTRACT_MODEL"
	defaultModel = "gpt-4o-mini"
)

type runOptions struct {
	model       string
	concurrency int
	format      string
	promptFile  string
	maxTokens   int
	timeout     time.Duration
	retries     int
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <source>",
		Short: "Extract records from every page of a document",
		Long: `Reads a document page by page, asks the model for the page's records and
prints them all as one JSON array or CSV table.

The source is read by kind: .pdf files page by page, .html/.htm files and
http(s) URLs as a single Markdown page, anything else as text with pages
separated by form feeds (as written by pdftotext).

Pages whose reply had to be repaired are reported on stderr. The command exits
non-zero if any page yielded no data; records from the other pages are still
printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, root, opts, args[0])
		},
	}

	model := os.Getenv(envModel)
	if model == "" {
		model = defaultModel
	}
	cmd.Flags().StringVarP(&opts.model, "model", "m", model, "model name (env "+envModel+")")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", pipeline.DefaultConcurrency, "pages processed at once")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "output format: json or csv")
	cmd.Flags().StringVar(&opts.promptFile, "prompt-file", "", "prompt template file; {{PAGE_TEXT}} marks where the page goes")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 0, "completion token cap per page (0 for the provider default)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "timeout per completion attempt")
	cmd.Flags().IntVar(&opts.retries, "retries", 3, "retries on rate limits and server errors (0 disables)")
	return cmd
}

func runRun(cmd *cobra.Command, root *rootOptions, opts *runOptions, source string) error {
	if err := checkFormat(opts.format, formatJSON, formatCSV); err != nil {
		return err
	}

	template := pipeline.DefaultPrompt
	if opts.promptFile != "" {
		b, err := os.ReadFile(opts.promptFile)
		if err != nil {
			return fmt.Errorf("read prompt: %w", err)
		}
		template = string(b)
	}

	observer := root.observer(cmd)
	c, err := newClient(openai.NewOpenAIProvider(), opts, observer)
	if err != nil {
		return err
	}

	p := pipeline.New(c,
		pipeline.WithPrompt(template),
		pipeline.WithConcurrency(opts.concurrency),
		pipeline.WithObserver(observer),
	)

	report, err := p.Run(cmd.Context(), openSource(source))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format == formatCSV {
		err = export.WriteCSV(out, report.RecordsJSON())
	} else {
		err = export.WriteJSON(out, report.RecordsJSON(), true)
	}
	if err != nil {
		return err
	}

	return summarize(cmd, report)
}

func newClient(provider ai.Provider, opts *runOptions, observer *slogobs.Observer) (*client.Client, error) {
	clientOpts := []func(*client.ClientOptions){
		client.WithModel(opts.model),
		client.WithObserver(observer),
		client.WithMiddleware(
			middleware.NewLoggingMiddleware(observer.Logger(), middleware.LogLevelMinimal),
			middleware.NewRetryMiddleware(retryConfig(opts.retries)),
			middleware.NewTimeoutMiddleware(opts.timeout),
		),
	}
	if opts.maxTokens > 0 {
		clientOpts = append(clientOpts, client.WithMaxTokens(opts.maxTokens))
	}
	return client.New(provider, clientOpts...)
}

// retryConfig maps the --retries flag, where 0 means no retries, onto the
// middleware's zero-means-default config.
func retryConfig(retries int) middleware.RetryConfig {
	if retries <= 0 {
		return middleware.RetryConfig{MaxRetries: middleware.NoRetries}
	}
	return middleware.RetryConfig{MaxRetries: retries}
}

func openSource(source string) pages.Provider {
	switch pages.DetectFormat(source) {
	case pages.FormatPDF:
		return pdfpages.FromFile(source)
	case pages.FormatHTML:
		if pages.IsURL(source) {
			return htmlpages.FromURL(source, nil)
		}
		return htmlpages.FromFile(source)
	default:
		return textpages.FromFile(source)
	}
}

func summarize(cmd *cobra.Command, report *pipeline.Report) error {
	stderr := cmd.ErrOrStderr()
	usage := report.Usage()
	fmt.Fprintf(stderr, "%s: %d pages, %d records, %d tokens\n",
		report.Source, len(report.Pages), len(report.Records()), usage.TotalTokens)

	for _, pr := range report.Incomplete() {
		fmt.Fprintf(stderr, "Warning: page %d was repaired (%s), data may be incomplete\n", pr.Page.Number, pr.Result.Strategy)
	}
	failed := report.Failed()
	for _, pr := range failed {
		fmt.Fprintf(stderr, "Error: page %d: %v\n", pr.Page.Number, pr.Result.Err())
	}
	if len(failed) > 0 {
		return errFailed
	}
	return nil
}
