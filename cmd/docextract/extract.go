package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leofalp/docextract/core/export"
	"github.com/leofalp/docextract/core/extract"
)

const (
	formatJSON   = "json"
	formatCSV    = "csv"
	formatResult = "result"
)

type extractOptions struct {
	finishReason  string
	format        string
	objectRoot    bool
	libraryRepair bool
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Repair and extract JSON from a saved model completion",
		Long: `Runs the extraction engine on a raw completion read from a file or stdin.

Exits non-zero when no data could be extracted. With --format result the
tagged result (status, strategy, warnings or diagnostic) is printed instead
of the records.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.finishReason, "finish-reason", "stop", "finish reason reported by the provider (stop, length, content_filter, ...)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatJSON, "output format: json, csv or result")
	cmd.Flags().BoolVar(&opts.objectRoot, "object-root", false, "prefer a top-level object over an array")
	cmd.Flags().BoolVar(&opts.libraryRepair, "library-repair", false, "try a general JSON repair library as a last resort")
	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, opts *extractOptions, args []string) error {
	if err := checkFormat(opts.format, formatJSON, formatCSV, formatResult); err != nil {
		return err
	}

	text, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	extractorOpts := []extract.Option{extract.WithObserver(root.observer(cmd))}
	if opts.objectRoot {
		extractorOpts = append(extractorOpts, extract.WithObjectRoot())
	}
	if opts.libraryRepair {
		extractorOpts = append(extractorOpts, extract.WithLibraryRepair())
	}

	result := extract.New(extractorOpts...).Extract(cmd.Context(), extract.RawCompletion{
		Text:         text,
		FinishReason: extract.ParseFinishReason(opts.finishReason),
	})

	out := cmd.OutOrStdout()
	switch opts.format {
	case formatResult:
		if err := export.WriteJSON(out, newResultView(result), true); err != nil {
			return err
		}
	case formatCSV:
		if result.Status != extract.StatusFailed {
			if err := export.WriteCSV(out, result.JSON); err != nil {
				return err
			}
		}
	default:
		if result.Status != extract.StatusFailed {
			if err := export.WriteJSON(out, result.JSON, true); err != nil {
				return err
			}
		}
	}

	if result.Status == extract.StatusFailed {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", result.Err())
		return errFailed
	}
	if result.Incomplete() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: the completion was cut short, data may be incomplete")
	}
	return nil
}

// resultView is the printable form of an extract.Result.
type resultView struct {
	Status    string          `json:"status"`
	Strategy  string          `json:"strategy,omitempty"`
	Trimmed   bool            `json:"trimmed,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"`
	Error     string          `json:"error,omitempty"`
	Excerpt   string          `json:"excerpt,omitempty"`
}

func newResultView(r extract.Result) resultView {
	v := resultView{
		Status:   r.Status.String(),
		Strategy: r.Strategy,
		Trimmed:  r.Trimmed,
	}
	for _, w := range r.Warnings {
		v.Warnings = append(v.Warnings, string(w))
	}
	if r.JSON != "" {
		v.Value = json.RawMessage(r.JSON)
	}
	if d := r.Diagnostic; d != nil {
		v.ErrorKind = d.Kind.String()
		v.Error = d.Error()
		v.Excerpt = d.Excerpt
	}
	return v
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read completion: %w", err)
	}
	return string(b), nil
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %v)", format, allowed)
}
