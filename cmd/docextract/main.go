// Command docextract pulls structured records out of documents with an LLM
// and repairs the model's JSON when it comes back malformed or cut short.
//
//	docextract run report.pdf --format csv > report.csv
//	docextract extract completion.txt --finish-reason length
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/leofalp/docextract/providers/observability/slogobs"
)

// errFailed marks a command that produced its output but must still exit
// non-zero. The reason has already been printed.
var errFailed = errors.New("extraction failed")

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "docextract",
		Short: "Extract structured records from documents with an LLM",
		Long: `docextract sends each page of a document to a chat completion model and
turns the reply into JSON records, repairing truncated or malformed output.

Configuration is read from the environment (and a .env file):
  OPENAI_API_KEY        API key for the completion provider
  OPENAI_API_BASE_URL   base URL of an OpenAI-compatible API
  DOCEXTRACT_MODEL      default model for "run"
  DOCEXTRACT_LOG_LEVEL  debug, info, warn or error
  DOCEXTRACT_LOG_FORMAT compact or json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newExtractCmd(opts),
		newRunCmd(opts),
		newPromptCmd(),
	)
	return cmd
}

// observer logs to the command's error stream so stdout stays clean for
// records.
func (o *rootOptions) observer(cmd *cobra.Command) *slogobs.Observer {
	opts := []slogobs.Option{slogobs.WithOutput(cmd.ErrOrStderr())}
	if o.verbose {
		opts = append(opts, slogobs.WithLevel(slog.LevelDebug))
	}
	return slogobs.New(opts...)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
