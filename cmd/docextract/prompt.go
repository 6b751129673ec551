package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/docextract/core/pipeline"
)

func newPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the default extraction prompt",
		Long: `Prints the prompt template "run" uses when no --prompt-file is given.
Save it, edit it and pass it back with --prompt-file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprint(cmd.OutOrStdout(), pipeline.DefaultPrompt)
			return err
		},
	}
}
