package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/leofalp/pagelens/core/pipeline"
	"github.com/spf13/cobra"
)

func analyzeCmd(opts *globalOptions) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze one page and print the result envelope",
		Long: `Fetch the page at <url>, extract its text and ask the model to analyze it.

The JSON result envelope is printed to stdout. The command exits with status
1 when the envelope reports an error.`,
		Example: `  pagelens analyze example.com
  pagelens analyze https://go.dev/doc --query "release cadence"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, nil)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			envelope := a.analyzer.Process(ctx, args[0], query)
			if err := printEnvelope(cmd.OutOrStdout(), envelope); err != nil {
				return err
			}
			if !envelope.OK() {
				return errAnalysisFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "topic the analysis should focus on")
	return cmd
}

func printEnvelope(w io.Writer, envelope pipeline.Envelope) error {
	encoded, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
