package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/leofalp/pagelens/providers/tool/urlanalysis"
	"github.com/spf13/cobra"
)

func callCmd(opts *globalOptions) *cobra.Command {
	var (
		toolName string
		input    string
	)

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Call a registered tool with raw JSON input",
		Long: `Call a registered tool exactly as an MCP client would, without a server.

The input is lenient JSON: code fences and small syntax errors are repaired
before decoding. Use --input - to read it from stdin.`,
		Example: `  pagelens call --input '{"url": "example.com", "query": "pricing"}'
  echo '{"url": "example.com"}' | pagelens call --input -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "-" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				input = string(raw)
			}
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("--input is required")
			}

			cfg, err := loadConfig(cmd, opts, nil)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			t, ok := a.catalog.Get(toolName)
			if !ok {
				return fmt.Errorf("unknown tool %q (available: %s)", toolName, strings.Join(a.catalog.Names(), ", "))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			output, err := t.Call(ctx, input)
			if err != nil {
				return err
			}

			var pretty bytes.Buffer
			if json.Indent(&pretty, []byte(output), "", "  ") != nil {
				pretty.Reset()
				pretty.WriteString(output)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
			return err
		},
	}

	cmd.Flags().StringVar(&toolName, "tool", urlanalysis.Name, "tool to call")
	cmd.Flags().StringVarP(&input, "input", "i", "", "tool input as JSON, or - for stdin")
	return cmd
}
