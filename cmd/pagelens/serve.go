package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the process_url_with_llm tool over MCP",
		Long: `Serve the process_url_with_llm tool to MCP clients.

With --transport stdio (the default) the server speaks MCP over stdin and
stdout. With --transport http it serves the streamable HTTP transport at /mcp,
plus /healthz and Prometheus metrics at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, map[string]string{
				"transport": "server.transport",
				"addr":      "server.addr",
			})
			if err != nil {
				return err
			}
			a, err := newApp(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, a)
		},
	}

	cmd.Flags().StringP("transport", "t", "stdio", "MCP transport (stdio, http)")
	cmd.Flags().String("addr", ":8080", "listen address for the http transport")
	return cmd
}

func runServer(ctx context.Context, a *app) error {
	srv := a.server()
	a.logger.Info("starting MCP server",
		"transport", a.config.Server.Transport,
		"addr", a.config.Server.Addr,
		"version", Version,
	)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	a.logger.Info("MCP server stopped")
	return nil
}
