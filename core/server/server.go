package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/leofalp/pagelens/providers/tool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Transport selects how the MCP server is reached.
type Transport string

const (
	// TransportStdio serves one client over stdin/stdout.
	TransportStdio Transport = "stdio"
	// TransportHTTP serves the streamable HTTP transport at /mcp.
	TransportHTTP Transport = "http"
)

// ParseTransport resolves a transport name. The empty string selects stdio.
func ParseTransport(s string) (Transport, error) {
	switch Transport(strings.ToLower(strings.TrimSpace(s))) {
	case "", TransportStdio:
		return TransportStdio, nil
	case TransportHTTP:
		return TransportHTTP, nil
	default:
		return "", fmt.Errorf("unknown transport %q (valid: stdio, http)", s)
	}
}

const (
	DefaultName     = "pagelens"
	DefaultAddr     = ":8080"
	ShutdownTimeout = 10 * time.Second
)

// Config holds the server settings.
type Config struct {
	Name      string
	Version   string
	Transport Transport
	Addr      string
}

// Server exposes a tool catalog over MCP.
type Server struct {
	config  Config
	mcp     *mcp.Server
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler serves handler at /metrics on the HTTP transport.
func WithMetricsHandler(handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = handler
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server with every tool of catalog registered.
func New(config Config, catalog *tool.Catalog, opts ...Option) *Server {
	if config.Name == "" {
		config.Name = DefaultName
	}
	if config.Transport == "" {
		config.Transport = TransportStdio
	}
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}

	s := &Server{config: config, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: config.Name, Version: config.Version}, nil)
	catalog.RegisterAll(s.mcp)
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Handler returns the HTTP routes: /mcp, /healthz and, when configured,
// /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return mux
}

// Run serves until ctx is cancelled or the stdio client disconnects.
func (s *Server) Run(ctx context.Context) error {
	switch s.config.Transport {
	case TransportStdio:
		s.logger.InfoContext(ctx, "serving MCP over stdio", slog.String("name", s.config.Name))
		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	case TransportHTTP:
		listener, err := net.Listen("tcp", s.config.Addr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.config.Addr, err)
		}
		return s.Serve(ctx, listener)
	default:
		return fmt.Errorf("unknown transport %q", s.config.Transport)
	}
}

// Serve serves the HTTP routes on listener until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()
	s.logger.InfoContext(ctx, "serving MCP over HTTP", slog.String("addr", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
