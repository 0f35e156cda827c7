package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/leofalp/pagelens/core/config"
	"github.com/leofalp/pagelens/core/pipeline"
	"github.com/leofalp/pagelens/core/server"
	"github.com/leofalp/pagelens/providers/extract"
	"github.com/leofalp/pagelens/providers/fetch"
	"github.com/leofalp/pagelens/providers/observability"
	"github.com/leofalp/pagelens/providers/observability/prom"
	"github.com/leofalp/pagelens/providers/observability/slogobs"
	"github.com/leofalp/pagelens/providers/ollama"
	"github.com/leofalp/pagelens/providers/tool"
	"github.com/leofalp/pagelens/providers/tool/urlanalysis"
)

// app holds the wired components shared by every command.
type app struct {
	config   *config.Config
	logger   *slog.Logger
	metrics  *prom.Metrics
	analyzer *pipeline.Analyzer
	catalog  *tool.Catalog
}

// newApp wires the fetch, extract and inference providers into an analyzer
// and registers the analysis tool. Logs go to logOutput so stdout stays free
// for the stdio transport and command output.
func newApp(cfg *config.Config, logOutput io.Writer) (*app, error) {
	level, err := slogobs.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	format, err := slogobs.ParseFormat(cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	logger := slogobs.NewLogger(logOutput, level, format)
	slog.SetDefault(logger)

	extractor, err := extract.New(cfg.ExtractMode())
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	metrics := prom.New()

	fetcher := fetch.New(cfg.ToFetch(),
		fetch.WithLogger(logger),
		fetch.WithAttemptHook(metrics.FetchHook()),
	)

	inference := ollama.New(cfg.ToOllama()).
		WithLogger(logger).
		WithAttemptHook(metrics.InferenceHook())

	analyzer := pipeline.New(fetcher, extractor, inference,
		pipeline.WithPromptTemplate(cfg.Prompts()),
		pipeline.WithTracer(slogobs.New(logger)),
		pipeline.WithLogger(logger),
		pipeline.WithRecorder(metrics),
	)

	logger.Debug("pagelens configured",
		observability.AttrLLMEndpoint, inference.Config().Endpoint,
		observability.AttrLLMModel, inference.Config().Model,
		observability.AttrExtractMode, string(cfg.ExtractMode()),
		"verify_tls", cfg.Fetch.VerifyTLS,
	)

	return &app{
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
		analyzer: analyzer,
		catalog:  tool.NewCatalog(urlanalysis.New(analyzer)),
	}, nil
}

func (a *app) server() *server.Server {
	return server.New(a.config.ToServer(Version), a.catalog,
		server.WithMetricsHandler(a.metrics.Handler()),
		server.WithLogger(a.logger),
	)
}
