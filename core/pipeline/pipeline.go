package pipeline

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/leofalp/pagelens/providers/fetch"
	"github.com/leofalp/pagelens/providers/observability"
)

// Fetcher retrieves a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// Extractor turns a fetched body into prompt text.
type Extractor interface {
	Extract(body []byte, pageURL string) (string, error)
}

// Inferrer sends a prompt to the model and returns its analysis.
type Inferrer interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// Recorder receives per-invocation and per-stage measurements.
type Recorder interface {
	ObserveInvocation(status Status, kind Kind, elapsed time.Duration)
	ObserveStage(stage string, elapsed time.Duration)
}

// Analyzer runs fetch → extract → prompt → infer for one URL at a time.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	fetcher   Fetcher
	extractor Extractor
	inferrer  Inferrer
	prompts   PromptTemplate
	tracer    observability.Tracer
	logger    *slog.Logger
	recorder  Recorder
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithPromptTemplate overrides the prompt templates. Empty fields keep the
// defaults.
func WithPromptTemplate(prompts PromptTemplate) Option {
	return func(a *Analyzer) {
		a.prompts = prompts.withDefaults()
	}
}

// WithTracer sets the tracer used for invocation and stage spans.
func WithTracer(tracer observability.Tracer) Option {
	return func(a *Analyzer) {
		if tracer != nil {
			a.tracer = tracer
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(recorder Recorder) Option {
	return func(a *Analyzer) {
		a.recorder = recorder
	}
}

// New creates an Analyzer.
func New(fetcher Fetcher, extractor Extractor, inferrer Inferrer, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:   fetcher,
		extractor: extractor,
		inferrer:  inferrer,
		prompts:   DefaultPromptTemplate(),
		tracer:    observability.Noop(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Process analyses the page at url, focusing on query when it is not empty.
//
// It never returns an error: every failure, panics included, is folded into
// an error [Envelope] whose URL echoes the input.
func (a *Analyzer) Process(ctx context.Context, url, query string) (envelope Envelope) {
	start := time.Now()
	invocationID := uuid.NewString()

	ctx, span := a.tracer.StartSpan(ctx, observability.SpanProcess,
		observability.String(observability.AttrInvocationID, invocationID),
		observability.String(observability.AttrTargetURL, url),
		observability.String(observability.AttrQuery, query),
	)
	defer span.End()

	logger := a.logger.With(
		slog.String("invocation_id", invocationID),
		slog.String("url", url),
	)
	logger.InfoContext(ctx, "processing URL", slog.Bool("has_query", query != ""))

	var err error
	defer func() {
		if recovered := recover(); recovered != nil {
			err = &StageError{Kind: KindUnexpected, Err: newPanicError(recovered)}
			logger.ErrorContext(ctx, "recovered panic while processing URL",
				slog.Any("panic", recovered),
				slog.String("stack", string(debug.Stack())),
			)
			envelope = Failure(url, err)
		}
		a.finish(ctx, span, logger, envelope, err, time.Since(start))
	}()

	analysis, err := a.run(ctx, url, query)
	if err != nil {
		return Failure(url, err)
	}
	return Success(url, analysis)
}

func (a *Analyzer) run(ctx context.Context, url, query string) (string, error) {
	var page *fetch.Result
	err := a.stage(ctx, observability.SpanFetch, func(ctx context.Context, span observability.Span) error {
		var err error
		page, err = a.fetcher.Fetch(ctx, url)
		if err != nil {
			return err
		}
		span.SetAttributes(
			observability.Int(observability.AttrHTTPStatusCode, page.StatusCode),
			observability.Int(observability.AttrHTTPResponseBodySize, len(page.Body)),
		)
		return nil
	})
	if err != nil {
		return "", &StageError{Kind: KindFetch, Err: err}
	}

	var content string
	err = a.stage(ctx, observability.SpanExtract, func(ctx context.Context, span observability.Span) error {
		var err error
		content, err = a.extractor.Extract(page.UTF8(), page.URL)
		if err != nil {
			return err
		}
		span.SetAttributes(observability.Int(observability.AttrContentLength, len(content)))
		return nil
	})
	if err != nil {
		return "", &StageError{Kind: KindUnexpected, Err: &UnexpectedError{Err: err}}
	}
	if content == "" {
		return "", &StageError{Kind: KindEmptyContent, Err: ErrNoContent}
	}

	var prompt string
	_ = a.stage(ctx, observability.SpanPrompt, func(ctx context.Context, span observability.Span) error {
		prompt = a.prompts.Build(content, query)
		span.SetAttributes(observability.Int(observability.AttrPromptLength, len(prompt)))
		return nil
	})

	var analysis string
	err = a.stage(ctx, observability.SpanInfer, func(ctx context.Context, span observability.Span) error {
		var err error
		analysis, err = a.inferrer.Chat(ctx, prompt)
		return err
	})
	if err != nil {
		return "", &StageError{Kind: KindInference, Err: err}
	}
	return analysis, nil
}

// stage runs fn inside a child span and reports its duration.
func (a *Analyzer) stage(ctx context.Context, name string, fn func(context.Context, observability.Span) error) error {
	start := time.Now()
	ctx, span := a.tracer.StartSpan(ctx, name)
	defer span.End()
	defer func() {
		if a.recorder != nil {
			a.recorder.ObserveStage(name, time.Since(start))
		}
	}()

	if err := fn(ctx, span); err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		return err
	}
	span.SetStatus(observability.StatusOK, "")
	return nil
}

func (a *Analyzer) finish(ctx context.Context, span observability.Span, logger *slog.Logger, envelope Envelope, err error, elapsed time.Duration) {
	kind := KindOf(err)

	switch {
	case err == nil:
		span.SetStatus(observability.StatusOK, "")
		logger.InfoContext(ctx, "URL processed",
			slog.Int("analysis_length", len(envelope.Analysis)),
			slog.Duration("duration", elapsed),
		)
	case kind == KindEmptyContent:
		span.SetAttributes(observability.String(observability.AttrErrorKind, string(kind)))
		span.SetStatus(observability.StatusError, err.Error())
		logger.WarnContext(ctx, "no content extracted from URL", slog.Duration("duration", elapsed))
	default:
		span.SetAttributes(observability.String(observability.AttrErrorKind, string(kind)))
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		logger.ErrorContext(ctx, "error processing URL",
			slog.String("error", err.Error()),
			slog.String("error_kind", string(kind)),
			slog.Duration("duration", elapsed),
		)
	}

	if a.recorder != nil {
		a.recorder.ObserveInvocation(envelope.Status, kind, elapsed)
	}
}
