package ollama

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/leofalp/pagelens/internal/utils"
	"github.com/leofalp/pagelens/providers/observability"
)

const (
	// DefaultEndpoint is the chat endpoint of a local Ollama instance.
	DefaultEndpoint = "http://localhost:11434/api/chat"
	// DefaultModel is the model every prompt is sent to.
	DefaultModel = "deepseek-r1"
	// DefaultMaxAttempts is the total number of attempts per prompt.
	DefaultMaxAttempts = 3
	// DefaultTimeout bounds a single attempt.
	DefaultTimeout = 120 * time.Second
)

// Config holds the client settings.
type Config struct {
	Endpoint    string
	Model       string
	MaxAttempts int
	Timeout     time.Duration
}

// DefaultConfig returns the configuration for a local Ollama instance.
func DefaultConfig() Config {
	return Config{
		Endpoint:    DefaultEndpoint,
		Model:       DefaultModel,
		MaxAttempts: DefaultMaxAttempts,
		Timeout:     DefaultTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// AttemptHook observes the outcome of every attempt. err is nil on success.
type AttemptHook func(attempt int, kind ReplyKind, err error)

// Client sends prompts to Ollama's /api/chat endpoint.
//
// The retry loop lives here rather than in the transport: an explicit
// "error" field in a 200 reply consumes an attempt just like a network
// failure. Attempts run back to back. A Client is safe for concurrent use.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
	hook   AttemptHook
}

// New returns a client for config, filling zero fields with defaults.
func New(config Config) *Client {
	return &Client{
		config: config.withDefaults(),
		client: &http.Client{},
		logger: slog.Default(),
	}
}

// WithHttpClient replaces the HTTP client used for requests.
func (c *Client) WithHttpClient(httpClient *http.Client) *Client {
	if httpClient != nil {
		c.client = httpClient
	}
	return c
}

// WithLogger sets the logger used for attempt logs.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithAttemptHook registers a hook called after every attempt.
func (c *Client) WithAttemptHook(hook AttemptHook) *Client {
	c.hook = hook
	return c
}

// Config returns the resolved configuration.
func (c *Client) Config() Config {
	return c.config
}

// Chat sends prompt as a single user message and returns the normalised reply
// text.
//
// When every attempt fails, the error of the last attempt is returned as-is so
// its message reaches the caller unchanged. A cancelled ctx stops the loop
// before the next attempt.
func (c *Client) Chat(ctx context.Context, prompt string) (string, error) {
	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMEndpoint, c.config.Endpoint),
			observability.String(observability.AttrLLMModel, c.config.Model),
		)
	}

	request := NewChatRequest(c.config.Model, prompt)

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return "", lastErr
			}
			return "", err
		}

		reply, err := c.attempt(ctx, request)
		if c.hook != nil {
			c.hook(attempt, reply.Kind, err)
		}
		if err == nil {
			if span != nil {
				span.SetAttributes(
					observability.Int(observability.AttrLLMAttempt, attempt),
					observability.String(observability.AttrLLMReplyKind, reply.Kind.String()),
				)
			}
			return reply.Text, nil
		}

		lastErr = err
		c.logger.WarnContext(ctx, "inference attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", c.config.MaxAttempts),
			slog.String("error", err.Error()),
		)
		if span != nil {
			span.AddEvent("llm.attempt.failed",
				observability.Int(observability.AttrLLMAttempt, attempt),
				observability.Error(err),
			)
		}
	}

	c.logger.ErrorContext(ctx, "all inference attempts failed",
		slog.Int("attempts", c.config.MaxAttempts),
		slog.String("error", lastErr.Error()),
	)
	return "", lastErr
}

func (c *Client) attempt(ctx context.Context, request ChatRequest) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	_, raw, err := utils.DoPostJSON[map[string]any](ctx, c.client, c.config.Endpoint, request)
	if err != nil {
		return Reply{}, err
	}
	if raw == nil || *raw == nil {
		return Reply{}, ErrNullReply
	}

	c.logger.DebugContext(ctx, "ollama reply", slog.String("body", utils.TruncateString(utils.JSONToString(*raw), 0)))

	reply, err := ParseReply(*raw)
	if err != nil {
		return Reply{}, err
	}
	if reply.Kind == ReplyError {
		return reply, &Error{Message: reply.Text}
	}
	return reply, nil
}
