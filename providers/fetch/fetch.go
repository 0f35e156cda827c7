package fetch

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/leofalp/pagelens/core/retry"
	"github.com/leofalp/pagelens/internal/utils"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultTimeout bounds a whole page fetch, retries and backoff included.
	DefaultTimeout = 60 * time.Second
	// DefaultUserAgent is the default User-Agent header value
	DefaultUserAgent = "pagelens/1.0"
	// MaxBodySize is the default maximum response body size (10MB)
	MaxBodySize = 10 * 1024 * 1024
	// DialTimeout is the maximum time to wait for a TCP connection
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the maximum time to wait for TLS handshake
	TLSHandshakeTimeout = 10 * time.Second
	// IdleConnTimeout is the maximum time an idle connection can be reused
	IdleConnTimeout = 90 * time.Second
	// MaxRedirects is the number of redirects followed before giving up
	MaxRedirects = 10
)

// Config holds the fetcher settings. It is copied into the Fetcher at
// construction and never changes afterwards.
type Config struct {
	// Timeout bounds the whole fetch. Default: [DefaultTimeout].
	Timeout time.Duration

	// VerifyTLS enables certificate verification. It is OFF by default:
	// the tool is pointed at arbitrary hosts, self-signed ones included.
	VerifyTLS bool

	// UserAgent is sent with every request. Default: [DefaultUserAgent].
	UserAgent string

	// MaxBodySize caps the number of body bytes read. Default: [MaxBodySize].
	MaxBodySize int64

	// Retry is the transport-level retry policy.
	Retry retry.Policy
}

// DefaultConfig returns the configuration used by the process_url_with_llm tool.
func DefaultConfig() Config {
	return Config{
		Timeout:     DefaultTimeout,
		VerifyTLS:   false,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: MaxBodySize,
		Retry:       retry.DefaultPolicy(),
	}
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = MaxBodySize
	}
	c.Retry = c.Retry.Normalize()
	return c
}

// Result is a successfully fetched page.
type Result struct {
	// URL is the final URL after redirects.
	URL string
	// StatusCode is the final 2xx status.
	StatusCode int
	// ContentType is the Content-Type response header.
	ContentType string
	// Body is the raw response body.
	Body []byte
}

// UTF8 returns the body transcoded to UTF-8. The encoding comes from the
// Content-Type charset, a BOM or a <meta> declaration, in that order. The raw
// body is returned when it cannot be determined.
func (r *Result) UTF8() []byte {
	reader, err := charset.NewReader(bytes.NewReader(r.Body), r.ContentType)
	if err != nil {
		return r.Body
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return r.Body
	}
	return decoded
}

// Error is the single failure type returned by [Fetcher.Fetch]: connection
// errors, timeouts, oversized bodies and non-2xx statuses all surface as an
// *Error. StatusCode is zero when no final response was received.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrEmptyURL is returned for blank URLs.
var ErrEmptyURL = errors.New("URL cannot be empty")

// Fetcher performs GET requests with transport-level retry. A Fetcher holds a
// pooled http.Client and no per-call state; it is safe for concurrent use.
type Fetcher struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*options)

type options struct {
	logger *slog.Logger
	hook   retry.Hook
	base   http.RoundTripper
}

// WithLogger sets the logger used for fetch and retry logs.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAttemptHook observes every physical attempt, retries included.
func WithAttemptHook(hook retry.Hook) Option {
	return func(o *options) {
		o.hook = hook
	}
}

// WithBaseTransport replaces the underlying transport. The TLS setting of
// Config only applies to the default transport.
func WithBaseTransport(base http.RoundTripper) Option {
	return func(o *options) {
		o.base = base
	}
}

// New creates a Fetcher.
func New(config Config, opts ...Option) *Fetcher {
	config = config.withDefaults()

	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	base := o.base
	if base == nil {
		base = newBaseTransport(config)
	}

	return &Fetcher{
		config: config,
		logger: o.logger,
		client: &http.Client{
			Transport: retry.NewTransport(base, config.Retry,
				retry.WithLogger(o.logger),
				retry.WithHook(o.hook),
			),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= MaxRedirects {
					return fmt.Errorf("too many redirects (>%d)", MaxRedirects)
				}
				return nil
			},
		},
	}
}

func newBaseTransport(config Config) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !config.VerifyTLS, //nolint:gosec // configurable; off for arbitrary self-signed targets
		},
		TLSHandshakeTimeout: TLSHandshakeTimeout,
		IdleConnTimeout:     IdleConnTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		ForceAttemptHTTP2:   true,
	}
}

// Config returns the resolved configuration.
func (f *Fetcher) Config() Config {
	return f.config
}

// Fetch retrieves rawURL and returns its body.
//
// Partial URLs (e.g. "example.com") are normalised by prepending "https://".
// Transient failures are retried by the transport; whatever remains after the
// retry budget is returned as an [*Error].
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	target := strings.TrimSpace(rawURL)
	if target == "" {
		return nil, &Error{URL: rawURL, Err: ErrEmptyURL}
	}
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = "https://" + target
	}

	ctx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &Error{URL: target, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &Error{URL: target, Err: fmt.Errorf("request timeout or canceled: %w", err)}
		}
		return nil, &Error{URL: target, Err: fmt.Errorf("failed to fetch URL: %w", err)}
	}
	defer utils.CloseWithLog(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, &Error{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("timeout while reading response body: %w", err)}
		}
		return nil, &Error{URL: target, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return nil, &Error{
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("response body exceeds maximum size of %d bytes", f.config.MaxBodySize),
		}
	}

	f.logger.DebugContext(ctx, "page fetched",
		slog.String("url", target),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
	)

	return &Result{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
