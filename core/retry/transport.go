package retry

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/leofalp/pagelens/internal/utils"
)

// drainLimit bounds how much of a discarded response body is read so the
// connection can go back to the pool.
const drainLimit = 64 << 10

// Hook observes every attempt made by a [Transport]. resp is nil when err is
// set. Hooks must not read or close resp.Body.
type Hook func(req *http.Request, attempt int, resp *http.Response, err error)

// Transport is an http.RoundTripper that retries transient failures of a
// single physical request: connection-level errors and the retryable statuses
// of its [Policy]. Attempt counters live on the stack of each RoundTrip call,
// so one Transport is safe for concurrent use and calls never affect each
// other's retry budget.
//
// When the last attempt still returns a retryable status, that response is
// returned as-is and the caller decides how to treat it. When the last
// attempt fails at the connection level the error wraps [ErrRetryExhausted].
type Transport struct {
	base   http.RoundTripper
	policy Policy
	logger *slog.Logger
	hook   Hook
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithLogger sets the logger used for retry warnings.
func WithLogger(logger *slog.Logger) TransportOption {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithHook registers a per-attempt observer, typically a metrics counter.
func WithHook(hook Hook) TransportOption {
	return func(t *Transport) {
		t.hook = hook
	}
}

// NewTransport wraps base (http.DefaultTransport when nil) with policy.
func NewTransport(base http.RoundTripper, policy Policy, opts ...TransportOption) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{
		base:   base,
		policy: policy.Normalize(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Policy returns the resolved policy of the transport.
func (t *Transport) Policy() Policy {
	return t.policy
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	for attempt := 1; ; attempt++ {
		attemptReq, err := rewind(req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := t.base.RoundTrip(attemptReq)
		if t.hook != nil {
			t.hook(req, attempt, resp, err)
		}

		if err == nil && !t.policy.IsRetryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if err != nil && ctx.Err() != nil {
			return nil, err
		}
		if attempt >= t.policy.MaxAttempts || !replayable(req) {
			if err != nil {
				if attempt > 1 {
					return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempt, err)
				}
				return nil, err
			}
			return resp, nil
		}

		wait := t.policy.Backoff(attempt)
		var reason string
		if err != nil {
			reason = err.Error()
		} else {
			reason = resp.Status
			if after, ok := RetryAfter(resp, time.Now()); ok {
				wait = min(after, t.policy.MaxBackoff)
			}
			utils.DrainAndClose(resp.Body, drainLimit)
		}

		t.logger.WarnContext(ctx, "retrying request",
			slog.String("method", req.Method),
			slog.String("url", req.URL.Redacted()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", t.policy.MaxAttempts),
			slog.Duration("backoff", wait),
			slog.String("reason", reason),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// replayable reports whether the request body can be sent again.
func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

// rewind returns the request to send for the given attempt, with a fresh body
// for attempts after the first.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 1 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewind request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}
