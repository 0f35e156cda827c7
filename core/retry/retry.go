package retry

import (
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxAttempts is the total number of attempts, the first one included.
	DefaultMaxAttempts = 3
	// DefaultInitialBackoff is the wait before the first retry.
	DefaultInitialBackoff = time.Second
	// DefaultMaxBackoff caps every computed or server-requested wait.
	DefaultMaxBackoff = 30 * time.Second
	// DefaultBackoffFactor is the exponential growth multiplier.
	DefaultBackoffFactor = 2.0
)

// DefaultRetryableStatuses are the HTTP statuses treated as transient.
var DefaultRetryableStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// Policy holds the tuning parameters of a retry loop. A Policy is a value:
// it is resolved once by [Policy.Normalize] and never mutated afterwards, so
// a single Policy can be shared by concurrent callers.
type Policy struct {
	// MaxAttempts is the total number of attempts including the first.
	// Default: 3.
	MaxAttempts int

	// InitialBackoff is the wait before the first retry. Default: 1s.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed backoff and any Retry-After value.
	// Default: 30s.
	MaxBackoff time.Duration

	// BackoffFactor is the growth multiplier applied per retry
	// (wait = InitialBackoff * BackoffFactor^(retry-1)). Default: 2.0.
	BackoffFactor float64

	// RetryableStatuses lists response statuses that trigger a retry.
	// Default: 429, 500, 502, 503, 504.
	RetryableStatuses []int
}

// DefaultPolicy returns the policy used for page fetches: three attempts with
// 1s, 2s backoff between them.
func DefaultPolicy() Policy {
	return Policy{}.Normalize()
}

// Normalize returns a copy of p with zero-valued fields replaced by defaults.
func (p Policy) Normalize() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = DefaultInitialBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = DefaultMaxBackoff
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = DefaultBackoffFactor
	}
	if len(p.RetryableStatuses) == 0 {
		p.RetryableStatuses = DefaultRetryableStatuses
	}
	p.RetryableStatuses = slices.Clone(p.RetryableStatuses)
	return p
}

// Backoff returns the wait before the given retry (1 for the first retry,
// i.e. before the second attempt). The sequence is 1s, 2s, 4s ... with the
// defaults, capped at MaxBackoff.
func (p Policy) Backoff(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	base := float64(p.InitialBackoff) * math.Pow(p.BackoffFactor, float64(retry-1))
	if base > float64(p.MaxBackoff) {
		return p.MaxBackoff
	}
	return time.Duration(base)
}

// IsRetryableStatus reports whether a response status should be retried.
func (p Policy) IsRetryableStatus(code int) bool {
	return slices.Contains(p.RetryableStatuses, code)
}

// RetryAfter parses a Retry-After header from a 429 or 503 response. It
// accepts both delay-seconds and HTTP-date forms and reports false when the
// header is absent, malformed, or sent with another status.
func RetryAfter(resp *http.Response, now time.Time) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return 0, false
	}
	value := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	when, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	if wait := when.Sub(now); wait > 0 {
		return wait, true
	}
	return 0, true
}
