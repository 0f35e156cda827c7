package retry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fastPolicy keeps backoff waits in the millisecond range for tests.
func fastPolicy() Policy {
	return Policy{InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
}

// statusSequenceServer answers with statuses[i] on the i-th request and the
// last element afterwards.
func statusSequenceServer(t *testing.T, statuses ...int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&calls, 1)) - 1
		if n >= len(statuses) {
			n = len(statuses) - 1
		}
		w.WriteHeader(statuses[n])
		fmt.Fprintf(w, "attempt %d", n+1)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestTransport_SuccessOnFirstTry(t *testing.T) {
	server, calls := statusSequenceServer(t, http.StatusOK)
	client := &http.Client{Transport: NewTransport(nil, fastPolicy())}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("expected 1 call, got %d", atomic.LoadInt32(calls))
	}
}

// TestTransport_RetryThenSuccess verifies that two 503 responses followed by a
// 200 succeed within the three-attempt budget.
func TestTransport_RetryThenSuccess(t *testing.T) {
	server, calls := statusSequenceServer(t, http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK)
	client := &http.Client{Transport: NewTransport(nil, fastPolicy())}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "attempt 3" {
		t.Errorf("expected third attempt to succeed, got %d %q", resp.StatusCode, body)
	}
	if atomic.LoadInt32(calls) != 3 {
		t.Errorf("expected 3 calls, got %d", atomic.LoadInt32(calls))
	}
}

// TestTransport_ExhaustedReturnsLastResponse verifies that a persistent 503
// is attempted exactly three times and the final response is handed back.
func TestTransport_ExhaustedReturnsLastResponse(t *testing.T) {
	server, calls := statusSequenceServer(t, http.StatusServiceUnavailable)
	client := &http.Client{Transport: NewTransport(nil, fastPolicy())}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected final 503, got %d", resp.StatusCode)
	}
	if atomic.LoadInt32(calls) != 3 {
		t.Errorf("expected 3 calls, got %d", atomic.LoadInt32(calls))
	}
}

func TestTransport_NonRetryableStatus(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusBadRequest, http.StatusNotImplemented} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server, calls := statusSequenceServer(t, status)
			client := &http.Client{Transport: NewTransport(nil, fastPolicy())}

			resp, err := client.Get(server.URL)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			resp.Body.Close()

			if atomic.LoadInt32(calls) != 1 {
				t.Errorf("expected no retry for %d, got %d calls", status, atomic.LoadInt32(calls))
			}
		})
	}
}

// failingRoundTripper fails the first failures calls, then delegates.
type failingRoundTripper struct {
	failures int32
	calls    int32
	next     http.RoundTripper
}

func (f *failingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if n <= f.failures {
		return nil, errors.New("connection reset by peer")
	}
	return f.next.RoundTrip(req)
}

func TestTransport_ConnectionErrorRetried(t *testing.T) {
	server, _ := statusSequenceServer(t, http.StatusOK)
	base := &failingRoundTripper{failures: 2, next: http.DefaultTransport}
	client := &http.Client{Transport: NewTransport(base, fastPolicy())}

	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if atomic.LoadInt32(&base.calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", atomic.LoadInt32(&base.calls))
	}
}

func TestTransport_ConnectionErrorExhausted(t *testing.T) {
	base := &failingRoundTripper{failures: 100, next: http.DefaultTransport}
	client := &http.Client{Transport: NewTransport(base, fastPolicy())}

	_, err := client.Get("http://example.invalid/")
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("expected ErrRetryExhausted, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection reset by peer") {
		t.Errorf("expected last underlying error in message, got %v", err)
	}
	if atomic.LoadInt32(&base.calls) != 3 {
		t.Errorf("expected 3 attempts, got %d", atomic.LoadInt32(&base.calls))
	}
}

// TestTransport_ContextCancelledDuringBackoff verifies that cancellation
// during the wait between attempts stops the loop.
func TestTransport_ContextCancelledDuringBackoff(t *testing.T) {
	server, calls := statusSequenceServer(t, http.StatusServiceUnavailable)
	transport := NewTransport(nil, Policy{InitialBackoff: time.Hour})
	client := &http.Client{Transport: transport}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	start := time.Now()
	_, err := client.Do(req)
	if err == nil {
		t.Fatal("expected context error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("backoff wait was not interrupted by the context")
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", atomic.LoadInt32(calls))
	}
}

// TestTransport_RetryAfterCapped verifies that a large Retry-After is capped
// by MaxBackoff instead of stalling the request.
func TestTransport_RetryAfterCapped(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "3600")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewTransport(nil, fastPolicy())}
	start := time.Now()
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if time.Since(start) > 5*time.Second {
		t.Errorf("Retry-After should be capped at MaxBackoff")
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 calls, got %d", atomic.LoadInt32(&calls))
	}
}

// TestTransport_ReplaysBody verifies that request bodies are re-sent on retry.
func TestTransport_ReplaysBody(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		n := len(bodies)
		mu.Unlock()
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewTransport(nil, fastPolicy())}
	resp, err := client.Post(server.URL, "text/plain", bytes.NewReader([]byte("payload")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(bodies) != 2 || bodies[0] != "payload" || bodies[1] != "payload" {
		t.Errorf("expected body replayed on retry, got %q", bodies)
	}
}

func TestTransport_HookSeesEveryAttempt(t *testing.T) {
	server, _ := statusSequenceServer(t, http.StatusInternalServerError, http.StatusOK)

	var mu sync.Mutex
	var seen []int
	hook := func(_ *http.Request, attempt int, resp *http.Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			t.Errorf("unexpected hook error: %v", err)
			return
		}
		seen = append(seen, attempt*1000+resp.StatusCode)
	}

	client := &http.Client{Transport: NewTransport(nil, fastPolicy(), WithHook(hook))}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != 1500 || seen[1] != 2200 {
		t.Errorf("unexpected hook observations: %v", seen)
	}
}

// TestTransport_ConcurrentCallsIndependent verifies that concurrent requests
// through one transport each get a full retry budget.
func TestTransport_ConcurrentCallsIndependent(t *testing.T) {
	var mu sync.Mutex
	perPath := map[string]int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		perPath[r.URL.Path]++
		n := perPath[r.URL.Path]
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := &http.Client{Transport: NewTransport(nil, fastPolicy())}

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := client.Get(fmt.Sprintf("%s/page-%d", server.URL, i))
			if err != nil {
				errs <- err
				return
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				errs <- fmt.Errorf("page-%d: status %d", i, resp.StatusCode)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
