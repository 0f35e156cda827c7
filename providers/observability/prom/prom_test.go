package prom

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/pagelens/core/pipeline"
	"github.com/leofalp/pagelens/providers/ollama"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ObserveInvocation(t *testing.T) {
	m := New()

	m.ObserveInvocation(pipeline.StatusSuccess, pipeline.KindNone, time.Second)
	m.ObserveInvocation(pipeline.StatusError, pipeline.KindFetch, time.Second)
	m.ObserveInvocation(pipeline.StatusError, pipeline.KindFetch, time.Second)

	if got := testutil.ToFloat64(m.invocations.WithLabelValues("success", "none")); got != 1 {
		t.Errorf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.invocations.WithLabelValues("error", "fetch")); got != 2 {
		t.Errorf("expected 2 fetch errors, got %v", got)
	}
	if got := testutil.CollectAndCount(m.invocationDuration); got != 2 {
		t.Errorf("expected 2 duration series, got %d", got)
	}
}

func TestMetrics_FetchHook(t *testing.T) {
	m := New()
	hook := m.FetchHook()

	hook(nil, 1, &http.Response{StatusCode: http.StatusServiceUnavailable}, nil)
	hook(nil, 2, nil, errors.New("connection refused"))
	hook(nil, 3, &http.Response{StatusCode: http.StatusOK}, nil)

	for status, expected := range map[string]float64{"503": 1, "error": 1, "200": 1} {
		if got := testutil.ToFloat64(m.fetchAttempts.WithLabelValues(status)); got != expected {
			t.Errorf("status %s: expected %v, got %v", status, expected, got)
		}
	}
}

func TestMetrics_InferenceHook(t *testing.T) {
	m := New()
	hook := m.InferenceHook()

	hook(1, ollama.ReplyError, errors.New("Ollama error: boom"))
	hook(2, ollama.ReplyMessage, nil)

	if got := testutil.ToFloat64(m.inferenceAttempts.WithLabelValues("error", "error")); got != 1 {
		t.Errorf("expected 1 failed attempt, got %v", got)
	}
	if got := testutil.ToFloat64(m.inferenceAttempts.WithLabelValues("success", "message")); got != 1 {
		t.Errorf("expected 1 successful attempt, got %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveStage("pipeline.fetch", 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `pagelens_stage_duration_seconds_count{stage="pipeline.fetch"} 1`) {
		t.Errorf("stage histogram missing from output:\n%s", body)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected Go runtime metrics in output")
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.ObserveStage("x", time.Millisecond)

	if got := testutil.CollectAndCount(b.stageDuration); got != 0 {
		t.Errorf("expected independent registries, got %d series in b", got)
	}
}
