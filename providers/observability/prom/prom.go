package prom

import (
	"net/http"
	"strconv"
	"time"

	"github.com/leofalp/pagelens/core/pipeline"
	"github.com/leofalp/pagelens/core/retry"
	"github.com/leofalp/pagelens/providers/ollama"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pagelens"

// Metrics holds the pagelens collectors on a private registry, so several
// instances can coexist (e.g. in tests). All methods are safe for concurrent
// use.
type Metrics struct {
	registry *prometheus.Registry

	invocations        *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	stageDuration      *prometheus.HistogramVec
	fetchAttempts      *prometheus.CounterVec
	inferenceAttempts  *prometheus.CounterVec
}

var _ pipeline.Recorder = (*Metrics)(nil)

// New creates and registers the collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invocations_total",
				Help:      "Total number of process_url_with_llm invocations.",
			},
			[]string{"status", "error_kind"},
		),
		invocationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "invocation_duration_seconds",
				Help:      "Duration of process_url_with_llm invocations.",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"status"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		fetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "Physical page fetch attempts, retries included, by response status.",
			},
			[]string{"status"},
		),
		inferenceAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "inference_attempts_total",
				Help:      "Inference attempts by outcome and reply kind.",
			},
			[]string{"outcome", "reply_kind"},
		),
	}

	m.registry.MustRegister(
		m.invocations,
		m.invocationDuration,
		m.stageDuration,
		m.fetchAttempts,
		m.inferenceAttempts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveInvocation implements pipeline.Recorder.
func (m *Metrics) ObserveInvocation(status pipeline.Status, kind pipeline.Kind, elapsed time.Duration) {
	m.invocations.WithLabelValues(string(status), kindLabel(kind)).Inc()
	m.invocationDuration.WithLabelValues(string(status)).Observe(elapsed.Seconds())
}

// ObserveStage implements pipeline.Recorder.
func (m *Metrics) ObserveStage(stage string, elapsed time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// FetchHook counts every physical fetch attempt. Connection-level failures
// are counted with status "error".
func (m *Metrics) FetchHook() retry.Hook {
	return func(_ *http.Request, _ int, resp *http.Response, err error) {
		status := "error"
		if err == nil && resp != nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		m.fetchAttempts.WithLabelValues(status).Inc()
	}
}

// InferenceHook counts every inference attempt.
func (m *Metrics) InferenceHook() ollama.AttemptHook {
	return func(_ int, kind ollama.ReplyKind, err error) {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		m.inferenceAttempts.WithLabelValues(outcome, kind.String()).Inc()
	}
}

func kindLabel(kind pipeline.Kind) string {
	if kind == pipeline.KindNone {
		return "none"
	}
	return string(kind)
}
