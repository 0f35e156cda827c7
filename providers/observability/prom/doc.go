// Package prom exposes pagelens metrics to Prometheus: invocation counts and
// durations by outcome, per-stage durations, and attempt counters fed by the
// fetch retry transport and the inference retry loop.
package prom
