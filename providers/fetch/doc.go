// Package fetch retrieves web pages over HTTP/HTTPS for the analysis
// pipeline.
//
// A [Fetcher] owns one pooled http.Client whose transport is wrapped with a
// retry.Transport, so retries happen per physical request: up to three
// attempts on connection errors and 429/500/502/503/504 responses, waiting
// 1s and 2s in between. Every other failure (non-2xx status after retries,
// timeout, oversized body) is returned as a single [*Error].
//
// TLS certificate verification is disabled unless Config.VerifyTLS is set.
// This is deliberate: the tool targets arbitrary hosts, including ones with
// self-signed certificates. Turn it on wherever that is not needed.
package fetch
