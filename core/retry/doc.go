// Package retry implements the bounded retry policy used for outbound page
// fetches.
//
// A [Policy] describes how many attempts are made, which HTTP statuses count
// as transient, and the exponential backoff between attempts. [Transport]
// applies a Policy at the transport layer, so every physical request made by
// an http.Client gets its own retry budget:
//
//	client := &http.Client{
//	    Transport: retry.NewTransport(http.DefaultTransport, retry.DefaultPolicy()),
//	}
//
// With the default policy a request is attempted at most three times, waiting
// 1s and then 2s between attempts, on connection errors and on 429, 500, 502,
// 503 and 504 responses. A Retry-After header on 429/503 responses overrides
// the computed wait, capped at MaxBackoff.
package retry
