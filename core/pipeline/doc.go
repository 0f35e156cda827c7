// Package pipeline orchestrates one process_url_with_llm invocation:
// fetch the page, extract its text, build the prompt, ask the model and wrap
// the outcome in an [Envelope].
//
// The flow is linear and every exit path produces an envelope:
//
//	fetch fails          → {error, url, <fetch error message>}
//	no text extracted    → {error, url, "No content extracted from URL"}
//	inference fails      → {error, url, <last inference error message>}
//	anything else panics → {error, url, "unexpected error: ..."}
//	otherwise            → {success, url, analysis}
//
// Failures are also classified by [Kind] for logs and metrics.
package pipeline
