// Package observability defines the tracing interfaces and attribute
// conventions used by the pagelens pipeline.
//
// A [Tracer] opens a [Span] per pipeline stage; spans travel through a
// [context.Context] via [ContextWithSpan] and are read back by lower layers
// (for example the JSON POST helper) with [SpanFromContext]. The concrete
// implementation lives in the slogobs subpackage; [Noop] discards everything.
//
// semconv.go holds the attribute keys and span names shared by all callers.
package observability
