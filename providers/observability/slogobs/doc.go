// Package slogobs implements observability.Tracer on top of log/slog and
// builds the process logger from configured level and format.
//
// Entry points: [New] for the tracer, [NewLogger] together with
// [ParseLogLevel] and [ParseFormat] for logger construction.
package slogobs
