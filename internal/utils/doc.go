// Package utils provides shared low-level helpers used by the pagelens
// providers: a synchronous JSON POST round-trip used by the inference client,
// response-body close and drain helpers used by the fetcher's retry transport,
// and string helpers for log-safe previews.
//
// Key entry points: [DoPostJSON] for JSON round-trips, [CloseWithLog] and
// [DrainAndClose] for response bodies, [TruncateString] for previews.
package utils
