// Package parse decodes loosely formatted JSON tool arguments, such as the
// input passed to `pagelens call` or forwarded from a model, into typed
// structs. See [DecodeLenient].
package parse
