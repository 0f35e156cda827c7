package utils

import (
	"encoding/json"
	"fmt"
)

// DefaultMaxStringLength is the preview size used for response bodies in errors and logs.
const DefaultMaxStringLength = 500

// JSONToString serialises object to compact JSON. On marshalling failure it
// returns a JSON-formatted error string, so the result is always safe to embed
// in log output or a tool result.
func JSONToString(object any) string {
	encoded, err := json.Marshal(object)
	if err != nil {
		return "{\"error\": \"failed to marshal to JSON: " + err.Error() + "\"}"
	}
	return string(encoded)
}

// TruncateString shortens s to at most maxLen bytes, appending a suffix that
// records the original length. A non-positive maxLen means [DefaultMaxStringLength].
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLength
	}
	if len(s) <= maxLen {
		return s
	}
	return fmt.Sprintf("%s... (truncated, total: %d chars)", s[:maxLen], len(s))
}
