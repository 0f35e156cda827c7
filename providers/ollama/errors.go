package ollama

import "errors"

// Error is an explicit error reported by Ollama in an otherwise successful
// reply, e.g. {"error": "model 'x' not found"}.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "Ollama error: " + e.Message
}

// ErrNullReply is returned when the reply body is the JSON literal null.
var ErrNullReply = errors.New("invalid reply: expected JSON object, got null")
