package ollama

import (
	"fmt"

	"github.com/leofalp/pagelens/internal/utils"
)

// ReplyKind identifies which field of a chat reply carried the text.
type ReplyKind int

const (
	// ReplyUnrecognized means neither message.content nor response was present;
	// Text holds the whole reply serialised as JSON.
	ReplyUnrecognized ReplyKind = iota
	// ReplyError means the reply carried a top-level "error" field.
	ReplyError
	// ReplyMessage means the text came from message.content (/api/chat).
	ReplyMessage
	// ReplyResponse means the text came from response (/api/generate).
	ReplyResponse
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyError:
		return "error"
	case ReplyMessage:
		return "message"
	case ReplyResponse:
		return "response"
	default:
		return "unrecognized"
	}
}

// Reply is a normalised Ollama reply.
type Reply struct {
	Kind ReplyKind
	Text string
}

// ParseReply normalises a decoded reply object.
//
// Precedence: a present "error" key short-circuits, then message.content,
// then response, then the raw reply itself. A "message" that is not an
// object is malformed and returns an error. A message object without
// "content" falls back to the raw reply.
func ParseReply(raw map[string]any) (Reply, error) {
	if value, ok := raw["error"]; ok {
		return Reply{Kind: ReplyError, Text: stringify(value)}, nil
	}

	if value, ok := raw["message"]; ok {
		message, isObject := value.(map[string]any)
		if !isObject {
			return Reply{}, fmt.Errorf("malformed reply: message is %s, expected object", jsonKind(value))
		}
		if content, ok := message["content"]; ok {
			return Reply{Kind: ReplyMessage, Text: stringify(content)}, nil
		}
		return Reply{Kind: ReplyUnrecognized, Text: utils.JSONToString(raw)}, nil
	}

	if value, ok := raw["response"]; ok {
		return Reply{Kind: ReplyResponse, Text: stringify(value)}, nil
	}

	return Reply{Kind: ReplyUnrecognized, Text: utils.JSONToString(raw)}, nil
}

// stringify returns strings as-is, null as "" and anything else as JSON.
func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return utils.JSONToString(v)
	}
}

func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	case []any:
		return "an array"
	default:
		return fmt.Sprintf("%T", value)
	}
}
