package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ErrEmptyInput is returned for blank input.
var ErrEmptyInput = errors.New("empty input")

// DecodeLenient decodes a JSON object into T, tolerating the mistakes that
// hand-written or model-written tool arguments commonly contain.
//
// Recovery steps, in order:
//  1. strict decoding;
//  2. decoding after stripping a surrounding Markdown code fence;
//  3. decoding after jsonrepair (single quotes, unquoted keys, trailing
//     commas, missing braces);
//  4. decoding after unwrapping schema-style {"type": ..., "value": ...}
//     pairs into their values.
//
// Example:
//
//	type Input struct {
//	    URL string `json:"url"`
//	}
//
//	in, err := DecodeLenient[Input](`{url: 'https://example.com',}`)
func DecodeLenient[T any](content string) (T, error) {
	var result T

	content = strings.TrimSpace(content)
	if content == "" {
		return result, ErrEmptyInput
	}

	strictErr := decodeStrict(content, &result)
	if strictErr == nil {
		return result, nil
	}

	if unfenced, ok := stripCodeFence(content); ok {
		if err := decodeStrict(unfenced, &result); err == nil {
			return result, nil
		}
		content = unfenced
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return result, fmt.Errorf("invalid JSON input: %w (repair failed: %v)", strictErr, err)
	}
	if err := decodeStrict(repaired, &result); err == nil {
		return result, nil
	}

	unwrapped, err := unwrapSchemaValues(repaired)
	if err == nil {
		if err = decodeStrict(unwrapped, &result); err == nil {
			return result, nil
		}
	}
	return result, fmt.Errorf("invalid JSON input for %T: %w", result, strictErr)
}

// decodeStrict decodes exactly one JSON value into target, rejecting
// trailing data.
func decodeStrict(content string, target any) error {
	decoder := json.NewDecoder(strings.NewReader(content))
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// stripCodeFence removes a ```json ... ``` wrapper.
func stripCodeFence(content string) (string, bool) {
	if !strings.HasPrefix(content, "```") || !strings.HasSuffix(content, "```") || len(content) < 6 {
		return "", false
	}
	inner := content[3 : len(content)-3]
	if newline := strings.IndexByte(inner, '\n'); newline >= 0 {
		if header := strings.TrimSpace(inner[:newline]); header == "" || !strings.ContainsAny(header, "{[\"") {
			inner = inner[newline+1:]
		}
	}
	return strings.TrimSpace(inner), true
}

// unwrapSchemaValues replaces every {"type": ..., "value": v} object with v.
//
//	{"url": {"type": "string", "value": "https://x"}}  →  {"url": "https://x"}
func unwrapSchemaValues(content string) (string, error) {
	var data any
	decoder := json.NewDecoder(bytes.NewReader([]byte(content)))
	decoder.UseNumber()
	if err := decoder.Decode(&data); err != nil {
		return "", err
	}

	unwrapped, err := json.Marshal(unwrap(data))
	if err != nil {
		return "", err
	}
	return string(unwrapped), nil
}

func unwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if _, hasType := v["type"]; hasType {
			if value, hasValue := v["value"]; hasValue && len(v) == 2 {
				return unwrap(value)
			}
		}
		for key, value := range v {
			v[key] = unwrap(value)
		}
		return v
	case []any:
		for i, value := range v {
			v[i] = unwrap(value)
		}
		return v
	default:
		return data
	}
}
