package llm

import (
	"encoding/json"
	"fmt"
)

// Fields dropped from transcripts before display. Mostly provider noise:
// identifiers, token accounting, and per-message metadata.
var DefaultOmitFields = []string{
	"id",
	"tool_call_id",
	"usage",
	"finish_reason",
	"index",
	"model",
	"created",
	"system_fingerprint",
	"object",
}

// StripFields recursively walks v (after a JSON round-trip, so structs,
// maps, and slices all work) and drops the named keys at every level.
func StripFields(v interface{}, omit []string) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}

	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}

	omitSet := make(map[string]bool, len(omit))
	for _, name := range omit {
		omitSet[name] = true
	}

	return stripValue(decoded, omitSet), nil
}

func stripValue(v interface{}, omit map[string]bool) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(value))
		for k, inner := range value {
			if omit[k] {
				continue
			}
			result[k] = stripValue(inner, omit)
		}
		return result

	case []interface{}:
		result := make([]interface{}, len(value))
		for i, inner := range value {
			result[i] = stripValue(inner, omit)
		}
		return result

	default:
		return v
	}
}

// FormatTranscript renders a message history for human reading, with the
// noisy provider fields stripped.
func FormatTranscript(messages []Message) (string, error) {
	stripped, err := StripFields(messages, DefaultOmitFields)
	if err != nil {
		return "", err
	}

	pretty, err := json.MarshalIndent(stripped, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format transcript: %w", err)
	}

	return string(pretty), nil
}
