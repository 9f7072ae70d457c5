package analyses

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Completion payload:
// {
//   "biasScore": number,
//   "feedback": ["string", ...],          non-empty
//   "recommendations": ["string", ...]    required per scenario
// }

// DecodeResult parses the completion content into a Result. Any shape
// problem yields a *ValidationError; the score is passed through as sent.
func DecodeResult(content string, requireRecommendations bool) (Result, error) {
	body := stripCodeFences(content)
	if body == "" {
		return Result{}, &ValidationError{Reason: "empty content"}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return Result{}, &ValidationError{Reason: "not a JSON object: " + err.Error()}
	}

	var out Result
	score, ok := fields["biasScore"]
	if !ok || isNull(score) {
		return Result{}, &ValidationError{Field: "biasScore", Reason: "missing"}
	}
	if err := json.Unmarshal(score, &out.BiasScore); err != nil {
		return Result{}, &ValidationError{Field: "biasScore", Reason: "not a number"}
	}

	feedback, err := stringList(fields, "feedback", true)
	if err != nil {
		return Result{}, err
	}
	out.Feedback = feedback

	recommendations, err := stringList(fields, "recommendations", requireRecommendations)
	if err != nil {
		return Result{}, err
	}
	out.Recommendations = recommendations

	return out, nil
}

// stringList decodes fields[name] as a list of strings. A required list must
// be present and non-empty; an optional one may be absent or null.
func stringList(fields map[string]json.RawMessage, name string, required bool) ([]string, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		if required {
			return nil, &ValidationError{Field: name, Reason: "missing"}
		}
		return nil, nil
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ValidationError{Field: name, Reason: "not an array"}
	}
	if required && len(items) == 0 {
		return nil, &ValidationError{Field: name, Reason: "empty"}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, &ValidationError{Field: name, Reason: "contains a non-string element"}
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// stripCodeFences removes a surrounding ```json ... ``` block some models add
// even in JSON mode.
func stripCodeFences(content string) string {
	text := strings.TrimSpace(content)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
