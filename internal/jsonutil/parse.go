// Package jsonutil parses JSON objects out of LLM responses, which routinely
// arrive wrapped in markdown code fences or surrounded by prose.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripFences removes a ```json ... ``` (or bare ```) wrapper, returning the
// inner content, or the input unchanged when there is no fence.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 3 {
		return text
	}

	end := len(lines) - 1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			end = i
			break
		}
	}
	return strings.Join(lines[1:end], "\n")
}

// extractObject returns the outermost JSON object embedded in text: from the
// first '{' through the last '}'.
func extractObject(text string) (string, error) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found")
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return "", fmt.Errorf("no closing brace found")
	}
	return text[start : end+1], nil
}

// ParseObject strips markdown fences from a raw LLM response, extracts the
// embedded JSON object and unmarshals it into T.
func ParseObject[T any](raw string) (T, error) {
	var out T

	text, err := extractObject(stripFences(raw))
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return out, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return out, nil
}
