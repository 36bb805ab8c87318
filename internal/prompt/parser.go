package prompt

import (
	"fmt"
	"strings"
)

// refusal markers checked case-insensitively against the raw model output
var refusalTokens = []string{"sorry", "can't", "cannot"}

// IsRefusal reports whether a raw model response reads like a content-policy
// refusal rather than an answer.
func IsRefusal(raw string) bool {
	lower := strings.ToLower(raw)
	for _, token := range refusalTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// ExtractJSONSpan cuts the substring from the first '{' to the last '}' of a
// raw model response. Models routinely wrap JSON in prose or markdown fences;
// the span is what gets parsed.
func ExtractJSONSpan(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return raw[start : end+1], nil
}
