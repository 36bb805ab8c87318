package service

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"google.golang.org/genai"
)

var (
	embeddedCodeRegex = regexp.MustCompile(`"code":(\d{3})`)
	leadingCodeRegex  = regexp.MustCompile(`^(\d{3})\s`)
)

// isRetryableGenerationError matches the transient failures of the image
// model: HTTP 429, HTTP 503, or an overload notice in the message.
func isRetryableGenerationError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code == 503
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded")
}

// isServiceFailure reports whether an error looks like a provider-side
// outage (5xx, rate limit, timeout) rather than a bad request.
func isServiceFailure(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	if strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded") {
		return true
	}
	if isRateLimitError(err) {
		return true
	}

	if code, ok := extractStatusCode(msg); ok {
		return code >= 500 && code < 600
	}
	return false
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, "Rate limit") || strings.Contains(msg, "quota") {
		return true
	}

	if code, ok := extractStatusCode(msg); ok {
		return code == 429
	}
	return false
}

// extractStatusCode digs an HTTP status out of provider error strings: the
// Gemini SDK embeds `"code":NNN`, the OpenAI SDK prefixes `NNN `.
func extractStatusCode(msg string) (int, bool) {
	if matches := embeddedCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, err := strconv.Atoi(matches[1]); err == nil {
			return code, true
		}
	}
	if matches := leadingCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, err := strconv.Atoi(matches[1]); err == nil {
			return code, true
		}
	}
	return 0, false
}
