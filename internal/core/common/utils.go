package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

const fence = "```"

// ParseJSON extracts a JSON object from a model response and unmarshals it
// into T. A fenced block wins over the surrounding prose; otherwise the
// outermost braces are used.
func ParseJSON[T any](response string) (T, error) {
	var zero T

	body := fenced(response)
	start := strings.IndexByte(body, '{')
	if start == -1 {
		return zero, fmt.Errorf("no JSON object found in response (missing '{')")
	}
	end := strings.LastIndexByte(body, '}')
	if end < start {
		return zero, fmt.Errorf("no JSON object found in response (missing '}')")
	}
	raw := body[start : end+1]

	var result T
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, Clip(raw, 400))
	}
	return result, nil
}

func fenced(s string) string {
	open := strings.Index(s, fence)
	if open == -1 {
		return s
	}
	rest := s[open+len(fence):]
	// drop the language tag, if any
	if nl := strings.IndexByte(rest, '\n'); nl != -1 && !strings.Contains(rest[:nl], "{") {
		rest = rest[nl+1:]
	}
	closing := strings.Index(rest, fence)
	if closing == -1 {
		return s
	}
	return rest[:closing]
}

// Clip shortens s to at most n bytes for prompts and error messages.
func Clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
