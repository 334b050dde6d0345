// Package llm provides the judgment engine used to refine heuristic
// analyst scores into final signals.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Completer generates a text completion for a system prompt and user
// prompt pair.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Call requests a completion and unmarshals the response into T. The
// response may wrap the JSON in markdown fences or surrounding prose.
// On any failure (transport, empty response, parse) the fallback value
// is returned with ok=false; Call never returns an error, by contract
// the caller always gets a usable T.
func Call[T any](ctx context.Context, c Completer, system, prompt string, fallback func() T) (T, bool) {
	raw, err := c.Complete(ctx, system, prompt)
	if err != nil {
		return fallback(), false
	}

	payload := ExtractJSON(raw)
	if payload == "" {
		return fallback(), false
	}

	var out T
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return fallback(), false
	}

	return out, true
}

// ExtractJSON pulls the first JSON object out of a completion that may
// wrap it in markdown fences or surrounding prose. Returns "" when no
// object is found.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip a ```json ... ``` fence if present
	if idx := strings.Index(raw, "```"); idx >= 0 {
		rest := raw[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			raw = rest[:end]
		} else {
			raw = rest
		}
		raw = strings.TrimSpace(raw)
	}

	start := strings.Index(raw, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		ch := raw[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return raw[start : i+1]
				}
			}
		}
	}

	return ""
}
