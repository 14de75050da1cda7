// Package redact scrubs sensitive fields from structured payloads before
// they reach durable storage. Matching is by key name only; values are
// never inspected.
package redact

import "strings"

// Sanitizer applies a Policy recursively to map payloads.
type Sanitizer struct {
	policy Policy
}

func NewSanitizer(policy Policy) *Sanitizer {
	return &Sanitizer{policy: policy}
}

// Sanitize returns a copy of payload with denied keys removed and masked
// keys partially obscured, at any nesting depth. The input map is never
// mutated. Nil input yields nil. Never panics on malformed input; values
// of unknown types pass through unchanged.
func (s *Sanitizer) Sanitize(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if s.policy.Denied(k) {
			continue
		}
		if s.policy.Masked(k) {
			out[k] = maskValue(v)
			continue
		}
		out[k] = s.sanitizeValue(v)
	}
	return out
}

// Denied reports whether the policy removes the given key. Exposed for
// callers that sanitize structures other than plain maps (e.g. diff maps
// keyed by field name).
func (s *Sanitizer) Denied(key string) bool {
	return s.policy.Denied(key)
}

// Value sanitizes a single value of any shape: maps and slices recurse,
// scalars pass through.
func (s *Sanitizer) Value(v any) any {
	return s.sanitizeValue(v)
}

func (s *Sanitizer) sanitizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return s.Sanitize(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = s.sanitizeValue(e)
		}
		return out
	default:
		return v
	}
}

// maskValue keeps the last four runes of a string and obscures the rest.
// Non-string values are replaced wholesale.
func maskValue(v any) any {
	str, ok := v.(string)
	if !ok {
		return "****"
	}
	runes := []rune(str)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
