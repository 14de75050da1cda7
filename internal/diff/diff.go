// Package diff computes structured before/after field diffs between two
// attribute snapshots of the same entity.
package diff

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/veritrail/traild/internal/domain"
)

// housekeeping fields never appear in a diff; they churn on every write
// and carry no audit value.
var housekeeping = map[string]struct{}{
	"created_at":     {},
	"updated_at":     {},
	"deleted_at":     {},
	"remember_token": {},
}

// timeLayouts tried when normalizing string values that look like
// timestamps, so the same instant in two representations never diffs.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Changes returns the fields whose normalized values differ between
// original and current. Keys present on only one side diff against nil.
// Housekeeping fields are skipped. Deterministic: the same inputs always
// produce the same map.
func Changes(original, current map[string]any) map[string]domain.Change {
	changes := make(map[string]domain.Change)

	seen := make(map[string]struct{}, len(original)+len(current))
	for k := range original {
		seen[k] = struct{}{}
	}
	for k := range current {
		seen[k] = struct{}{}
	}

	for k := range seen {
		if _, skip := housekeeping[k]; skip {
			continue
		}
		from, to := original[k], current[k]
		if normalize(from) == normalize(to) {
			continue
		}
		changes[k] = domain.Change{From: from, To: to}
	}

	return changes
}

// normalize renders a value in canonical string form for comparison.
// Timestamps collapse to UTC RFC3339Nano regardless of input
// representation; structured values collapse to JSON (map keys sorted by
// encoding/json). Forms are prefixed by kind so values of different kinds
// never compare equal by accident.
func normalize(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case time.Time:
		return "t:" + t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return "null"
		}
		return "t:" + t.UTC().Format(time.RFC3339Nano)
	case string:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return "t:" + ts.UTC().Format(time.RFC3339Nano)
			}
		}
		return "s:" + t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			// Unmarshalable values (chans, funcs) fall back to fmt;
			// comparison stays deterministic either way.
			return fmt.Sprintf("%v", v)
		}
		return "j:" + string(b)
	}
}
