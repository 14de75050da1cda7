package redact

import "strings"

// baseDenylist is shared by both ledger policies so the two cannot drift.
// Entries are lowercase substrings: any key whose lowercased name contains
// one is removed entirely.
var baseDenylist = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apikey",
	"private_key",
	"credential",
	"recovery_code",
	"card_number",
	"cvv",
	"cvc",
	"ssn",
	"authorization",
}

// Policy is the sensitive-field configuration for a sanitizer: which key
// names are dropped and which are partially masked. Pure data + matching,
// no I/O.
type Policy struct {
	deny []string
	mask map[string]struct{}
}

// NewPolicy builds a policy from explicit deny substrings and mask field
// names. All matching is case-insensitive.
func NewPolicy(deny, mask []string) Policy {
	p := Policy{
		deny: make([]string, 0, len(deny)),
		mask: make(map[string]struct{}, len(mask)),
	}
	for _, d := range deny {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			p.deny = append(p.deny, d)
		}
	}
	for _, m := range mask {
		if m = strings.ToLower(strings.TrimSpace(m)); m != "" {
			p.mask[m] = struct{}{}
		}
	}
	return p
}

// AuditPolicy is the denylist for audit snapshots and diffs. Extra entries
// (e.g. from config) extend the shared base list.
func AuditPolicy(extra ...string) Policy {
	deny := append(append([]string{}, baseDenylist...), "two_factor", "remember_")
	deny = append(deny, extra...)
	return NewPolicy(deny, []string{"phone", "account_number", "iban"})
}

// LogPolicy is the denylist for system-log context payloads. Slightly wider
// than AuditPolicy: logs also see transport-level state.
func LogPolicy(extra ...string) Policy {
	deny := append(append([]string{}, baseDenylist...), "cookie", "session_id", "otp")
	deny = append(deny, extra...)
	return NewPolicy(deny, []string{"phone", "account_number", "iban"})
}

// Denied reports whether a key must be removed.
func (p Policy) Denied(key string) bool {
	k := strings.ToLower(key)
	for _, d := range p.deny {
		if strings.Contains(k, d) {
			return true
		}
	}
	return false
}

// Masked reports whether a key's value should be partially masked rather
// than removed.
func (p Policy) Masked(key string) bool {
	_, ok := p.mask[strings.ToLower(key)]
	return ok
}
