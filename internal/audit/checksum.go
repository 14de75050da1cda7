package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/veritrail/traild/internal/domain"
)

// checksumPayload is the canonical encoding of the write-once fields the
// tamper checksum covers. It includes the sanitized changes/before/after
// payloads: a checksum over identity fields alone would let a diff be
// rewritten without detection. Field order is fixed by the struct; map keys
// are sorted by encoding/json, so the encoding is deterministic.
type checksumPayload struct {
	ID         string                   `json:"id"`
	OccurredAt string                   `json:"occurred_at"`
	ActorType  string                   `json:"actor_type"`
	ActorID    string                   `json:"actor_id"`
	Action     string                   `json:"action"`
	EntityType string                   `json:"entity_type"`
	EntityID   string                   `json:"entity_id"`
	Changes    map[string]domain.Change `json:"changes,omitempty"`
	Before     map[string]any           `json:"before,omitempty"`
	After      map[string]any           `json:"after,omitempty"`
}

// Checksum computes the SHA-256 tamper checksum for an entry. The id and
// occurred_at are assigned in-process before insert, so the checksum is
// written with the row in a single statement; no row is ever visible
// without it.
func Checksum(entry *domain.AuditEntry) string {
	var actorID string
	if entry.ActorID != nil {
		actorID = entry.ActorID.String()
	}

	payload := checksumPayload{
		ID:         entry.ID.String(),
		OccurredAt: entry.OccurredAt.UTC().Format(time.RFC3339Nano),
		ActorType:  string(entry.ActorType),
		ActorID:    actorID,
		Action:     string(entry.Action),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Changes:    entry.Changes,
		Before:     entry.Before,
		After:      entry.After,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		// Payloads are sanitized maps of JSON-safe values; marshal can only
		// fail if a caller smuggled in an unmarshalable type. Hash the
		// identity fields alone rather than storing no checksum at all.
		b = []byte(payload.ID + "|" + payload.OccurredAt + "|" + payload.ActorType + "|" +
			payload.ActorID + "|" + payload.Action + "|" + payload.EntityType + "|" + payload.EntityID)
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the checksum from the entry's current contents and
// compares it to the stored one. False means the row was altered after
// write (or predates checksumming).
func Verify(entry *domain.AuditEntry) bool {
	return entry.Checksum != "" && Checksum(entry) == entry.Checksum
}
