package engine

// key.go derives the stable identifier for records that have no natural
// primary key. The fingerprint is content-addressed: identical field
// values (including identical nulls) always yield the identical key
// across runs and processes, and field order is part of the contract —
// reordering a key spec changes every stored identifier.

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	// keySep joins serialized key fields; nullMark serializes a null
	// field. Neither can appear in a normalized field value, so distinct
	// field vectors never collide by concatenation.
	keySep   = "\x1f"
	nullMark = "\x00"

	// naturalKeySep joins multi-field natural keys into a readable
	// identifier, e.g. "IN0123:2024".
	naturalKeySep = ":"
)

// RecordKey derives the record's key per the entity's key spec.
// ok is false when any key field is null after coercion; such records
// are unusable and must be excluded from consolidated output.
func RecordKey(rec TypedRecord, spec KeySpec) (key string, ok bool) {
	values := make([]Value, 0, len(spec.Fields))
	for _, name := range spec.Fields {
		v := rec.Get(name)
		if v.IsNull() {
			return "", false
		}
		values = append(values, v)
	}
	if spec.Natural {
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = v.Canonical()
		}
		return strings.Join(parts, naturalKeySep), true
	}
	return Fingerprint(values), true
}

// Fingerprint hashes canonical field values, in order, into a 256-bit
// content address rendered as lowercase hex. Nulls serialize to a fixed
// mark distinct from any real value. Always succeeds.
func Fingerprint(values []Value) string {
	h := sha256.New()
	for i, v := range values {
		if i > 0 {
			h.Write([]byte(keySep))
		}
		if v == nil || v.IsNull() {
			h.Write([]byte(nullMark))
			continue
		}
		h.Write([]byte(v.Canonical()))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// keyText wraps a derived key as a nullable text value.
func keyText(key string, ok bool) pgtype.Text {
	if !ok {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: key, Valid: true}
}
