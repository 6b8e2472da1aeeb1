package engine

// errors.go defines the one fatal error class the engine produces.
// Field-level coercion failures and ambiguous resolutions are absorbed
// as nulls and counters; only contract violations between the extraction
// collaborator and this engine abort an entity's run.

import (
	"errors"
	"fmt"
)

// StructuralError reports a contract violation that aborts one entity
// type's pipeline: a batch missing a required column, or reference data
// unavailable when the entity needs resolution. It carries enough
// context for operator diagnosis.
type StructuralError struct {
	Entity  string
	BatchID string
	Reason  string
}

func (e *StructuralError) Error() string {
	if e.BatchID == "" {
		return fmt.Sprintf("entity %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("entity %s, batch %s: %s", e.Entity, e.BatchID, e.Reason)
}

// IsStructural reports whether err is (or wraps) a StructuralError.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
