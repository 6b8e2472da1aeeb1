package engine

// consolidate.go collapses all loaded versions of each logical record
// into one current version. This is a pure grouping+selection pass over
// the full version set, re-derived wholesale on every run — never an
// incremental merge — which keeps it trivially testable and idempotent.

// Consolidate keeps, per distinct non-null key, the version with the
// latest loaded_at. Records with a null key are skipped; the caller
// accounts for them as excluded. Ties on loaded_at keep the version that
// appeared first in run input order (lowest Seq), so identical reruns
// are byte-identical. Output preserves first-seen key order.
func Consolidate(records []IdentifiedRecord) []IdentifiedRecord {
	best := make(map[string]IdentifiedRecord, len(records))
	order := make([]string, 0, len(records))

	for _, rec := range records {
		if !rec.Key.Valid {
			continue
		}
		k := rec.Key.String
		current, seen := best[k]
		if !seen {
			best[k] = rec
			order = append(order, k)
			continue
		}
		if supersedes(rec, current) {
			best[k] = rec
		}
	}

	out := make([]IdentifiedRecord, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

// supersedes reports whether candidate replaces current: strictly later
// loaded_at wins; an equal loaded_at never displaces the earlier-seen
// version.
func supersedes(candidate, current IdentifiedRecord) bool {
	if candidate.Meta.LoadedAt.After(current.Meta.LoadedAt) {
		return true
	}
	if candidate.Meta.LoadedAt.Equal(current.Meta.LoadedAt) {
		return candidate.Seq < current.Seq
	}
	return false
}
