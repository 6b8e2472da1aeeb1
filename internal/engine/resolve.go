package engine

// resolve.go infers a missing foreign-key code by matching normalized
// surname/given-name pairs against the authoritative reference table.
// Exact-name matching is safe only when uniqueness holds, so anything
// other than a single candidate leaves the key null with the observed
// count recorded — a visible null beats a wrong guess, which would
// silently corrupt every downstream aggregation.

import "github.com/jackc/pgx/v5/pgtype"

// RefPerson is one authoritative reference tuple.
type RefPerson struct {
	Code      string
	Surname   string
	GivenName string
}

// NameIndex maps a normalized (surname, given-name) pair to its match
// count and, when the count is one, the single matched code. Built fresh
// per resolution pass and never mutated afterwards, so concurrent entity
// pipelines can share one snapshot.
type NameIndex struct {
	entries map[string]nameEntry
}

type nameEntry struct {
	code  string
	count int
}

// BuildNameIndex indexes reference tuples by their normalized name pair.
// Tuples with an empty surname and given name are skipped.
func BuildNameIndex(people []RefPerson) *NameIndex {
	ix := &NameIndex{entries: make(map[string]nameEntry, len(people))}
	for _, p := range people {
		k := nameKey(p.Surname, p.GivenName)
		if k == keySep {
			continue
		}
		e := ix.entries[k]
		e.count++
		e.code = p.Code
		ix.entries[k] = e
	}
	return ix
}

// Len returns the number of distinct normalized name pairs.
func (ix *NameIndex) Len() int { return len(ix.entries) }

// Lookup returns the candidate count for a name pair and, when exactly
// one reference entity matches, its code.
func (ix *NameIndex) Lookup(surname, givenName string) (code string, count int) {
	e, ok := ix.entries[nameKey(surname, givenName)]
	if !ok {
		return "", 0
	}
	if e.count != 1 {
		return "", e.count
	}
	return e.code, 1
}

func nameKey(surname, givenName string) string {
	return NormalizeKey(surname) + keySep + NormalizeKey(givenName)
}

// Resolve determines the entity's code from the reference index when the
// record carries only a printed name. With an explicit code present the
// resolver is a no-op and returns it unchanged with no match count.
// Otherwise the code is non-null only on a unique match; the observed
// candidate count is always returned for audit. Pure function over the
// record and the index snapshot.
func Resolve(rec TypedRecord, spec ResolutionSpec, ix *NameIndex) (code pgtype.Text, matchCount pgtype.Int4) {
	if existing := rec.Get(spec.CodeField); !existing.IsNull() {
		return pgtype.Text{String: existing.Canonical(), Valid: true}, pgtype.Int4{Valid: false}
	}

	var surname, given string
	if v := rec.Get(spec.SurnameField); !v.IsNull() {
		surname = v.Canonical()
	}
	if v := rec.Get(spec.GivenNameField); !v.IsNull() {
		given = v.Canonical()
	}
	var matched string
	var count int
	if surname != "" || given != "" {
		matched, count = ix.Lookup(surname, given)
	}

	matchCount = pgtype.Int4{Int32: int32(count), Valid: true}
	if count != 1 {
		return pgtype.Text{Valid: false}, matchCount
	}
	return pgtype.Text{String: matched, Valid: true}, matchCount
}
