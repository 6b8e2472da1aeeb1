// Package engine consolidates loosely-structured registrar exports into
// clean, identity-stable entity tables. This package has no transport or
// storage dependencies and can be driven by any runner.
package engine

import (
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Rule identifies the coercion applied to a raw field value.
type Rule int

const (
	RuleString Rule = iota
	RuleInt
	RuleYear
	RuleDecimal
	RuleDate
)

// FieldSpec declares how one column of an entity is typed.
type FieldSpec struct {
	Name     string // Cleaned field name (snake_case, matches output column)
	Rule     Rule   // Coercion rule
	Required bool   // Column must exist in every batch (structural contract)
	ZeroNull bool   // Decimal only: coalesce null to 0 instead of propagating
}

// KeySpec declares how an entity's identifying key is formed.
// Natural keys copy the listed field values; surrogate keys hash them.
type KeySpec struct {
	Natural bool
	Fields  []string // Ordered; order is part of the fingerprint contract
}

// ResolutionSpec declares name-based foreign key resolution for entities
// whose exports sometimes carry only a printed name instead of a code.
type ResolutionSpec struct {
	CodeField      string // Field holding the explicit code when present
	SurnameField   string
	GivenNameField string
}

// EntityDefinition contains everything needed to run one entity's pipeline.
type EntityDefinition struct {
	Name       string // Registry key: "students", "attivita_interne", ...
	Table      string // Destination table, schema-qualified
	Fields     []FieldSpec
	Key        KeySpec
	Resolution *ResolutionSpec // nil when the entity never needs resolution
}

// FieldNames returns the declared field names in spec order.
func (d EntityDefinition) FieldNames() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the spec for a named field.
func (d EntityDefinition) Field(name string) (FieldSpec, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// RawRecord is one already-column-mapped row as handed over by extraction.
// A missing key means the field was absent in the source file.
type RawRecord map[string]string

// Batch is a set of raw records loaded from one source file.
type Batch struct {
	ID         string    // Batch identifier minted at ingest
	Entity     string    // Entity type the batch belongs to
	SourceFile string
	LoadedAt   time.Time
	Columns    []string // Mapped columns present in the source header
	Records    []RawRecord
}

// HasColumn reports whether the batch header carried the named column.
func (b Batch) HasColumn(name string) bool {
	for _, c := range b.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Value is a typed field value. Implementations wrap pgtype scalars so a
// value can be handed straight to pgx as a query parameter.
type Value interface {
	// IsNull reports whether the value is null.
	IsNull() bool
	// Canonical returns the stable serialization used for fingerprints
	// and comparisons. Undefined for null values; callers must check
	// IsNull first.
	Canonical() string
	// Param returns the value as a pgx query parameter.
	Param() any
}

// StringValue is a passthrough text field.
type StringValue struct{ Text pgtype.Text }

func (v StringValue) IsNull() bool      { return !v.Text.Valid }
func (v StringValue) Canonical() string { return v.Text.String }
func (v StringValue) Param() any        { return v.Text }

// IntValue is a strict non-negative integer field.
type IntValue struct{ Int pgtype.Int8 }

func (v IntValue) IsNull() bool      { return !v.Int.Valid }
func (v IntValue) Canonical() string { return strconv.FormatInt(v.Int.Int64, 10) }
func (v IntValue) Param() any        { return v.Int }

// DecimalValue is a locale-tolerant decimal field. The canonical form is
// the normalized input with "." as the separator, captured at coercion
// time so fingerprints never depend on pgtype.Numeric's internal encoding.
type DecimalValue struct {
	Num   pgtype.Numeric
	canon string
}

func (v DecimalValue) IsNull() bool      { return !v.Num.Valid }
func (v DecimalValue) Canonical() string { return v.canon }
func (v DecimalValue) Param() any        { return v.Num }

// DateValue is a day-month-year date field.
type DateValue struct{ Date pgtype.Date }

func (v DateValue) IsNull() bool      { return !v.Date.Valid }
func (v DateValue) Canonical() string { return v.Date.Time.Format("2006-01-02") }
func (v DateValue) Param() any        { return v.Date }

// BatchMeta carries load provenance through the pipeline stages.
type BatchMeta struct {
	BatchID    string
	SourceFile string
	LoadedAt   time.Time
}

// TypedRecord is a coerced row. Immutable once produced.
type TypedRecord struct {
	Fields map[string]Value
	Meta   BatchMeta
	// Seq is the record's position in run input order, used only as the
	// deterministic tie-break when two versions share a loaded_at.
	Seq int
}

// Get returns the typed value for a field; absent fields read as null.
func (r TypedRecord) Get(name string) Value {
	if v, ok := r.Fields[name]; ok && v != nil {
		return v
	}
	return StringValue{}
}

// IdentifiedRecord is a typed record with its resolved key.
// A record whose key is null is unusable and excluded from output.
type IdentifiedRecord struct {
	TypedRecord
	Key pgtype.Text
	// MatchCount is set only when name resolution was attempted without
	// an explicit code: 1 for a unique match, 0 or N>1 for ambiguity.
	MatchCount pgtype.Int4
}
