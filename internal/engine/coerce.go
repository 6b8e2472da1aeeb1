package engine

// coerce.go applies per-field strict parsing rules to normalized text.
//
// These functions handle the messy reality of manually-produced registrar
// exports: comma decimal separators, garbage in date columns, stray
// whitespace. A coercion rule never raises — invalid input is always
// representable as null, preserving the rest of the record. Null counts
// are surfaced by the pipeline so silent nulling stays observable.

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

var (
	// intRegex is deliberately strict: no sign, no separators, no decimals.
	intRegex  = regexp.MustCompile(`^\d+$`)
	yearRegex = regexp.MustCompile(`^\d{4}$`)

	// decimalRegex accepts an optional leading minus and either "." or ","
	// as the fractional separator, matching how the source files mix
	// Italian and US locales.
	decimalRegex = regexp.MustCompile(`^-?\d+([.,]\d+)?$`)

	// dateRegex matches day/month/year with 1-2 digit day and month and
	// exactly a 4-digit year.
	dateRegex = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
)

// dateLayouts are tried in order; time.Parse rejects impossible calendar
// dates such as 31/02, which is exactly the lenient-or-null policy wanted.
var dateLayouts = []string{"2/1/2006", "02/01/2006"}

// Coerce applies the field's declared rule to a raw value.
// Pure function over one field value; never panics, never errors.
func Coerce(raw string, spec FieldSpec) Value {
	switch spec.Rule {
	case RuleInt:
		return CoerceInt(raw)
	case RuleYear:
		return CoerceYear(raw)
	case RuleDecimal:
		return CoerceDecimal(raw, spec.ZeroNull)
	case RuleDate:
		return CoerceDate(raw)
	default:
		return StringValue{Text: Normalize(raw)}
	}
}

// CoerceInt parses a strict non-negative integer: digits only, no sign,
// no separators. Anything else becomes null.
func CoerceInt(raw string) Value {
	t := Normalize(raw)
	if !t.Valid || !intRegex.MatchString(t.String) {
		return IntValue{}
	}
	n, err := strconv.ParseInt(t.String, 10, 64)
	if err != nil {
		return IntValue{}
	}
	return IntValue{Int: pgtype.Int8{Int64: n, Valid: true}}
}

// CoerceYear parses a four-digit-year field: exactly 4 digits or null.
func CoerceYear(raw string) Value {
	t := Normalize(raw)
	if !t.Valid || !yearRegex.MatchString(t.String) {
		return IntValue{}
	}
	n, _ := strconv.ParseInt(t.String, 10, 64)
	return IntValue{Int: pgtype.Int8{Int64: n, Valid: true}}
}

// CoerceDecimal parses a decimal with either "." or "," as the fractional
// separator; the separator is normalized to "." before parsing. When
// zeroNull is set, a null result is coalesced to zero instead — a declared
// per-field policy for hours and points columns, not a universal rule.
func CoerceDecimal(raw string, zeroNull bool) Value {
	t := Normalize(raw)
	if t.Valid && decimalRegex.MatchString(t.String) {
		s := strings.ReplaceAll(t.String, ",", ".")
		var n pgtype.Numeric
		if err := n.Scan(s); err == nil {
			return DecimalValue{Num: n, canon: s}
		}
	}
	if zeroNull {
		var zero pgtype.Numeric
		if err := zero.Scan("0"); err == nil {
			return DecimalValue{Num: zero, canon: "0"}
		}
	}
	return DecimalValue{}
}

// CoerceDate parses day/month/year separated by "/". Non-conforming and
// impossible calendar dates become null, never an error.
func CoerceDate(raw string) Value {
	t := Normalize(raw)
	if !t.Valid || !dateRegex.MatchString(t.String) {
		return DateValue{}
	}
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, t.String)
		if err == nil {
			return DateValue{Date: pgtype.Date{Time: parsed, Valid: true}}
		}
	}
	return DateValue{}
}

// CoerceRecord applies every declared field rule to a raw record,
// producing an immutable typed record. Absent fields coerce as empty
// input, which maps to null (or zero under the zero-null policy).
func CoerceRecord(raw RawRecord, def EntityDefinition, meta BatchMeta, seq int) TypedRecord {
	fields := make(map[string]Value, len(def.Fields))
	for _, spec := range def.Fields {
		fields[spec.Name] = Coerce(raw[spec.Name], spec)
	}
	return TypedRecord{Fields: fields, Meta: meta, Seq: seq}
}
