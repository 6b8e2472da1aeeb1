package engine

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
)

func textVal(s string) Value {
	return StringValue{Text: pgtype.Text{String: s, Valid: true}}
}

func intVal(n int64) Value {
	return IntValue{Int: pgtype.Int8{Int64: n, Valid: true}}
}

func TestFingerprint_Stable(t *testing.T) {
	a := Fingerprint([]Value{textVal("123456"), textVal("Analisi II")})
	b := Fingerprint([]Value{textVal("123456"), textVal("Analisi II")})
	if a != b {
		t.Errorf("identical inputs produced different fingerprints: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
}

func TestFingerprint_OrderSensitive(t *testing.T) {
	a := Fingerprint([]Value{textVal("x"), textVal("y")})
	b := Fingerprint([]Value{textVal("y"), textVal("x")})
	if a == b {
		t.Error("reordered fields must change the fingerprint")
	}
}

func TestFingerprint_NullDistinctFromValues(t *testing.T) {
	null := StringValue{}
	a := Fingerprint([]Value{textVal("x"), null})
	b := Fingerprint([]Value{textVal("x"), textVal("")})
	c := Fingerprint([]Value{textVal("x"), textVal("null")})
	if a == b {
		t.Error("null must not collide with empty string")
	}
	if a == c {
		t.Error("null must not collide with the literal string \"null\"")
	}
}

func TestFingerprint_NoConcatenationCollision(t *testing.T) {
	// ("ab","c") and ("a","bc") concatenate identically without a
	// separator; the fingerprint must keep them distinct.
	a := Fingerprint([]Value{textVal("ab"), textVal("c")})
	b := Fingerprint([]Value{textVal("a"), textVal("bc")})
	if a == b {
		t.Error("field boundaries must be part of the fingerprint")
	}
}

func TestRecordKey_Surrogate(t *testing.T) {
	spec := KeySpec{Fields: []string{"matricola", "cod_ins"}}
	rec := TypedRecord{Fields: map[string]Value{
		"matricola": intVal(123456),
		"cod_ins":   textVal("01ABC"),
	}}

	key, ok := RecordKey(rec, spec)
	if !ok {
		t.Fatal("RecordKey returned ok=false for fully populated key fields")
	}
	want := Fingerprint([]Value{intVal(123456), textVal("01ABC")})
	if key != want {
		t.Errorf("RecordKey = %s, want %s", key, want)
	}
}

func TestRecordKey_Natural(t *testing.T) {
	spec := KeySpec{Natural: true, Fields: []string{"cod_ins", "anno"}}
	rec := TypedRecord{Fields: map[string]Value{
		"cod_ins": textVal("01ABC"),
		"anno":    intVal(2024),
	}}

	key, ok := RecordKey(rec, spec)
	if !ok {
		t.Fatal("RecordKey returned ok=false")
	}
	if key != "01ABC:2024" {
		t.Errorf("natural key = %q, want %q", key, "01ABC:2024")
	}
}

func TestRecordKey_NullField(t *testing.T) {
	spec := KeySpec{Fields: []string{"matricola", "cod_ins"}}
	rec := TypedRecord{Fields: map[string]Value{
		"matricola": intVal(123456),
		"cod_ins":   StringValue{},
	}}

	if _, ok := RecordKey(rec, spec); ok {
		t.Error("RecordKey must report ok=false when a key field is null")
	}
}

func TestRecordKey_AbsentField(t *testing.T) {
	spec := KeySpec{Fields: []string{"matricola"}}
	rec := TypedRecord{Fields: map[string]Value{}}

	if _, ok := RecordKey(rec, spec); ok {
		t.Error("RecordKey must report ok=false when a key field is absent")
	}
}
