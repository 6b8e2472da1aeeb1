package engine

import "testing"

func testRefPeople() []RefPerson {
	return []RefPerson{
		{Code: "100001", Surname: "Rossi", GivenName: "Mario"},
		{Code: "100002", Surname: "Bianchi", GivenName: "Anna"},
		{Code: "100003", Surname: "Verdi", GivenName: "Luca"},
		// Two distinct people sharing a printed name.
		{Code: "100004", Surname: "Ferrari", GivenName: "Giulia"},
		{Code: "100005", Surname: "Ferrari", GivenName: "Giulia"},
	}
}

func TestNameIndex_Lookup(t *testing.T) {
	ix := BuildNameIndex(testRefPeople())

	tests := []struct {
		name      string
		surname   string
		givenName string
		wantCode  string
		wantCount int
	}{
		{"unique match", "Rossi", "Mario", "100001", 1},
		{"case insensitive", "ROSSI", "mario", "100001", 1},
		{"accent folded", "Vérdi", "Lucà", "100003", 1},
		{"extra whitespace", " Bianchi ", "Anna", "100002", 1},
		{"no match", "Neri", "Paolo", "", 0},
		{"ambiguous", "Ferrari", "Giulia", "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, count := ix.Lookup(tt.surname, tt.givenName)
			if code != tt.wantCode {
				t.Errorf("code = %q, want %q", code, tt.wantCode)
			}
			if count != tt.wantCount {
				t.Errorf("count = %d, want %d", count, tt.wantCount)
			}
		})
	}
}

func TestBuildNameIndex_SkipsEmptyNames(t *testing.T) {
	ix := BuildNameIndex([]RefPerson{
		{Code: "1", Surname: "", GivenName: ""},
		{Code: "2", Surname: "Rossi", GivenName: "Mario"},
	})
	if ix.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ix.Len())
	}
}

func TestResolve_ExplicitCodePassthrough(t *testing.T) {
	spec := ResolutionSpec{CodeField: "matricola", SurnameField: "cognome", GivenNameField: "nome"}
	ix := BuildNameIndex(testRefPeople())

	rec := TypedRecord{Fields: map[string]Value{
		"matricola": textVal("999999"),
		// Name points at a real reference person, but the code wins.
		"cognome": textVal("Rossi"),
		"nome":    textVal("Mario"),
	}}

	code, count := Resolve(rec, spec, ix)
	if !code.Valid || code.String != "999999" {
		t.Errorf("code = %+v, want explicit 999999", code)
	}
	if count.Valid {
		t.Errorf("match count should be null when the code is explicit, got %+v", count)
	}
}

func TestResolve_UniqueMatch(t *testing.T) {
	spec := ResolutionSpec{CodeField: "matricola", SurnameField: "cognome", GivenNameField: "nome"}
	ix := BuildNameIndex(testRefPeople())

	rec := TypedRecord{Fields: map[string]Value{
		"matricola": StringValue{},
		"cognome":   textVal("Bianchi"),
		"nome":      textVal("Anna"),
	}}

	code, count := Resolve(rec, spec, ix)
	if !code.Valid || code.String != "100002" {
		t.Errorf("code = %+v, want 100002", code)
	}
	if !count.Valid || count.Int32 != 1 {
		t.Errorf("match count = %+v, want 1", count)
	}
}

func TestResolve_Ambiguous(t *testing.T) {
	spec := ResolutionSpec{CodeField: "matricola", SurnameField: "cognome", GivenNameField: "nome"}
	ix := BuildNameIndex(testRefPeople())

	rec := TypedRecord{Fields: map[string]Value{
		"matricola": StringValue{},
		"cognome":   textVal("Ferrari"),
		"nome":      textVal("Giulia"),
	}}

	code, count := Resolve(rec, spec, ix)
	if code.Valid {
		t.Errorf("code must stay null on an ambiguous match, got %q", code.String)
	}
	if !count.Valid || count.Int32 != 2 {
		t.Errorf("match count = %+v, want 2", count)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	spec := ResolutionSpec{CodeField: "matricola", SurnameField: "cognome", GivenNameField: "nome"}
	ix := BuildNameIndex(testRefPeople())

	rec := TypedRecord{Fields: map[string]Value{
		"matricola": StringValue{},
		"cognome":   textVal("Neri"),
		"nome":      textVal("Paolo"),
	}}

	code, count := Resolve(rec, spec, ix)
	if code.Valid {
		t.Errorf("code must stay null with no match, got %q", code.String)
	}
	if !count.Valid || count.Int32 != 0 {
		t.Errorf("match count = %+v, want 0", count)
	}
}

func TestResolve_BothNamesNull(t *testing.T) {
	spec := ResolutionSpec{CodeField: "matricola", SurnameField: "cognome", GivenNameField: "nome"}
	ix := BuildNameIndex(testRefPeople())

	rec := TypedRecord{Fields: map[string]Value{
		"matricola": StringValue{},
		"cognome":   StringValue{},
		"nome":      StringValue{},
	}}

	code, count := Resolve(rec, spec, ix)
	if code.Valid {
		t.Error("code must stay null when no name is present")
	}
	if !count.Valid || count.Int32 != 0 {
		t.Errorf("match count = %+v, want 0", count)
	}
}
