package entities

import (
	"fmt"

	"github.com/politodata/phd-etl/internal/engine"
)

func init() {
	registerPubblicazioni()
	registerJournalDetails()
	registerStatPubb()
}

// registerPubblicazioni defines publication records after ingest has
// exploded the semicolon-joined author list into one row per author.
func registerPubblicazioni() {
	engine.Register(engine.EntityDefinition{
		Name:  "pubblicazioni",
		Table: "core.pubblicazioni",
		Fields: []engine.FieldSpec{
			{Name: "matricola", Rule: engine.RuleString, Required: true},
			{Name: "ciclo", Rule: engine.RuleInt, Required: true},
			{Name: "anno", Rule: engine.RuleYear},
			{Name: "tipo", Rule: engine.RuleString},
			{Name: "titolo", Rule: engine.RuleString, Required: true},
			{Name: "rivista", Rule: engine.RuleString},
			{Name: "autore", Rule: engine.RuleString, Required: true},
			{Name: "convegno", Rule: engine.RuleString},
			{Name: "referee", Rule: engine.RuleString},
			{Name: "grado_proprieta_dottorandi", Rule: engine.RuleString},
			{Name: "punteggio", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "grado_proprieta", Rule: engine.RuleString},
			{Name: "indicatore_r", Rule: engine.RuleString},
			{Name: "errore_val", Rule: engine.RuleString},
		},
		Key: engine.KeySpec{Fields: []string{"matricola", "ciclo", "anno", "titolo", "autore"}},
	})
}

// registerJournalDetails defines per-journal publication metadata. The
// export sometimes prints only the author's name, so the matricola is
// name-resolved against the student roster when missing.
func registerJournalDetails() {
	engine.Register(engine.EntityDefinition{
		Name:  "journal_details",
		Table: "core.journal_details",
		Fields: []engine.FieldSpec{
			{Name: "matricola", Rule: engine.RuleString},
			{Name: "cognome", Rule: engine.RuleString, Required: true},
			{Name: "nome", Rule: engine.RuleString, Required: true},
			{Name: "ciclo", Rule: engine.RuleInt},
			{Name: "titolo", Rule: engine.RuleString, Required: true},
			{Name: "rivista", Rule: engine.RuleString},
			{Name: "issn", Rule: engine.RuleString},
			{Name: "anno", Rule: engine.RuleYear},
			{Name: "quartile", Rule: engine.RuleString},
		},
		Key: engine.KeySpec{Fields: []string{"matricola", "anno", "titolo"}},
		Resolution: &engine.ResolutionSpec{
			CodeField:      "matricola",
			SurnameField:   "cognome",
			GivenNameField: "nome",
		},
	})
}

// registerStatPubb defines the per-student publication counters, with
// one counter column per quartile bucket as in the source extract.
func registerStatPubb() {
	fields := []engine.FieldSpec{
		{Name: "matricola", Rule: engine.RuleString},
		{Name: "cognome", Rule: engine.RuleString, Required: true},
		{Name: "nome", Rule: engine.RuleString, Required: true},
		{Name: "ciclo", Rule: engine.RuleInt},
		{Name: "numero_journal", Rule: engine.RuleInt},
		{Name: "numero_conferenze", Rule: engine.RuleInt},
		{Name: "numero_capitoli", Rule: engine.RuleInt},
		{Name: "numero_poster", Rule: engine.RuleInt},
		{Name: "numero_abstract", Rule: engine.RuleInt},
		{Name: "numero_brevetti", Rule: engine.RuleInt},
	}
	for q := 1; q <= 15; q++ {
		fields = append(fields, engine.FieldSpec{
			Name: fmt.Sprintf("quartile_%d", q),
			Rule: engine.RuleInt,
		})
	}

	engine.Register(engine.EntityDefinition{
		Name:   "stat_pubb",
		Table:  "core.stat_pubb",
		Fields: fields,
		Key:    engine.KeySpec{Natural: true, Fields: []string{"matricola"}},
		Resolution: &engine.ResolutionSpec{
			CodeField:      "matricola",
			SurnameField:   "cognome",
			GivenNameField: "nome",
		},
	})
}
