package entities

import "github.com/politodata/phd-etl/internal/engine"

func init() {
	registerCorsi()
	registerDettaglioCorso()
	registerCollaborazioni()
}

// registerCorsi defines per-course enrollment rows. Older extracts omit
// the student matricola and print only the name, so it is name-resolved
// before the surrogate key is derived; unresolved rows drop out with a
// null key rather than guessing.
func registerCorsi() {
	engine.Register(engine.EntityDefinition{
		Name:  "corsi",
		Table: "core.corsi",
		Fields: []engine.FieldSpec{
			{Name: "cod_ins", Rule: engine.RuleString, Required: true},
			{Name: "anno", Rule: engine.RuleYear, Required: true},
			{Name: "matricola", Rule: engine.RuleString},
			{Name: "cognome", Rule: engine.RuleString},
			{Name: "nome", Rule: engine.RuleString},
			{Name: "cod_insegnamento", Rule: engine.RuleString},
			{Name: "cod_corso_dottorato", Rule: engine.RuleString},
			{Name: "periodo_didattico", Rule: engine.RuleString},
			{Name: "stato", Rule: engine.RuleString},
		},
		Key: engine.KeySpec{Fields: []string{"cod_ins", "anno", "matricola"}},
		Resolution: &engine.ResolutionSpec{
			CodeField:      "matricola",
			SurnameField:   "cognome",
			GivenNameField: "nome",
		},
	})
}

// registerDettaglioCorso defines teaching staff assignments and workload
// per course edition. Placeholder rows are dropped at ingest.
func registerDettaglioCorso() {
	engine.Register(engine.EntityDefinition{
		Name:  "dettaglio_corso",
		Table: "core.dettaglio_corso",
		Fields: []engine.FieldSpec{
			{Name: "cod_ins", Rule: engine.RuleString, Required: true},
			{Name: "anno", Rule: engine.RuleYear, Required: true},
			{Name: "tipo", Rule: engine.RuleString},
			{Name: "docente", Rule: engine.RuleString, Required: true},
			{Name: "stato", Rule: engine.RuleString},
			{Name: "ssd", Rule: engine.RuleString},
			{Name: "ore_lezione", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "ore_esercitazione", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "ore_laboratorio", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "ore_tutorato", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "anni_insegnamento", Rule: engine.RuleString},
		},
		Key: engine.KeySpec{Fields: []string{"cod_ins", "anno", "docente", "tipo"}},
	})
}

func registerCollaborazioni() {
	engine.Register(engine.EntityDefinition{
		Name:  "collaborazioni",
		Table: "core.collaborazioni",
		Fields: []engine.FieldSpec{
			{Name: "matricola_dott", Rule: engine.RuleString},
			{Name: "cognome", Rule: engine.RuleString, Required: true},
			{Name: "nome", Rule: engine.RuleString, Required: true},
			{Name: "ciclo", Rule: engine.RuleInt},
			{Name: "tutor", Rule: engine.RuleString},
			{Name: "ore", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "tipo_attivita", Rule: engine.RuleString},
			{Name: "materia", Rule: engine.RuleString},
			{Name: "docente", Rule: engine.RuleString},
			{Name: "corso_di_laurea", Rule: engine.RuleString},
		},
		Key: engine.KeySpec{Fields: []string{"matricola_dott", "materia", "tipo_attivita", "docente"}},
		Resolution: &engine.ResolutionSpec{
			CodeField:      "matricola_dott",
			SurnameField:   "cognome",
			GivenNameField: "nome",
		},
	})
}
