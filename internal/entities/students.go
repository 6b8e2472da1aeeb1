package entities

import "github.com/politodata/phd-etl/internal/engine"

func init() {
	registerStudents()
}

// registerStudents defines the authoritative student roster. It is the
// only entity with a plain natural key and doubles as the reference set
// for every name-resolved foreign key elsewhere.
func registerStudents() {
	engine.Register(engine.EntityDefinition{
		Name:  "students",
		Table: "core.students",
		Fields: []engine.FieldSpec{
			{Name: "matricola", Rule: engine.RuleString, Required: true},
			{Name: "matricola_dipendente", Rule: engine.RuleString},
			{Name: "email", Rule: engine.RuleString},
			{Name: "cognome", Rule: engine.RuleString, Required: true},
			{Name: "nome", Rule: engine.RuleString, Required: true},
			{Name: "ciclo", Rule: engine.RuleInt},
			{Name: "tutore", Rule: engine.RuleString},
			{Name: "co_tutore", Rule: engine.RuleString},
			{Name: "status", Rule: engine.RuleString},
			{Name: "ore_soft_skills", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "ore_hard_skills", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "punti_soft_skills", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "punti_hard_skills", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "punti_attivita_fuorisede", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "punti_totali", Rule: engine.RuleDecimal, ZeroNull: true},
		},
		Key: engine.KeySpec{Natural: true, Fields: []string{"matricola"}},
	})
}
