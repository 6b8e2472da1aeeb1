package entities

import "github.com/politodata/phd-etl/internal/engine"

func init() {
	registerMobilita()
	registerOreFormazione()
}

func registerMobilita() {
	engine.Register(engine.EntityDefinition{
		Name:  "mobilita",
		Table: "core.mobilita",
		Fields: []engine.FieldSpec{
			{Name: "matricola", Rule: engine.RuleString, Required: true},
			{Name: "cognome", Rule: engine.RuleString},
			{Name: "nome", Rule: engine.RuleString},
			{Name: "tutore", Rule: engine.RuleString},
			{Name: "ciclo", Rule: engine.RuleInt},
			{Name: "tipo", Rule: engine.RuleString},
			{Name: "paese", Rule: engine.RuleString},
			{Name: "ente", Rule: engine.RuleString},
			{Name: "periodo", Rule: engine.RuleString},
			{Name: "durata_giorni", Rule: engine.RuleInt},
			{Name: "anno", Rule: engine.RuleYear},
			{Name: "data_autorizzazione", Rule: engine.RuleDate},
			{Name: "data_pagamento", Rule: engine.RuleDate},
		},
		Key: engine.KeySpec{Fields: []string{"matricola", "tipo", "ente", "periodo"}},
	})
}

// registerOreFormazione defines the per-student training hour summaries.
// One row per student, so the matricola is the natural key; extracts
// that omit it fall back to name resolution.
func registerOreFormazione() {
	engine.Register(engine.EntityDefinition{
		Name:  "ore_formazione",
		Table: "core.ore_formazione",
		Fields: []engine.FieldSpec{
			{Name: "matricola", Rule: engine.RuleString},
			{Name: "cognome", Rule: engine.RuleString, Required: true},
			{Name: "nome", Rule: engine.RuleString, Required: true},
			{Name: "ciclo", Rule: engine.RuleInt},
			{Name: "tutor", Rule: engine.RuleString},
			{Name: "ore_soft_skill", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "ore_hard_skill", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "ore_totali", Rule: engine.RuleDecimal, ZeroNull: true},
		},
		Key: engine.KeySpec{Natural: true, Fields: []string{"matricola"}},
		Resolution: &engine.ResolutionSpec{
			CodeField:      "matricola",
			SurnameField:   "cognome",
			GivenNameField: "nome",
		},
	})
}
