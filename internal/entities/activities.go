package entities

import "github.com/politodata/phd-etl/internal/engine"

func init() {
	registerAttivitaInterne()
	registerAttivitaEsterne()
	registerAttivitaFuorisede()
}

// Training activity exports carry no row identifier of their own, so all
// three families use surrogate keys over the fields that pin down one
// logical activity per student.

func registerAttivitaInterne() {
	engine.Register(engine.EntityDefinition{
		Name:  "attivita_interne",
		Table: "core.attivita_interne",
		Fields: []engine.FieldSpec{
			{Name: "matricola", Rule: engine.RuleString, Required: true},
			{Name: "ciclo", Rule: engine.RuleInt, Required: true},
			{Name: "cod_ins", Rule: engine.RuleString, Required: true},
			{Name: "nome_insegnamento", Rule: engine.RuleString},
			{Name: "ore", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "ore_riconosciute", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "voto", Rule: engine.RuleString},
			{Name: "coeff_voto", Rule: engine.RuleDecimal},
			{Name: "data_esame", Rule: engine.RuleDate},
			{Name: "tipo_form", Rule: engine.RuleString},
			{Name: "liv_esame", Rule: engine.RuleString},
			{Name: "tipo_attivita", Rule: engine.RuleString},
			{Name: "punti", Rule: engine.RuleDecimal, ZeroNull: true},
		},
		Key: engine.KeySpec{Fields: []string{"matricola", "ciclo", "cod_ins", "data_esame"}},
	})
}

func registerAttivitaEsterne() {
	engine.Register(engine.EntityDefinition{
		Name:  "attivita_esterne",
		Table: "core.attivita_esterne",
		Fields: []engine.FieldSpec{
			{Name: "matricola", Rule: engine.RuleString, Required: true},
			{Name: "ciclo", Rule: engine.RuleInt, Required: true},
			{Name: "denominazione", Rule: engine.RuleString, Required: true},
			{Name: "ore_dichiarate", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "ore_riconosciute", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "ore_calcolate", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "coeff_voto", Rule: engine.RuleDecimal},
			{Name: "punti", Rule: engine.RuleDecimal, ZeroNull: true},
			{Name: "tipo_form", Rule: engine.RuleString},
			{Name: "tipo_richiesta", Rule: engine.RuleString},
			{Name: "liv_esame", Rule: engine.RuleString},
			{Name: "data_attivita", Rule: engine.RuleDate},
			{Name: "data_convalida", Rule: engine.RuleDate},
		},
		Key: engine.KeySpec{Fields: []string{"matricola", "ciclo", "denominazione", "data_attivita"}},
	})
}

func registerAttivitaFuorisede() {
	engine.Register(engine.EntityDefinition{
		Name:  "attivita_fuorisede",
		Table: "core.attivita_fuorisede",
		Fields: []engine.FieldSpec{
			{Name: "matricola", Rule: engine.RuleString, Required: true},
			{Name: "ciclo", Rule: engine.RuleInt, Required: true},
			{Name: "denominazione", Rule: engine.RuleString, Required: true},
			{Name: "luogo", Rule: engine.RuleString},
			{Name: "ente", Rule: engine.RuleString},
			{Name: "periodo", Rule: engine.RuleString},
			{Name: "data_autorizzazione", Rule: engine.RuleDate},
			{Name: "data_aut_pagamento", Rule: engine.RuleDate},
			{Name: "data_attestazione", Rule: engine.RuleDate},
			{Name: "data_convalida", Rule: engine.RuleDate},
		},
		Key: engine.KeySpec{Fields: []string{"matricola", "ciclo", "denominazione", "periodo"}},
	})
}
