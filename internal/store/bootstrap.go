package store

// bootstrap.go creates the schemas and tables the pipeline writes to.
// Entity table DDL is generated from the registered definitions so the
// destination layout can never drift from the entity catalog.

import (
	"context"
	"fmt"
	"strings"

	"github.com/politodata/phd-etl/internal/engine"
)

var schemas = []string{"etl", "core"}

const manifestDDL = `
CREATE TABLE IF NOT EXISTS etl.file_manifest (
	file_sha256   TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL,
	source_file   TEXT NOT NULL,
	size_bytes    BIGINT NOT NULL,
	status        TEXT NOT NULL,
	rows_loaded   BIGINT,
	error_message TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Bootstrap ensures schemas, the manifest table, and one destination
// table per registered entity definition.
func Bootstrap(ctx context.Context, db DBTX) error {
	for _, schema := range schemas {
		if _, err := db.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
			return fmt.Errorf("create schema %s: %w", schema, err)
		}
	}
	if _, err := db.Exec(ctx, manifestDDL); err != nil {
		return fmt.Errorf("create manifest table: %w", err)
	}

	for _, def := range engine.All() {
		if _, err := db.Exec(ctx, EntityTableDDL(def)); err != nil {
			return fmt.Errorf("create table %s: %w", def.Table, err)
		}
	}
	return nil
}

// EntityTableDDL renders the destination table for one entity. Column
// order matches engine.OutputColumns.
func EntityTableDDL(def engine.EntityDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", def.Table)
	b.WriteString("\tkey TEXT PRIMARY KEY")
	for _, spec := range def.Fields {
		fmt.Fprintf(&b, ",\n\t%s %s", spec.Name, columnType(spec.Rule))
	}
	if def.Resolution != nil {
		b.WriteString(",\n\tmatch_count INTEGER")
	}
	b.WriteString(",\n\tsource_file TEXT NOT NULL")
	b.WriteString(",\n\tloaded_at TIMESTAMPTZ NOT NULL")
	b.WriteString(",\n\tbatch_id TEXT NOT NULL\n)")
	return b.String()
}

func columnType(r engine.Rule) string {
	switch r {
	case engine.RuleInt, engine.RuleYear:
		return "BIGINT"
	case engine.RuleDecimal:
		return "NUMERIC"
	case engine.RuleDate:
		return "DATE"
	default:
		return "TEXT"
	}
}
