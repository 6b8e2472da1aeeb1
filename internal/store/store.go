// Package store persists consolidated entity tables and load bookkeeping
// in Postgres. Writes are whole-table replacements per entity type;
// concurrent writers to different entity types are safe, writers to the
// same entity type must be serialized by the caller.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/politodata/phd-etl/internal/engine"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// insertChunkSize bounds the number of rows per multi-row INSERT.
const insertChunkSize = 500

// ReplaceEntity replaces the destination table's contents with the run's
// consolidated rows. Callers are expected to pass a transaction so the
// truncate and the inserts land atomically.
func ReplaceEntity(ctx context.Context, db DBTX, def engine.EntityDefinition, rows []engine.IdentifiedRecord) error {
	if _, err := db.Exec(ctx, "TRUNCATE "+def.Table); err != nil {
		return fmt.Errorf("truncate %s: %w", def.Table, err)
	}

	cols := engine.OutputColumns(def)
	for start := 0; start < len(rows); start += insertChunkSize {
		end := min(start+insertChunkSize, len(rows))
		sql, args := buildInsert(def, cols, rows[start:end])
		if _, err := db.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert into %s: %w", def.Table, err)
		}
	}
	return nil
}

// buildInsert renders one multi-row INSERT with positional placeholders.
func buildInsert(def engine.EntityDefinition, cols []string, rows []engine.IdentifiedRecord) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(def.Table)
	b.WriteString(" (")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(cols))
	for i, rec := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := 0; j < len(cols); j++ {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", len(args)+j+1)
		}
		b.WriteString(")")
		args = append(args, engine.OutputRow(def, rec)...)
	}
	return b.String(), args
}
