package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/politodata/phd-etl/internal/engine"
)

// LoadReference reads the authoritative (code, surname, given-name)
// tuples from the consolidated students table. The result feeds a
// per-run immutable name index; resolution never reads the table again
// during the run.
func LoadReference(ctx context.Context, db DBTX) ([]engine.RefPerson, error) {
	rows, err := db.Query(ctx,
		"SELECT matricola, cognome, nome FROM core.students ORDER BY matricola")
	if err != nil {
		return nil, fmt.Errorf("load reference students: %w", err)
	}
	defer rows.Close()

	var people []engine.RefPerson
	for rows.Next() {
		var code string
		var surname, given pgtype.Text
		if err := rows.Scan(&code, &surname, &given); err != nil {
			return nil, fmt.Errorf("scan reference student: %w", err)
		}
		people = append(people, engine.RefPerson{
			Code:      code,
			Surname:   surname.String,
			GivenName: given.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load reference students: %w", err)
	}
	return people, nil
}
