package store

// manifest.go tracks every input file ever offered to the pipeline,
// keyed on the SHA-256 of its contents. The manifest is bookkeeping for
// operators — the engine itself re-derives consolidated output from the
// full input set each run and never consults load status.

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Manifest statuses, in lifecycle order.
const (
	StatusNew     = "NEW"
	StatusLoaded  = "LOADED"
	StatusSkipped = "SKIPPED"
	StatusFailed  = "FAILED"
)

// UpsertManifest records a newly seen file. A digest already present is
// left untouched so earlier terminal statuses survive reruns.
func UpsertManifest(ctx context.Context, db DBTX, runID, path, digest string, sizeBytes int64) error {
	_, err := db.Exec(ctx, `
		INSERT INTO etl.file_manifest (run_id, source_file, file_sha256, size_bytes, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (file_sha256) DO NOTHING`,
		runID, path, digest, sizeBytes, StatusNew,
	)
	if err != nil {
		return fmt.Errorf("upsert manifest for %s: %w", path, err)
	}
	return nil
}

// MarkManifest sets a file's terminal status for this run.
func MarkManifest(ctx context.Context, db DBTX, digest, status string, rowsLoaded pgtype.Int8, errorMessage string) error {
	msg := pgtype.Text{String: errorMessage, Valid: errorMessage != ""}
	_, err := db.Exec(ctx, `
		UPDATE etl.file_manifest
		SET status = $2, rows_loaded = $3, error_message = $4, updated_at = now()
		WHERE file_sha256 = $1`,
		digest, status, rowsLoaded, msg,
	)
	if err != nil {
		return fmt.Errorf("mark manifest %s: %w", digest, err)
	}
	return nil
}

// ManifestStatus returns the recorded status for a digest, or "" when
// the file has never been seen.
func ManifestStatus(ctx context.Context, db DBTX, digest string) (string, error) {
	var status string
	err := db.QueryRow(ctx,
		"SELECT status FROM etl.file_manifest WHERE file_sha256 = $1", digest,
	).Scan(&status)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("manifest status %s: %w", digest, err)
	}
	return status, nil
}
