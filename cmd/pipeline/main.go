// Command pipeline runs one full consolidation pass: it ingests every
// configured registrar export, rebuilds each entity's consolidated table
// wholesale, and records per-file outcomes in the load manifest.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/politodata/phd-etl/internal/config"
	"github.com/politodata/phd-etl/internal/engine"
	_ "github.com/politodata/phd-etl/internal/entities" // Register all entities
	"github.com/politodata/phd-etl/internal/ingest"
	"github.com/politodata/phd-etl/internal/logging"
	"github.com/politodata/phd-etl/internal/store"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Pipeline.Timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	if cfg.Pipeline.Bootstrap {
		if err := store.Bootstrap(ctx, pool); err != nil {
			slog.Error("bootstrap failed", "error", err)
			os.Exit(1)
		}
	}

	sources, err := ingest.LoadSources(cfg.Pipeline.SourcesFile)
	if err != nil {
		slog.Error("failed to load sources manifest", "error", err)
		os.Exit(1)
	}

	runID := uuid.NewString()
	log := logging.ForRun(runID)
	log.Info("run started", "sources", len(sources), "entities", engine.EntityCount())

	r := &runner{pool: pool, runID: runID, log: log}
	if failed := r.run(ctx, sources); failed > 0 {
		log.Error("run finished with failures", "failed_entities", failed)
		os.Exit(1)
	}
	log.Info("run complete")
}

type runner struct {
	pool  *pgxpool.Pool
	runID string
	log   *slog.Logger
}

// run executes every entity pipeline. The students pipeline runs first:
// its consolidated output is the reference set for name resolution in
// every other entity. Returns the number of failed entity runs.
func (r *runner) run(ctx context.Context, sources []ingest.Source) int {
	byEntity := make(map[string][]ingest.Source)
	var order []string
	for _, src := range sources {
		if _, ok := byEntity[src.Entity]; !ok && src.Entity != "students" {
			order = append(order, src.Entity)
		}
		byEntity[src.Entity] = append(byEntity[src.Entity], src)
	}

	failed := 0
	if _, ok := byEntity["students"]; ok {
		if err := r.runEntity(ctx, "students", byEntity["students"], nil); err != nil {
			// Without a fresh roster the reference set is stale at best;
			// resolution-dependent entities would fail anyway.
			r.log.Error("students pipeline failed, aborting run", "error", err)
			return 1 + len(order)
		}
	}

	ref, err := r.referenceIndex(ctx)
	if err != nil {
		r.log.Error("failed to build reference index", "error", err)
		return 1 + len(order)
	}

	for _, entity := range order {
		if err := r.runEntity(ctx, entity, byEntity[entity], ref); err != nil {
			r.log.Error("entity pipeline failed", "entity", entity, "error", err)
			failed++
		}
	}
	return failed
}

func (r *runner) referenceIndex(ctx context.Context) (*engine.NameIndex, error) {
	people, err := store.LoadReference(ctx, r.pool)
	if err != nil {
		return nil, err
	}
	ix := engine.BuildNameIndex(people)
	r.log.Info("reference index built", "students", len(people), "distinct_names", ix.Len())
	return ix, nil
}

// runEntity ingests all of one entity's sources, runs the consolidation
// pipeline, and replaces the destination table in a single transaction.
func (r *runner) runEntity(ctx context.Context, entity string, sources []ingest.Source, ref *engine.NameIndex) error {
	def, ok := engine.Get(entity)
	if !ok {
		return &engine.StructuralError{Entity: entity, Reason: "no registered entity definition"}
	}
	log := logging.WithFields(r.log, "entity", entity)

	var batches []engine.Batch
	for _, src := range sources {
		read, skipped, err := ingest.ReadSource(src)
		if err != nil {
			return err
		}
		for _, path := range skipped {
			r.recordFile(ctx, log, path, store.StatusSkipped, 0, "empty file")
		}
		batches = append(batches, read...)
	}
	log.Info("ingest complete", "batches", len(batches))
	if len(batches) == 0 {
		// No input at all means a misconfigured glob far more often than
		// a genuinely empty universe; leave the current table alone.
		log.Warn("no input batches, keeping existing consolidated table")
		return nil
	}

	result, err := engine.NewPipeline(def, log).Run(batches, ref)
	if err != nil {
		for _, b := range batches {
			r.recordFile(ctx, log, b.SourceFile, store.StatusFailed, 0, err.Error())
		}
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := store.ReplaceEntity(ctx, tx, def, result.Rows); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	perBatch := rowsPerBatch(result.Rows)
	for _, b := range batches {
		r.recordFile(ctx, log, b.SourceFile, store.StatusLoaded, perBatch[b.ID], "")
	}
	log.Info("entity consolidated",
		"rows", result.Stats.Output,
		"excluded", result.Stats.Excluded,
		"ambiguous", result.Stats.Ambiguous,
	)
	return nil
}

// recordFile upserts and marks one file in the load manifest. Manifest
// trouble is logged but never fails a run; it is operator bookkeeping,
// not pipeline state.
func (r *runner) recordFile(ctx context.Context, log *slog.Logger, path, status string, rows int64, message string) {
	digest, err := ingest.FileDigest(path)
	if err != nil {
		log.Warn("could not digest file for manifest", "file", path, "error", err)
		return
	}
	size := int64(0)
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	if err := store.UpsertManifest(ctx, r.pool, r.runID, path, digest, size); err != nil {
		log.Warn("manifest upsert failed", "file", path, "error", err)
		return
	}
	loaded := pgtype.Int8{Int64: rows, Valid: status == store.StatusLoaded || status == store.StatusSkipped}
	if err := store.MarkManifest(ctx, r.pool, digest, status, loaded, message); err != nil {
		log.Warn("manifest mark failed", "file", path, "error", err)
	}
}

// rowsPerBatch counts surviving consolidated rows by originating batch.
func rowsPerBatch(rows []engine.IdentifiedRecord) map[string]int64 {
	counts := make(map[string]int64, len(rows))
	for _, rec := range rows {
		counts[rec.Meta.BatchID]++
	}
	return counts
}
