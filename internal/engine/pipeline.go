package engine

// pipeline.go drives the full per-entity sequence: structural validation,
// normalization/coercion, identity resolution, key derivation, version
// consolidation. One Pipeline instance serves one entity type; pipelines
// for different entity types share no mutable state and may run
// concurrently as long as they see the same immutable reference index.

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
)

// RunStats makes the silently-absorbed issues of a run observable:
// per-field null counts, records excluded for null keys, and ambiguous
// name resolutions.
type RunStats struct {
	Records    int            // Raw records seen across all batches
	Output     int            // Consolidated rows produced
	Excluded   int            // Records dropped for a null key
	Resolved   int            // Codes assigned by unique name match
	Ambiguous  int            // Resolutions with zero or multiple candidates
	NullCounts map[string]int // Field name -> null values after coercion
}

// RunResult is the consolidated output of one entity pipeline run.
type RunResult struct {
	Entity string
	Rows   []IdentifiedRecord
	Stats  RunStats
}

// Pipeline applies the consolidation stages for one entity type.
type Pipeline struct {
	def EntityDefinition
	log *slog.Logger
}

// NewPipeline builds a pipeline for the given entity definition.
func NewPipeline(def EntityDefinition, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{def: def, log: log.With("entity", def.Name)}
}

// Run processes the full set of known batches for this entity type and
// returns one row per distinct non-null key, rebuilt wholesale. The
// reference index is required when the entity declares name resolution
// and must stay immutable for the duration of the run.
//
// Field coercion failures and ambiguous resolutions never abort the run;
// they surface as nulls and stats. A batch missing a required column or
// a missing reference index is a structural failure that aborts this
// entity type only.
func (p *Pipeline) Run(batches []Batch, ref *NameIndex) (*RunResult, error) {
	if p.def.Resolution != nil && ref == nil {
		return nil, &StructuralError{Entity: p.def.Name, Reason: "reference data unavailable for name resolution"}
	}
	for _, b := range batches {
		if err := p.validateBatch(b); err != nil {
			return nil, err
		}
	}

	stats := RunStats{NullCounts: make(map[string]int)}
	identified := make([]IdentifiedRecord, 0, recordCount(batches))

	seq := 0
	for _, b := range batches {
		meta := BatchMeta{BatchID: b.ID, SourceFile: b.SourceFile, LoadedAt: b.LoadedAt}
		for _, raw := range b.Records {
			rec := CoerceRecord(raw, p.def, meta, seq)
			seq++
			stats.Records++
			for _, spec := range p.def.Fields {
				if rec.Get(spec.Name).IsNull() {
					stats.NullCounts[spec.Name]++
				}
			}

			matchCount := pgtype.Int4{Valid: false}
			if r := p.def.Resolution; r != nil {
				code, count := Resolve(rec, *r, ref)
				matchCount = count
				if count.Valid {
					if code.Valid {
						rec.Fields[r.CodeField] = StringValue{Text: code}
						stats.Resolved++
					} else {
						stats.Ambiguous++
					}
				}
			}

			key, ok := RecordKey(rec, p.def.Key)
			if !ok {
				stats.Excluded++
				continue
			}
			identified = append(identified, IdentifiedRecord{
				TypedRecord: rec,
				Key:         keyText(key, ok),
				MatchCount:  matchCount,
			})
		}
	}

	rows := Consolidate(identified)
	stats.Output = len(rows)

	p.log.Info("pipeline run complete",
		"batches", len(batches),
		"records", stats.Records,
		"rows", stats.Output,
		"excluded", stats.Excluded,
		"ambiguous", stats.Ambiguous,
	)

	return &RunResult{Entity: p.def.Name, Rows: rows, Stats: stats}, nil
}

// validateBatch enforces the extraction contract: every required field
// must be present in the batch's mapped columns.
func (p *Pipeline) validateBatch(b Batch) error {
	for _, spec := range p.def.Fields {
		if spec.Required && !b.HasColumn(spec.Name) {
			return &StructuralError{
				Entity:  p.def.Name,
				BatchID: b.ID,
				Reason:  "missing required column " + spec.Name,
			}
		}
	}
	return nil
}

func recordCount(batches []Batch) int {
	n := 0
	for _, b := range batches {
		n += len(b.Records)
	}
	return n
}

// OutputColumns lists the destination columns for an entity in stable
// order: key, the declared fields, the resolution diagnostic when the
// entity has one, then load provenance.
func OutputColumns(def EntityDefinition) []string {
	cols := make([]string, 0, len(def.Fields)+5)
	cols = append(cols, "key")
	cols = append(cols, def.FieldNames()...)
	if def.Resolution != nil {
		cols = append(cols, "match_count")
	}
	cols = append(cols, "source_file", "loaded_at", "batch_id")
	return cols
}

// OutputRow renders a consolidated record as pgx query parameters in
// OutputColumns order.
func OutputRow(def EntityDefinition, rec IdentifiedRecord) []any {
	row := make([]any, 0, len(def.Fields)+5)
	row = append(row, rec.Key)
	for _, spec := range def.Fields {
		row = append(row, rec.Get(spec.Name).Param())
	}
	if def.Resolution != nil {
		row = append(row, rec.MatchCount)
	}
	row = append(row, rec.Meta.SourceFile, rec.Meta.LoadedAt, rec.Meta.BatchID)
	return row
}
