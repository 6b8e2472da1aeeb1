package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/politodata/phd-etl/internal/engine"
)

// EmptyMarker is the literal first line the registrar writes when an
// export contains no data. Such files are valid but carry nothing.
const EmptyMarker = "Nessun dato disponibile nella tabella"

// ErrEmptyFile marks a file that only carried the empty marker or no
// rows at all; callers record it in the manifest and move on.
var ErrEmptyFile = errors.New("ingest: no rows in file")

// ReadSource globs the source's path pattern and reads every matching
// file into a batch. Files are visited in sorted order so batch IDs and
// record sequence stay deterministic across reruns. Empty files are
// skipped silently; their paths are returned for manifest bookkeeping.
func ReadSource(src Source) (batches []engine.Batch, skipped []string, err error) {
	paths, err := filepath.Glob(src.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", src.Path, err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if src.SkipPrefix != "" && strings.HasPrefix(filepath.Base(path), src.SkipPrefix) {
			continue
		}
		b, err := ReadFile(src, path)
		if errors.Is(err, ErrEmptyFile) {
			skipped = append(skipped, path)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		batches = append(batches, b)
	}
	return batches, skipped, nil
}

// ReadFile reads one CSV export into a raw record batch. The batch's
// load time is the file's modification time, so reruns over unchanged
// inputs consolidate identically.
func ReadFile(src Source, path string) (engine.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return engine.Batch{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return engine.Batch{}, fmt.Errorf("stat %s: %w", path, err)
	}

	comma, err := src.Comma()
	if err != nil {
		return engine.Batch{}, err
	}

	columns, records, err := readRows(f, comma, src)
	if err != nil {
		if errors.Is(err, ErrEmptyFile) {
			return engine.Batch{}, err
		}
		return engine.Batch{}, fmt.Errorf("read %s: %w", path, err)
	}

	columns, records = applyPathFields(src, path, columns, records)

	return engine.Batch{
		ID:         uuid.NewString(),
		Entity:     src.Entity,
		SourceFile: path,
		LoadedAt:   info.ModTime().UTC(),
		Columns:    columns,
		Records:    records,
	}, nil
}

// readRows parses the CSV stream: header mapped through the source's
// column map, unmapped columns ignored, placeholder rows dropped,
// explosion applied last.
func readRows(r io.Reader, comma rune, src Source) ([]string, []engine.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, ErrEmptyFile
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	if len(header) == 1 && strings.TrimSpace(header[0]) == EmptyMarker {
		return nil, nil, ErrEmptyFile
	}

	// Map header positions to cleaned field names; unmapped columns are
	// the extraction collaborator's problem, not ours.
	fieldAt := make(map[int]string, len(header))
	var columns []string
	for i, h := range header {
		if field, ok := src.Columns[strings.TrimSpace(h)]; ok {
			fieldAt[i] = field
			columns = append(columns, field)
		}
	}

	var records []engine.RawRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read row: %w", err)
		}

		rec := make(engine.RawRecord, len(fieldAt))
		for i, field := range fieldAt {
			if i < len(row) {
				rec[field] = row[i]
			}
		}
		if skipRecord(rec, src.SkipRows) {
			continue
		}
		records = append(records, explode(rec, src.Explode)...)
	}

	if len(records) == 0 {
		return nil, nil, ErrEmptyFile
	}
	return columns, records, nil
}

// applyPathFields stamps path-derived values onto every record of a
// batch. Patterns were validated at manifest load; a pattern that does
// not match this particular path leaves the field absent, and the key
// rule decides whether the records survive.
func applyPathFields(src Source, path string, columns []string, records []engine.RawRecord) ([]string, []engine.RawRecord) {
	if len(src.PathFields) == 0 {
		return columns, records
	}
	slashed := filepath.ToSlash(path)

	fields := make([]string, 0, len(src.PathFields))
	for field := range src.PathFields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		re := regexp.MustCompile(src.PathFields[field])
		columns = append(columns, field)
		m := re.FindStringSubmatch(slashed)
		if m == nil {
			continue
		}
		for _, rec := range records {
			rec[field] = m[1]
		}
	}
	return columns, records
}

// skipRecord drops placeholder rows the registrar emits instead of
// leaving a table section empty.
func skipRecord(rec engine.RawRecord, skip map[string]string) bool {
	for field, placeholder := range skip {
		if strings.TrimSpace(rec[field]) == placeholder {
			return true
		}
	}
	return false
}

// explode fans one record out into one record per part of the exploded
// field. Without an explode spec the record passes through unchanged.
func explode(rec engine.RawRecord, spec *ExplodeSpec) []engine.RawRecord {
	if spec == nil {
		return []engine.RawRecord{rec}
	}
	sep := spec.Separator
	if sep == "" {
		sep = ";"
	}

	parts := strings.Split(rec[spec.Field], sep)
	out := make([]engine.RawRecord, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clone := make(engine.RawRecord, len(rec))
		for k, v := range rec {
			clone[k] = v
		}
		clone[spec.Field] = part
		out = append(out, clone)
	}
	if len(out) == 0 {
		// Keep the row; the engine nulls the field and the key rule
		// decides whether the record survives.
		return []engine.RawRecord{rec}
	}
	return out
}
