// Package ingest turns registrar CSV exports into raw record batches for
// the consolidation engine. It owns the messy file-side concerns the
// engine deliberately does not: per-source delimiters, header-to-field
// column mapping, empty-marker files, multi-author row explosion, and
// content digests for the load manifest.
package ingest

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ExplodeSpec splits one mapped field on a separator, emitting one
// record per trimmed part (publications list all authors in one cell).
type ExplodeSpec struct {
	Field     string `yaml:"field"`
	Separator string `yaml:"separator"`
}

// Source describes one family of input files feeding a single entity.
type Source struct {
	Entity    string            `yaml:"entity"`
	Path      string            `yaml:"path"`      // Glob pattern
	Delimiter string            `yaml:"delimiter"` // ",", ";" or "tab"
	Columns   map[string]string `yaml:"columns"`   // Source header -> field name
	Explode   *ExplodeSpec      `yaml:"explode,omitempty"`
	// PathFields derive field values from the file path instead of a
	// column: field name -> regex with one capture group, matched
	// against the slash-normalized path. The registrar encodes
	// matricola, ciclo, course code and year in file names.
	PathFields map[string]string `yaml:"path_fields,omitempty"`
	// SkipPrefix excludes files whose base name starts with the given
	// prefix, for globs that would otherwise catch a sibling family.
	SkipPrefix string `yaml:"skip_prefix,omitempty"`
	// SkipRows drops rows whose field equals the given placeholder text,
	// e.g. docente: "Nessuna collaborazione prevista".
	SkipRows map[string]string `yaml:"skip_rows,omitempty"`
}

// Comma returns the delimiter as the rune encoding/csv expects.
func (s Source) Comma() (rune, error) {
	switch s.Delimiter {
	case "", ",":
		return ',', nil
	case ";":
		return ';', nil
	case "tab", "\t":
		return '\t', nil
	default:
		return 0, fmt.Errorf("source %s: unsupported delimiter %q", s.Entity, s.Delimiter)
	}
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads and validates the YAML sources manifest.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources manifest: %w", err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sources manifest %s: %w", path, err)
	}
	if len(f.Sources) == 0 {
		return nil, fmt.Errorf("sources manifest %s declares no sources", path)
	}

	for i, src := range f.Sources {
		if src.Entity == "" {
			return nil, fmt.Errorf("sources[%d]: missing entity", i)
		}
		if src.Path == "" {
			return nil, fmt.Errorf("sources[%d] (%s): missing path", i, src.Entity)
		}
		if len(src.Columns) == 0 {
			return nil, fmt.Errorf("sources[%d] (%s): missing column map", i, src.Entity)
		}
		if _, err := src.Comma(); err != nil {
			return nil, err
		}
		if src.Explode != nil && src.Explode.Field == "" {
			return nil, fmt.Errorf("sources[%d] (%s): explode spec missing field", i, src.Entity)
		}
		for field, pattern := range src.PathFields {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("sources[%d] (%s): path field %s: %w", i, src.Entity, field, err)
			}
			if re.NumSubexp() < 1 {
				return nil, fmt.Errorf("sources[%d] (%s): path field %s pattern needs a capture group", i, src.Entity, field)
			}
		}
	}

	return f.Sources, nil
}
