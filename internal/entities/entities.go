// Package entities registers the entity definitions for every registrar
// export family the pipeline consolidates. Import for side effects:
//
//	import _ "github.com/politodata/phd-etl/internal/entities"
//
// Field names match the cleaned column names produced at ingest; key
// specs are versioned contracts — reordering a surrogate key's fields
// changes every stored identifier.
package entities
