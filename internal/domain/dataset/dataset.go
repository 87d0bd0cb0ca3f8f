// internal/domain/dataset/dataset.go
package dataset

import (
	"strings"

	"nna_analyzer/internal/domain/record"
)

// ImputedValue is written into partially empty categorical cells.
const ImputedValue = "No especificado"

// nullTokens are the cell values treated as missing data across the pipeline.
var nullTokens = map[string]struct{}{
	"":         {},
	"NA":       {},
	"N/A":      {},
	"NAN":      {},
	"NULL":     {},
	"NONE":     {},
	"SIN DATO": {},
	"-":        {},
}

// IsNullToken reports whether a raw cell value counts as missing.
func IsNullToken(v string) bool {
	_, ok := nullTokens[strings.ToUpper(strings.TrimSpace(v))]
	return ok
}

// Column classification labels used in the data dictionary.
const (
	ColumnAlmostEmpty     = "Casi_vacia"
	ColumnConstant        = "Constante"
	ColumnIdentifier      = "Identificador"
	ColumnCategoricalLow  = "Categorica_baja"
	ColumnCategoricalMid  = "Categorica_media"
	ColumnCategoricalHigh = "Categorica_alta"
	ColumnHighCardinality = "Alta_cardinalidad"
	ColumnNumeric         = "Numerica"
)

// CleanReport records everything the cleaning pass changed, for the quality
// report and the column mapping export.
type CleanReport struct {
	RowsBefore     int
	RowsAfter      int
	DuplicatesCut  int
	ColumnMapping  map[string]string // original header -> normalized header
	DroppedColumns []string          // personal-data columns removed
	HashedColumns  []string          // identifier columns replaced by hashes
	ImputedColumns []string          // columns filled with ImputedValue
}

// DictionaryEntry describes one column of the cleaned base.
type DictionaryEntry struct {
	Column      string
	Class       string
	NonNull     int
	NullPercent float64
	Distinct    int
	Examples    []string // up to three distinct non-null sample values
}

// ColumnQuality is the per-column slice of the quality report.
type ColumnQuality struct {
	Column      string  `json:"columna"`
	Class       string  `json:"tipo"`
	NullPercent float64 `json:"porcentaje_nulos"`
	Distinct    int     `json:"valores_distintos"`
}

// QualityReport summarizes the state of the base after cleaning.
type QualityReport struct {
	Rows              int             `json:"filas"`
	Columns           int             `json:"columnas"`
	DuplicatesRemoved int             `json:"duplicados_eliminados"`
	DroppedColumns    []string        `json:"columnas_eliminadas"`
	HashedColumns     []string        `json:"columnas_anonimizadas"`
	ImputedColumns    []string        `json:"columnas_imputadas"`
	Completeness      float64         `json:"completitud_porcentaje"`
	ClassCounts       map[string]int  `json:"conteo_por_tipo"`
	ColumnDetail      []ColumnQuality `json:"detalle_columnas"`
}

// Extraction carries the typed records plus the columns they came from.
type Extraction struct {
	Records        []record.Record
	LocalityColumn string
	YearColumn     string
	RegimeColumn   string // empty when the base has no affiliation column
	AgeColumn      string
	SexColumn      string
	YearFromDate   bool // year was derived from a date column
}
