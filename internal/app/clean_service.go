// internal/app/clean_service.go
package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"nna_analyzer/internal/domain/dataset"
)

// CleanService turns the raw all-string frame into the anonymized analysis base.
type CleanService interface {
	Clean(ctx context.Context, df dataframe.DataFrame) (dataframe.DataFrame, *dataset.CleanReport, error)
}

// CleanServiceImpl implements the CleanService interface.
type CleanServiceImpl struct {
	logger *log.Logger
}

func NewCleanServiceImpl(logger *log.Logger) *CleanServiceImpl {
	return &CleanServiceImpl{logger: logger}
}

// Clean runs the full cleaning sequence: header normalization, personal-data
// column removal, identifier hashing, null-token unification, yes/no value
// standardization, duplicate row removal and categorical imputation.
func (s *CleanServiceImpl) Clean(ctx context.Context, df dataframe.DataFrame) (dataframe.DataFrame, *dataset.CleanReport, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, nil, err
	}

	report := &dataset.CleanReport{
		RowsBefore:    df.Nrow(),
		ColumnMapping: make(map[string]string),
	}

	headers := df.Names()
	normalized := normalizeHeaders(headers)
	for i, h := range headers {
		report.ColumnMapping[h] = normalized[i]
	}

	rows := df.Records()[1:] // drop the header row, we carry normalized names

	// Column-wise pass: drop personal data, hash identifiers.
	keep := make([]int, 0, len(normalized))
	for i, name := range normalized {
		if isPersonalDataColumn(name) {
			report.DroppedColumns = append(report.DroppedColumns, name)
			s.logger.Printf("INFO: Dropping personal-data column %s", name)
			continue
		}
		keep = append(keep, i)
		if isIdentifierColumn(name) {
			report.HashedColumns = append(report.HashedColumns, name)
			s.logger.Printf("INFO: Hashing identifier column %s", name)
			for r := range rows {
				if !dataset.IsNullToken(rows[r][i]) {
					rows[r][i] = hashCell(rows[r][i])
				}
			}
		}
	}

	names := make([]string, 0, len(keep))
	for _, i := range keep {
		names = append(names, normalized[i])
	}

	out := make([][]string, 0, len(rows)+1)
	out = append(out, names)
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		cells := make([]string, len(keep))
		for j, i := range keep {
			cells[j] = cleanCell(row[i])
		}
		key := strings.Join(cells, "\x1f")
		if _, dup := seen[key]; dup {
			report.DuplicatesCut++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, cells)
	}

	standardizeYesNo(out)
	report.ImputedColumns = imputeCategoricals(out)
	report.RowsAfter = len(out) - 1

	cleaned := dataframe.LoadRecords(
		out,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if cleaned.Err != nil {
		return dataframe.DataFrame{}, nil, fmt.Errorf("failed to rebuild cleaned frame: %w", cleaned.Err)
	}

	s.logger.Printf("INFO: Cleaning finished. Rows: %d -> %d (%d duplicates removed), columns: %d -> %d",
		report.RowsBefore, report.RowsAfter, report.DuplicatesCut, len(headers), len(names))
	return cleaned, report, nil
}

var nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_ ]+`)
var spaceRe = regexp.MustCompile(`\s+`)
var underscoreRe = regexp.MustCompile(`_+`)

// normalizeHeaders maps raw headers to TRIMMED_UPPER_SNAKE names and makes
// them unique by numeric suffix.
func normalizeHeaders(headers []string) []string {
	used := make(map[string]int, len(headers))
	out := make([]string, len(headers))
	for i, h := range headers {
		name := strings.TrimSpace(h)
		name = nonWordRe.ReplaceAllString(name, "")
		name = spaceRe.ReplaceAllString(name, "_")
		name = strings.ToUpper(name)
		name = underscoreRe.ReplaceAllString(name, "_")
		name = strings.Trim(name, "_")
		if name == "" {
			name = fmt.Sprintf("COLUMNA_%d", i+1)
		}
		if n := used[name]; n > 0 {
			used[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		used[name]++
		out[i] = name
	}
	return out
}

var personalDataPatterns = []string{
	"NOMBRE", "APELLIDO", "DIRECCION", "TELEFONO", "CELULAR",
	"CORREO", "EMAIL", "NUMERO",
}

var personalDataExceptions = []string{
	"NUMERO_DE_MANZANA", "NUMERO_DE_FICHA",
}

func isPersonalDataColumn(name string) bool {
	for _, ex := range personalDataExceptions {
		if strings.Contains(name, ex) {
			return false
		}
	}
	for _, p := range personalDataPatterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

var identifierPatterns = []string{"DOCUMENTO", "IDENTIFICACION", "CEDULA"}

func isIdentifierColumn(name string) bool {
	// Geographic codes stay readable; they are keys for the spatial analysis.
	if strings.Contains(name, "LOCALIDAD") || strings.Contains(name, "UPZ") {
		return false
	}
	for _, p := range identifierPatterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return name == "ID" || strings.HasPrefix(name, "ID_") || strings.HasSuffix(name, "_ID")
}

// hashCell replaces an identifier with the first 16 hex characters of its
// SHA-256, enough to keep rows linkable without carrying the raw document.
func hashCell(v string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(v)))
	return hex.EncodeToString(sum[:])[:16]
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	if dataset.IsNullToken(v) {
		return ""
	}
	return v
}

// standardizeYesNo unifies yes/no spellings and the 99999 placeholder in every
// low-cardinality column (fewer than 20 distinct values).
func standardizeYesNo(records [][]string) {
	if len(records) < 2 {
		return
	}
	cols := len(records[0])
	for c := 0; c < cols; c++ {
		distinct := make(map[string]struct{})
		for r := 1; r < len(records); r++ {
			distinct[records[r][c]] = struct{}{}
			if len(distinct) >= 20 {
				break
			}
		}
		if len(distinct) >= 20 {
			continue
		}
		for r := 1; r < len(records); r++ {
			switch strings.ToUpper(strings.TrimSpace(records[r][c])) {
			case "SI", "SÍ", "S", "1", "TRUE", "VERDADERO":
				records[r][c] = "SI"
			case "NO", "N", "0", "FALSE", "FALSO":
				records[r][c] = "NO"
			case "99999":
				records[r][c] = dataset.ImputedValue
			}
		}
	}
}

// imputeCategoricals fills columns that are partially empty (null share above
// zero but below half) with the explicit placeholder, and returns their names.
func imputeCategoricals(records [][]string) []string {
	if len(records) < 2 {
		return nil
	}
	var imputed []string
	nrows := len(records) - 1
	for c := 0; c < len(records[0]); c++ {
		nulls := 0
		for r := 1; r < len(records); r++ {
			if records[r][c] == "" {
				nulls++
			}
		}
		if nulls == 0 || nulls*2 >= nrows {
			continue
		}
		for r := 1; r < len(records); r++ {
			if records[r][c] == "" {
				records[r][c] = dataset.ImputedValue
			}
		}
		imputed = append(imputed, records[0][c])
	}
	return imputed
}
