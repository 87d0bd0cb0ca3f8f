// internal/app/extract_service.go
package app

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"nna_analyzer/internal/domain/dataset"
	"nna_analyzer/internal/domain/record"
)

// Custom errors
var ErrNoLocalityColumn = fmt.Errorf("cleaned base has no locality column")
var ErrNoYearColumn = fmt.Errorf("cleaned base has no year or date column")

// ExtractService turns the cleaned frame into typed records for analysis.
type ExtractService interface {
	Extract(ctx context.Context, df dataframe.DataFrame) (*dataset.Extraction, error)
}

// ExtractServiceImpl implements the ExtractService interface.
type ExtractServiceImpl struct {
	logger *log.Logger
}

func NewExtractServiceImpl(logger *log.Logger) *ExtractServiceImpl {
	return &ExtractServiceImpl{logger: logger}
}

// Extract locates the locality, year, regime, age and sex columns by name and
// materializes one record per row. Rows are never discarded here; records with
// an unknown locality or an unparseable year are handed through and tallied as
// unclassified by the aggregation step.
func (s *ExtractServiceImpl) Extract(ctx context.Context, df dataframe.DataFrame) (*dataset.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := df.Records()
	if len(records) < 2 {
		return nil, fmt.Errorf("cleaned base has no data rows")
	}
	names := records[0]
	rows := records[1:]

	ext := &dataset.Extraction{}

	locIdx := findColumn(names, contains("LOCALIDAD"))
	if locIdx < 0 {
		return nil, ErrNoLocalityColumn
	}
	ext.LocalityColumn = names[locIdx]

	yearIdx := findColumn(names, exactAny("AÑO", "ANO", "ANIO", "YEAR"))
	if yearIdx < 0 {
		yearIdx = findColumn(names, contains("AÑO", "ANIO"))
	}
	if yearIdx < 0 {
		yearIdx = findColumn(names, contains("FECHA"))
		if yearIdx < 0 {
			return nil, ErrNoYearColumn
		}
		ext.YearFromDate = true
	}
	ext.YearColumn = names[yearIdx]

	regimeIdx := findColumn(names, contains("REGIMEN", "AFILIACION", "SGSSS"))
	if regimeIdx >= 0 {
		ext.RegimeColumn = names[regimeIdx]
	}
	ageIdx := findColumn(names, contains("EDAD"))
	if ageIdx >= 0 {
		ext.AgeColumn = names[ageIdx]
	}
	sexIdx := findColumn(names, contains("SEXO", "GENERO"))
	if sexIdx >= 0 {
		ext.SexColumn = names[sexIdx]
	}

	s.logger.Printf("INFO: Extracting records. Locality column: %s, year column: %s (from date: %v), regime column: %q",
		ext.LocalityColumn, ext.YearColumn, ext.YearFromDate, ext.RegimeColumn)

	ext.Records = make([]record.Record, 0, len(rows))
	for _, row := range rows {
		rec := record.Record{Age: -1}
		rec.Locality, _ = record.CanonicalLocality(row[locIdx])
		rec.Year = parseYear(row[yearIdx])
		if regimeIdx >= 0 {
			rec.Regime = record.NormalizeRegime(row[regimeIdx])
		} else {
			rec.Regime = record.RegimeNoEspecificado
		}
		if ageIdx >= 0 {
			if age, err := strconv.Atoi(strings.TrimSpace(row[ageIdx])); err == nil && age >= 0 && age < 120 {
				rec.Age = age
			}
		}
		if sexIdx >= 0 && !dataset.IsNullToken(row[sexIdx]) {
			rec.Sex = strings.ToUpper(strings.TrimSpace(row[sexIdx]))
		}
		ext.Records = append(ext.Records, rec)
	}

	s.logger.Printf("INFO: Extracted %d records", len(ext.Records))
	return ext, nil
}

func findColumn(names []string, match func(string) bool) int {
	for i, n := range names {
		if match(n) {
			return i
		}
	}
	return -1
}

func contains(patterns ...string) func(string) bool {
	return func(name string) bool {
		for _, p := range patterns {
			if strings.Contains(name, p) {
				return true
			}
		}
		return false
	}
}

func exactAny(candidates ...string) func(string) bool {
	return func(name string) bool {
		for _, c := range candidates {
			if name == c {
				return true
			}
		}
		return false
	}
}

var yearRe = regexp.MustCompile(`(19|20)\d{2}`)

// parseYear reads a year either from a plain integer cell or from the first
// four-digit year embedded in a date string. Returns 0 when none is found.
func parseYear(v string) int {
	v = strings.TrimSpace(v)
	if y, err := strconv.Atoi(v); err == nil {
		if y >= 1900 && y <= 2100 {
			return y
		}
		return 0
	}
	if m := yearRe.FindString(v); m != "" {
		y, _ := strconv.Atoi(m)
		return y
	}
	return 0
}
