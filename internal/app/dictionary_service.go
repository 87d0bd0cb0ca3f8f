// internal/app/dictionary_service.go
package app

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"nna_analyzer/internal/domain/dataset"
)

// DictionaryService builds the data dictionary of the cleaned base.
type DictionaryService interface {
	Build(ctx context.Context, df dataframe.DataFrame) ([]dataset.DictionaryEntry, error)
}

// DictionaryServiceImpl implements the DictionaryService interface.
type DictionaryServiceImpl struct {
	logger *log.Logger
}

func NewDictionaryServiceImpl(logger *log.Logger) *DictionaryServiceImpl {
	return &DictionaryServiceImpl{logger: logger}
}

// Build classifies every column. Classification is rule based and ordered:
// emptiness first, then constants and identifiers, then cardinality buckets,
// with fully numeric columns recognized before the high-cardinality fallback.
func (s *DictionaryServiceImpl) Build(ctx context.Context, df dataframe.DataFrame) ([]dataset.DictionaryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := df.Records()
	if len(records) < 1 {
		return nil, nil
	}
	names := records[0]
	rows := records[1:]

	entries := make([]dataset.DictionaryEntry, 0, len(names))
	for c, name := range names {
		e := dataset.DictionaryEntry{Column: name}
		distinct := make(map[string]int)
		numeric := true
		for _, row := range rows {
			v := row[c]
			if dataset.IsNullToken(v) {
				continue
			}
			e.NonNull++
			distinct[v]++
			if numeric {
				if _, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64); err != nil {
					numeric = false
				}
			}
		}
		e.Distinct = len(distinct)
		if len(rows) > 0 {
			e.NullPercent = float64(len(rows)-e.NonNull) / float64(len(rows)) * 100
		}
		e.Examples = sampleValues(distinct, 3)
		e.Class = classifyColumn(e, numeric)
		entries = append(entries, e)
	}

	s.logger.Printf("INFO: Data dictionary built for %d columns", len(entries))
	return entries, nil
}

func classifyColumn(e dataset.DictionaryEntry, numeric bool) string {
	switch {
	case e.NullPercent > 90:
		return dataset.ColumnAlmostEmpty
	case e.Distinct == 1:
		return dataset.ColumnConstant
	case e.NonNull > 0 && e.Distinct == e.NonNull && e.Distinct > 10:
		return dataset.ColumnIdentifier
	case e.Distinct <= 10:
		return dataset.ColumnCategoricalLow
	case e.Distinct <= 50:
		return dataset.ColumnCategoricalMid
	case numeric:
		return dataset.ColumnNumeric
	case e.NonNull > 0 && float64(e.Distinct)/float64(e.NonNull) > 0.9:
		return dataset.ColumnHighCardinality
	default:
		return dataset.ColumnCategoricalHigh
	}
}

func sampleValues(distinct map[string]int, n int) []string {
	values := make([]string, 0, len(distinct))
	for v := range distinct {
		values = append(values, v)
	}
	// Most frequent first so the examples are representative, not noise.
	sort.Slice(values, func(i, j int) bool {
		if distinct[values[i]] != distinct[values[j]] {
			return distinct[values[i]] > distinct[values[j]]
		}
		return values[i] < values[j]
	})
	if len(values) > n {
		values = values[:n]
	}
	return values
}
