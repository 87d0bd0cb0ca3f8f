// internal/app/quality_service.go
package app

import (
	"context"
	"log"

	"nna_analyzer/internal/domain/dataset"
)

// QualityService derives the quality report from the cleaning outcome and the
// data dictionary.
type QualityService interface {
	Assess(ctx context.Context, clean *dataset.CleanReport, dict []dataset.DictionaryEntry) (*dataset.QualityReport, error)
}

// QualityServiceImpl implements the QualityService interface.
type QualityServiceImpl struct {
	logger *log.Logger
}

func NewQualityServiceImpl(logger *log.Logger) *QualityServiceImpl {
	return &QualityServiceImpl{logger: logger}
}

func (s *QualityServiceImpl) Assess(ctx context.Context, clean *dataset.CleanReport, dict []dataset.DictionaryEntry) (*dataset.QualityReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &dataset.QualityReport{
		Rows:              clean.RowsAfter,
		Columns:           len(dict),
		DuplicatesRemoved: clean.DuplicatesCut,
		DroppedColumns:    clean.DroppedColumns,
		HashedColumns:     clean.HashedColumns,
		ImputedColumns:    clean.ImputedColumns,
		ClassCounts:       make(map[string]int, 8),
		ColumnDetail:      make([]dataset.ColumnQuality, 0, len(dict)),
	}

	var filled float64
	for _, e := range dict {
		report.ClassCounts[e.Class]++
		report.ColumnDetail = append(report.ColumnDetail, dataset.ColumnQuality{
			Column:      e.Column,
			Class:       e.Class,
			NullPercent: e.NullPercent,
			Distinct:    e.Distinct,
		})
		filled += 100 - e.NullPercent
	}
	if len(dict) > 0 {
		report.Completeness = filled / float64(len(dict))
	}

	s.logger.Printf("INFO: Quality assessment done. Completeness: %.1f%%, columns by type: %v",
		report.Completeness, report.ClassCounts)
	return report, nil
}
