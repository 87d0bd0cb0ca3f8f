// internal/app/pipeline_service.go
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"nna_analyzer/internal/domain/record"
	"nna_analyzer/internal/infra/report"
)

// ReportWriter is the outbound port for emitting the report tree.
type ReportWriter interface {
	Write(ctx context.Context, in *report.Input) error
}

// PipelineService runs the whole analysis from raw file to report tree.
type PipelineService interface {
	Run(ctx context.Context) error
}

// PipelineServiceImpl implements the PipelineService interface.
type PipelineServiceImpl struct {
	repo       record.Repository
	clean      CleanService
	dictionary DictionaryService
	quality    QualityService
	extract    ExtractService
	analysis   AnalysisService
	writer     ReportWriter
	sourceFile string
	logger     *log.Logger
}

func NewPipelineServiceImpl(
	repo record.Repository,
	clean CleanService,
	dictionary DictionaryService,
	quality QualityService,
	extract ExtractService,
	analysis AnalysisService,
	writer ReportWriter,
	sourceFile string,
	logger *log.Logger,
) *PipelineServiceImpl {
	return &PipelineServiceImpl{
		repo:       repo,
		clean:      clean,
		dictionary: dictionary,
		quality:    quality,
		extract:    extract,
		analysis:   analysis,
		writer:     writer,
		sourceFile: sourceFile,
		logger:     logger,
	}
}

// Run executes every stage in order and stops at the first failure. The
// context is honored between stages so a signal cancels the run cleanly.
func (s *PipelineServiceImpl) Run(ctx context.Context) error {
	runID := uuid.NewString()
	started := time.Now()
	s.logger.Printf("INFO: Starting analysis run %s for %s", runID, s.sourceFile)

	raw, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Printf("ERROR: Failed to load dataset: %v", err)
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	s.logger.Printf("INFO: Dataset loaded. Rows: %d, columns: %d", raw.Nrow(), raw.Ncol())

	base, cleanReport, err := s.clean.Clean(ctx, raw)
	if err != nil {
		s.logger.Printf("ERROR: Cleaning failed: %v", err)
		return fmt.Errorf("cleaning failed: %w", err)
	}

	dict, err := s.dictionary.Build(ctx, base)
	if err != nil {
		s.logger.Printf("ERROR: Dictionary build failed: %v", err)
		return fmt.Errorf("dictionary build failed: %w", err)
	}

	qualityReport, err := s.quality.Assess(ctx, cleanReport, dict)
	if err != nil {
		s.logger.Printf("ERROR: Quality assessment failed: %v", err)
		return fmt.Errorf("quality assessment failed: %w", err)
	}

	extraction, err := s.extract.Extract(ctx, base)
	if err != nil {
		s.logger.Printf("ERROR: Record extraction failed: %v", err)
		return fmt.Errorf("record extraction failed: %w", err)
	}

	result, err := s.analysis.Analyze(ctx, extraction.Records)
	if err != nil {
		s.logger.Printf("ERROR: Analysis failed: %v", err)
		return fmt.Errorf("analysis failed: %w", err)
	}

	input := &report.Input{
		RunID:      runID,
		StartedAt:  started,
		SourceFile: s.sourceFile,
		Base:       base,
		Clean:      cleanReport,
		Dictionary: dict,
		Quality:    qualityReport,
		Extraction: extraction,
		Analysis:   result,
	}
	if err := s.writer.Write(ctx, input); err != nil {
		s.logger.Printf("ERROR: Report generation failed: %v", err)
		return fmt.Errorf("report generation failed: %w", err)
	}

	s.logger.Printf("INFO: Analysis run %s finished in %s. Alert zones: %d",
		runID, time.Since(started).Round(time.Millisecond), len(result.Alerts))
	return nil
}
