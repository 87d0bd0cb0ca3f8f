// internal/infra/report/report.go
package report

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"

	"nna_analyzer/internal/domain/analysis"
	"nna_analyzer/internal/domain/dataset"
)

// Subdirectories of the reports tree.
const (
	tablesDir      = "tablas"
	figuresDir     = "figures"
	temporalDir    = "temporal"
	spatialDir     = "spatial"
	exploratoryDir = "exploratory"
)

// Params configures where and how much the writer emits.
type Params struct {
	ReportsDir    string
	ProcessedDir  string
	TopLocalities int // localities drawn in the evolution chart
}

// Input is everything a finished pipeline run hands to the report writer.
type Input struct {
	RunID      string
	StartedAt  time.Time
	SourceFile string

	Base       dataframe.DataFrame // cleaned, anonymized base
	Clean      *dataset.CleanReport
	Dictionary []dataset.DictionaryEntry
	Quality    *dataset.QualityReport
	Extraction *dataset.Extraction
	Analysis   *analysis.Result
}

// Writer emits the full report tree: tables, workbook, charts, markdown
// summary, JSON sidecars and, last, the manifest.
type Writer struct {
	params Params
	logger *log.Logger
}

func NewWriter(params Params, logger *log.Logger) *Writer {
	return &Writer{params: params, logger: logger}
}

// Write produces every artifact. The manifest is written at the very end so
// its presence marks a complete run.
func (w *Writer) Write(ctx context.Context, in *Input) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for _, dir := range []string{
		w.params.ReportsDir,
		filepath.Join(w.params.ReportsDir, tablesDir),
		filepath.Join(w.params.ReportsDir, figuresDir, temporalDir),
		filepath.Join(w.params.ReportsDir, figuresDir, spatialDir),
		filepath.Join(w.params.ReportsDir, figuresDir, exploratoryDir),
		w.params.ProcessedDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory %s: %w", dir, err)
		}
	}

	steps := []struct {
		name string
		run  func(*Input) error
	}{
		{"cleaned base", w.writeBase},
		{"tables", w.writeTables},
		{"workbook", w.writeWorkbook},
		{"charts", w.writeCharts},
		{"markdown summary", w.writeMarkdown},
		{"json sidecars", w.writeJSON},
		{"manifest", w.writeManifest},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.run(in); err != nil {
			w.logger.Printf("ERROR: Failed writing %s: %v", step.name, err)
			return fmt.Errorf("failed writing %s: %w", step.name, err)
		}
		w.logger.Printf("INFO: Wrote %s", step.name)
	}
	return nil
}

func (w *Writer) tablePath(name string) string {
	return filepath.Join(w.params.ReportsDir, tablesDir, name)
}

func (w *Writer) figurePath(group, name string) string {
	return filepath.Join(w.params.ReportsDir, figuresDir, group, name)
}

// formatChange renders a year-over-year change for tables and the summary.
func formatChange(c analysis.Change) string {
	if c.Kind == analysis.ChangeNewOccurrence {
		return "NUEVA_OCURRENCIA"
	}
	return fmt.Sprintf("%.2f", c.Percent)
}

// formatCount renders a matrix cell, keeping missing years visibly distinct
// from observed zeros.
func formatCount(yc analysis.YearCount) string {
	if yc.Missing {
		return "ND"
	}
	return fmt.Sprintf("%d", yc.Count)
}
