// internal/infra/report/json.go
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// finalSummary is the machine-readable run receipt.
type finalSummary struct {
	RunID        string `json:"run_id"`
	StartedAt    string `json:"inicio"`
	FinishedAt   string `json:"fin"`
	SourceFile   string `json:"archivo_fuente"`
	Rows         int    `json:"filas"`
	Columns      int    `json:"columnas"`
	Localities   int    `json:"localidades"`
	AlertZones   int    `json:"zonas_alerta"`
	Unclassified int    `json:"registros_no_clasificables"`
	Artifacts    int    `json:"archivos_generados"`
}

func (w *Writer) writeJSON(in *Input) error {
	if err := writeJSONFile(
		filepath.Join(w.params.ReportsDir, "column_mapping.json"), in.Clean.ColumnMapping); err != nil {
		return err
	}
	if err := writeJSONFile(
		filepath.Join(w.params.ReportsDir, "quality_report.json"), in.Quality); err != nil {
		return err
	}

	artifacts, err := w.listArtifacts()
	if err != nil {
		return err
	}
	summary := finalSummary{
		RunID:        in.RunID,
		StartedAt:    in.StartedAt.Format(time.RFC3339),
		FinishedAt:   time.Now().Format(time.RFC3339),
		SourceFile:   in.SourceFile,
		Rows:         in.Quality.Rows,
		Columns:      in.Quality.Columns,
		Localities:   len(in.Analysis.Matrix.Localities),
		AlertZones:   len(in.Analysis.Alerts),
		Unclassified: in.Analysis.Matrix.Unclassified,
		Artifacts:    len(artifacts) + 1, // plus this summary itself
	}
	return writeJSONFile(filepath.Join(w.params.ReportsDir, "resumen_final.json"), summary)
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
