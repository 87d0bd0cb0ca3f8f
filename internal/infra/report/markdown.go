// internal/infra/report/markdown.go
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nna_analyzer/internal/domain/analysis"
	"nna_analyzer/internal/domain/record"
)

const summaryName = "data_summary.md"

// writeMarkdown emits the CRISP-DM data understanding summary.
func (w *Writer) writeMarkdown(in *Input) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Resumen de datos - Intervenciones NNA Bogotá\n\n")
	fmt.Fprintf(&b, "Generado: %s\n\n", in.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Ejecución: `%s`\n\n", in.RunID)

	fmt.Fprintf(&b, "## 2.1 Recolección de datos iniciales\n\n")
	fmt.Fprintf(&b, "- Archivo fuente: `%s`\n", filepath.Base(in.SourceFile))
	fmt.Fprintf(&b, "- Filas originales: %d\n", in.Clean.RowsBefore)
	fmt.Fprintf(&b, "- Filas tras limpieza: %d\n", in.Clean.RowsAfter)
	fmt.Fprintf(&b, "- Columna de localidad: `%s`\n", in.Extraction.LocalityColumn)
	if in.Extraction.YearFromDate {
		fmt.Fprintf(&b, "- Año derivado de la columna de fecha `%s`\n", in.Extraction.YearColumn)
	} else {
		fmt.Fprintf(&b, "- Columna de año: `%s`\n", in.Extraction.YearColumn)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## 2.2 Descripción de los datos\n\n")
	fmt.Fprintf(&b, "- Columnas: %d\n", in.Quality.Columns)
	fmt.Fprintf(&b, "- Registros: %d\n", in.Quality.Rows)
	fmt.Fprintf(&b, "\n| Tipo de columna | Cantidad |\n|---|---|\n")
	for _, class := range orderedClasses(in.Quality.ClassCounts) {
		fmt.Fprintf(&b, "| %s | %d |\n", class, in.Quality.ClassCounts[class])
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## 2.3 Exploración de los datos\n\n")
	m := in.Analysis.Matrix
	fmt.Fprintf(&b, "- Periodo de estudio: %d-%d\n", m.Years[0], m.Years[len(m.Years)-1])
	fmt.Fprintf(&b, "- Localidades analizadas: %d\n", len(m.Localities))
	fmt.Fprintf(&b, "- Registros no clasificables: %d\n", m.Unclassified)
	fmt.Fprintf(&b, "- Régimen subsidiado en la ciudad: %.1f%%\n\n",
		in.Analysis.CityRegimes.Shares[record.RegimeSubsidiado])

	fmt.Fprintf(&b, "### Zonas de alerta\n\n")
	if len(in.Analysis.Alerts) == 0 {
		b.WriteString("Ninguna localidad supera los umbrales configurados.\n\n")
	} else {
		b.WriteString("| Localidad | Tendencia | Cambio neto | Racha |\n|---|---|---|---|\n")
		for _, z := range in.Analysis.Alerts {
			fmt.Fprintf(&b, "| %s | %s | %s | %d |\n",
				z.Locality, trendES(z.Label), formatChange(z.Net), z.RunLength)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## 2.4 Verificación de la calidad de los datos\n\n")
	fmt.Fprintf(&b, "- Completitud promedio: %.1f%%\n", in.Quality.Completeness)
	fmt.Fprintf(&b, "- Duplicados eliminados: %d\n", in.Quality.DuplicatesRemoved)
	fmt.Fprintf(&b, "- Columnas de datos personales eliminadas: %d\n", len(in.Quality.DroppedColumns))
	fmt.Fprintf(&b, "- Columnas de identificadores anonimizadas: %d\n", len(in.Quality.HashedColumns))
	fmt.Fprintf(&b, "- Columnas imputadas con \"%s\": %d\n", "No especificado", len(in.Quality.ImputedColumns))

	path := filepath.Join(w.params.ReportsDir, summaryName)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func orderedClasses(counts map[string]int) []string {
	classes := make([]string, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	// Largest bucket first keeps the table readable.
	sort.Slice(classes, func(i, j int) bool {
		if counts[classes[i]] != counts[classes[j]] {
			return counts[classes[i]] > counts[classes[j]]
		}
		return classes[i] < classes[j]
	})
	return classes
}

func trendES(label analysis.TrendLabel) string {
	switch label {
	case analysis.TrendIncreasing:
		return "Creciente"
	case analysis.TrendDecreasing:
		return "Decreciente"
	case analysis.TrendStable:
		return "Estable"
	default:
		return "Datos insuficientes"
	}
}
