// internal/infra/report/tables.go
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nna_analyzer/internal/domain/analysis"
	"nna_analyzer/internal/domain/dataset"
	"nna_analyzer/internal/domain/record"
)

const cleanedBaseName = "base_nna_limpia"

// writeBase exports the cleaned base as CSV next to the processed data.
func (w *Writer) writeBase(in *Input) error {
	path := filepath.Join(w.params.ProcessedDir, cleanedBaseName+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := in.Base.WriteCSV(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (w *Writer) writeTables(in *Input) error {
	if err := w.writeDistributionTable(in); err != nil {
		return err
	}
	if err := w.writeTrendTable(in); err != nil {
		return err
	}
	if err := w.writeAlertTable(in); err != nil {
		return err
	}
	if err := w.writeRegimeTables(in); err != nil {
		return err
	}
	if err := w.writeDictionaryTable(in); err != nil {
		return err
	}
	return w.writeFrequencyTables(in)
}

func (w *Writer) writeDistributionTable(in *Input) error {
	m := in.Analysis.Matrix
	header := []string{"LOCALIDAD"}
	for _, y := range m.Years {
		header = append(header, fmt.Sprintf("%d", y))
	}
	header = append(header, "TOTAL")

	rows := [][]string{header}
	for _, loc := range m.Localities {
		row := []string{loc}
		total := 0
		for _, yc := range m.Counts[loc] {
			row = append(row, formatCount(yc))
			total += yc.Count
		}
		row = append(row, fmt.Sprintf("%d", total))
		rows = append(rows, row)
	}
	return writeCSVFile(w.tablePath("distribucion_localidad_año.csv"), rows)
}

func (w *Writer) writeTrendTable(in *Input) error {
	rows := [][]string{{"LOCALIDAD", "PRIMER_AÑO", "ULTIMO_AÑO", "CAMBIO_NETO_PCT", "TENDENCIA"}}
	for _, t := range in.Analysis.Trends {
		row := []string{t.Locality}
		if t.Label == analysis.TrendInsufficientData {
			row = append(row, "", "", "")
		} else {
			row = append(row,
				fmt.Sprintf("%d", t.Net.FromYear),
				fmt.Sprintf("%d", t.Net.ToYear),
				formatChange(t.Net))
		}
		row = append(row, string(t.Label))
		rows = append(rows, row)
	}
	return writeCSVFile(w.tablePath("tendencias_por_localidad.csv"), rows)
}

func (w *Writer) writeAlertTable(in *Input) error {
	rows := [][]string{{"LOCALIDAD", "TENDENCIA", "CAMBIO_NETO_PCT", "CAMBIOS_SIGNIFICATIVOS", "RACHA"}}
	for _, z := range in.Analysis.Alerts {
		triggers := make([]string, 0, len(z.TriggerBy))
		for _, c := range z.TriggerBy {
			triggers = append(triggers, fmt.Sprintf("%d-%d:%s", c.FromYear, c.ToYear, formatChange(c)))
		}
		rows = append(rows, []string{
			z.Locality,
			string(z.Label),
			formatChange(z.Net),
			strings.Join(triggers, "; "),
			fmt.Sprintf("%d", z.RunLength),
		})
	}
	return writeCSVFile(w.tablePath("zonas_alerta.csv"), rows)
}

func (w *Writer) writeRegimeTables(in *Input) error {
	city := in.Analysis.CityRegimes
	rows := [][]string{{"REGIMEN", "CASOS", "PORCENTAJE"}}
	for _, reg := range record.AllRegimes() {
		rows = append(rows, []string{
			string(reg),
			fmt.Sprintf("%d", city.Counts[reg]),
			fmt.Sprintf("%.2f", city.Shares[reg]),
		})
	}
	if err := writeCSVFile(w.tablePath("distribucion_regimen_salud.csv"), rows); err != nil {
		return err
	}

	ranked := w.rankSubsidized(in)

	rows = [][]string{{"LOCALIDAD", "CASOS_SUBSIDIADO", "TOTAL", "PORCENTAJE_SUBSIDIADO"}}
	for _, r := range ranked {
		rows = append(rows, []string{
			r.Locality,
			fmt.Sprintf("%d", r.Cases),
			fmt.Sprintf("%d", r.Total),
			fmt.Sprintf("%.2f", r.Share),
		})
	}
	return writeCSVFile(w.tablePath("top_localidades_subsidiado.csv"), rows)
}

type subsidizedRank struct {
	Locality string
	Cases    int
	Total    int
	Share    float64
}

// rankSubsidized orders localities by subsidized-regime share, largest first,
// capped at the configured top count. Both the table and the chart use it.
func (w *Writer) rankSubsidized(in *Input) []subsidizedRank {
	ranked := make([]subsidizedRank, 0, len(in.Analysis.LocalityRegimes))
	for _, b := range in.Analysis.LocalityRegimes {
		ranked = append(ranked, subsidizedRank{
			Locality: b.Locality,
			Cases:    b.Counts[record.RegimeSubsidiado],
			Total:    b.Total,
			Share:    b.Shares[record.RegimeSubsidiado],
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Share != ranked[j].Share {
			return ranked[i].Share > ranked[j].Share
		}
		return ranked[i].Locality < ranked[j].Locality
	})
	if len(ranked) > w.params.TopLocalities {
		ranked = ranked[:w.params.TopLocalities]
	}
	return ranked
}

func (w *Writer) writeDictionaryTable(in *Input) error {
	rows := [][]string{{"COLUMNA", "TIPO", "NO_NULOS", "PCT_NULOS", "VALORES_DISTINTOS", "EJEMPLOS"}}
	for _, e := range in.Dictionary {
		rows = append(rows, []string{
			e.Column,
			e.Class,
			fmt.Sprintf("%d", e.NonNull),
			fmt.Sprintf("%.2f", e.NullPercent),
			fmt.Sprintf("%d", e.Distinct),
			strings.Join(e.Examples, "; "),
		})
	}
	return writeCSVFile(w.tablePath("diccionario_datos.csv"), rows)
}

// writeFrequencyTables emits a value-frequency table for every low and medium
// cardinality categorical column, first 15 values by frequency.
func (w *Writer) writeFrequencyTables(in *Input) error {
	records := in.Base.Records()
	if len(records) < 2 {
		return nil
	}
	names := records[0]
	body := records[1:]

	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	for _, e := range in.Dictionary {
		if e.Class != dataset.ColumnCategoricalLow && e.Class != dataset.ColumnCategoricalMid {
			continue
		}
		c, ok := index[e.Column]
		if !ok {
			continue
		}
		freq := make(map[string]int)
		total := 0
		for _, row := range body {
			if dataset.IsNullToken(row[c]) {
				continue
			}
			freq[row[c]]++
			total++
		}
		values := make([]string, 0, len(freq))
		for v := range freq {
			values = append(values, v)
		}
		sort.Slice(values, func(i, j int) bool {
			if freq[values[i]] != freq[values[j]] {
				return freq[values[i]] > freq[values[j]]
			}
			return values[i] < values[j]
		})
		if len(values) > 15 {
			values = values[:15]
		}

		rows := [][]string{{"VALOR", "FRECUENCIA", "PORCENTAJE"}}
		for _, v := range values {
			share := 0.0
			if total > 0 {
				share = float64(freq[v]) / float64(total) * 100
			}
			rows = append(rows, []string{v, fmt.Sprintf("%d", freq[v]), fmt.Sprintf("%.2f", share)})
		}
		name := fmt.Sprintf("frecuencia_%s.csv", strings.ToLower(e.Column))
		if err := writeCSVFile(w.tablePath(name), rows); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cw.Flush()
	return cw.Error()
}
