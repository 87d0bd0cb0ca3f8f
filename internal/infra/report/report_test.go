// internal/infra/report/report_test.go
package report

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nna_analyzer/internal/domain/analysis"
)

func testWriter(t *testing.T) *Writer {
	t.Helper()
	root := t.TempDir()
	return NewWriter(Params{
		ReportsDir:    filepath.Join(root, "reports"),
		ProcessedDir:  filepath.Join(root, "processed"),
		TopLocalities: 10,
	}, log.New(io.Discard, "", 0))
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "NUEVA_OCURRENCIA", formatChange(analysis.Change{Kind: analysis.ChangeNewOccurrence}))
	assert.Equal(t, "-12.50", formatChange(analysis.Change{Kind: analysis.ChangePercent, Percent: -12.5}))
	assert.Equal(t, "0.00", formatChange(analysis.Change{Kind: analysis.ChangePercent}))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "ND", formatCount(analysis.YearCount{Year: 2022, Missing: true}))
	assert.Equal(t, "7", formatCount(analysis.YearCount{Year: 2022, Count: 7}))
}

func TestManifest_ListsEveryArtifact(t *testing.T) {
	w := testWriter(t)
	require.NoError(t, os.MkdirAll(filepath.Join(w.params.ReportsDir, tablesDir), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(w.params.ReportsDir, tablesDir, "zonas_alerta.csv"), []byte("LOCALIDAD\n"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(w.params.ReportsDir, "data_summary.md"), []byte("# resumen\n"), 0o644))

	in := &Input{RunID: "run-1", StartedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, w.writeManifest(in))

	md, err := os.ReadFile(filepath.Join(w.params.ReportsDir, manifestMDName))
	require.NoError(t, err)
	assert.Contains(t, string(md), "tablas/zonas_alerta.csv")
	assert.Contains(t, string(md), "data_summary.md")
	assert.Contains(t, string(md), "Total: 2 archivos")
	assert.NotContains(t, string(md), manifestCSVName, "the manifest never lists itself")

	f, err := os.Open(filepath.Join(w.params.ReportsDir, manifestCSVName))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ARCHIVO", "TAMANO_BYTES"}, rows[0])
	assert.True(t, strings.HasSuffix(rows[1][0], "data_summary.md"))
}

func TestListArtifacts_Ordered(t *testing.T) {
	w := testWriter(t)
	require.NoError(t, os.MkdirAll(filepath.Join(w.params.ReportsDir, figuresDir, temporalDir), 0o755))
	for _, name := range []string{"b.csv", "a.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(w.params.ReportsDir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.WriteFile(
		filepath.Join(w.params.ReportsDir, figuresDir, temporalDir, "c.png"), []byte("png"), 0o644))

	artifacts, err := w.listArtifacts()
	require.NoError(t, err)
	require.Len(t, artifacts, 3)
	assert.Equal(t, "a.csv", artifacts[0].RelPath)
	assert.Equal(t, "b.csv", artifacts[1].RelPath)
	assert.Equal(t, "figures/temporal/c.png", artifacts[2].RelPath)
}

func TestWriteAlertTable(t *testing.T) {
	w := testWriter(t)
	require.NoError(t, os.MkdirAll(filepath.Join(w.params.ReportsDir, tablesDir), 0o755))

	in := &Input{Analysis: &analysis.Result{
		Alerts: []analysis.AlertZone{
			{
				Locality: "SUMAPAZ",
				Label:    analysis.TrendIncreasing,
				Net:      analysis.Change{FromYear: 2021, ToYear: 2025, Kind: analysis.ChangeNewOccurrence},
				TriggerBy: []analysis.Change{
					{FromYear: 2021, ToYear: 2022, Kind: analysis.ChangeNewOccurrence},
				},
				RunLength: 4,
			},
			{
				Locality:  "SUBA",
				Label:     analysis.TrendIncreasing,
				Net:       analysis.Change{FromYear: 2021, ToYear: 2025, Kind: analysis.ChangePercent, Percent: 200},
				TriggerBy: []analysis.Change{{FromYear: 2024, ToYear: 2025, Kind: analysis.ChangePercent, Percent: 130.77}},
				RunLength: 1,
			},
		},
	}}
	require.NoError(t, w.writeAlertTable(in))

	f, err := os.Open(w.tablePath("zonas_alerta.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"SUMAPAZ", "INCREASING", "NUEVA_OCURRENCIA", "2021-2022:NUEVA_OCURRENCIA", "4"}, rows[1])
	assert.Equal(t, "SUBA", rows[2][0])
	assert.Equal(t, "200.00", rows[2][2])
}
