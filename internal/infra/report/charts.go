// internal/infra/report/charts.go
package report

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"nna_analyzer/internal/domain/analysis"
	"nna_analyzer/internal/domain/record"
)

var chartPalette = []color.RGBA{
	{R: 70, G: 130, B: 180, A: 255},
	{R: 178, G: 34, B: 34, A: 255},
	{R: 34, G: 139, B: 34, A: 255},
	{R: 218, G: 165, B: 32, A: 255},
	{R: 106, G: 90, B: 205, A: 255},
	{R: 0, G: 139, B: 139, A: 255},
	{R: 205, G: 92, B: 92, A: 255},
	{R: 85, G: 107, B: 47, A: 255},
	{R: 188, G: 143, B: 143, A: 255},
	{R: 72, G: 61, B: 139, A: 255},
}

func (w *Writer) writeCharts(in *Input) error {
	if err := w.writeCityTotalsChart(in); err != nil {
		return err
	}
	if err := w.writeTopLocalitiesChart(in); err != nil {
		return err
	}
	if err := w.writeLocalityDistributionChart(in); err != nil {
		return err
	}
	if err := w.writeMatrixHeatmap(in); err != nil {
		return err
	}
	if err := w.writeAlertChart(in); err != nil {
		return err
	}
	if err := w.writeRegimeChart(in); err != nil {
		return err
	}
	if err := w.writeTopSubsidizedChart(in); err != nil {
		return err
	}
	return w.writeMissingValuesChart(in)
}

// writeCityTotalsChart draws the city-wide yearly total as a line over the
// covered study years.
func (w *Writer) writeCityTotalsChart(in *Input) error {
	m := in.Analysis.Matrix

	p := plot.New()
	p.Title.Text = "Casos NNA por año - Bogotá"
	p.X.Label.Text = "Año"
	p.Y.Label.Text = "Casos"

	var pts plotter.XYs
	for i, y := range m.Years {
		total, missing := 0, true
		for _, loc := range m.Localities {
			yc := m.Counts[loc][i]
			if !yc.Missing {
				missing = false
				total += yc.Count
			}
		}
		if !missing {
			pts = append(pts, plotter.XY{X: float64(y), Y: float64(total)})
		}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build yearly totals line: %w", err)
	}
	line.Width = vg.Points(2)
	line.Color = chartPalette[0]
	p.Add(line, plotter.NewGrid())

	return savePlot(p, 10*vg.Inch, 5*vg.Inch, w.figurePath(temporalDir, "evolucion_total_anual.png"))
}

// writeTopLocalitiesChart draws one line per locality for the localities with
// the largest overall volume.
func (w *Writer) writeTopLocalitiesChart(in *Input) error {
	m := in.Analysis.Matrix

	totals := make(map[string]int, len(m.Localities))
	for _, loc := range m.Localities {
		for _, yc := range m.Counts[loc] {
			totals[loc] += yc.Count
		}
	}
	top := append([]string(nil), m.Localities...)
	sort.Slice(top, func(i, j int) bool {
		if totals[top[i]] != totals[top[j]] {
			return totals[top[i]] > totals[top[j]]
		}
		return top[i] < top[j]
	})
	if len(top) > w.params.TopLocalities {
		top = top[:w.params.TopLocalities]
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Evolución anual - top %d localidades", len(top))
	p.X.Label.Text = "Año"
	p.Y.Label.Text = "Casos"
	p.Legend.Top = true

	for i, loc := range top {
		var pts plotter.XYs
		for _, yc := range m.Counts[loc] {
			if yc.Missing {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(yc.Year), Y: float64(yc.Count)})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build line for %s: %w", loc, err)
		}
		line.Width = vg.Points(2)
		line.Color = chartPalette[i%len(chartPalette)]
		p.Add(line)
		p.Legend.Add(loc, line)
	}
	p.Add(plotter.NewGrid())

	return savePlot(p, 12*vg.Inch, 6*vg.Inch, w.figurePath(temporalDir, "evolucion_top_localidades.png"))
}

// writeLocalityDistributionChart draws total cases per locality as bars.
func (w *Writer) writeLocalityDistributionChart(in *Input) error {
	m := in.Analysis.Matrix

	p := plot.New()
	p.Title.Text = "Distribución de casos por localidad"
	p.X.Label.Text = "Localidad"
	p.Y.Label.Text = "Casos"

	values := make(plotter.Values, len(m.Localities))
	labels := make([]string, len(m.Localities))
	for i, loc := range m.Localities {
		for _, yc := range m.Counts[loc] {
			values[i] += float64(yc.Count)
		}
		labels[i] = loc
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return fmt.Errorf("failed to build locality bars: %w", err)
	}
	bars.Color = chartPalette[0]
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight

	return savePlot(p, 14*vg.Inch, 7*vg.Inch, w.figurePath(spatialDir, "distribucion_localidades.png"))
}

// matrixGrid exposes the locality × year matrix to the heat map plotter.
// Rows follow the matrix's locality order; missing years draw as zero.
type matrixGrid struct {
	m *analysis.CountMatrix
}

func (g matrixGrid) Dims() (c, r int) { return len(g.m.Years), len(g.m.Localities) }
func (g matrixGrid) X(c int) float64  { return float64(c) }
func (g matrixGrid) Y(r int) float64  { return float64(r) }

func (g matrixGrid) Z(c, r int) float64 {
	yc := g.m.Counts[g.m.Localities[r]][c]
	if yc.Missing {
		return 0
	}
	return float64(yc.Count)
}

// writeMatrixHeatmap renders the full locality × year count matrix.
func (w *Writer) writeMatrixHeatmap(in *Input) error {
	m := in.Analysis.Matrix

	p := plot.New()
	p.Title.Text = "Casos por localidad y año"
	p.X.Label.Text = "Año"
	p.Y.Label.Text = "Localidad"

	heat := plotter.NewHeatMap(matrixGrid{m: m}, palette.Heat(16, 1))
	p.Add(heat)

	yearLabels := make([]string, len(m.Years))
	for i, y := range m.Years {
		yearLabels[i] = fmt.Sprintf("%d", y)
	}
	p.NominalX(yearLabels...)
	p.NominalY(m.Localities...)

	return savePlot(p, 10*vg.Inch, 10*vg.Inch, w.figurePath(spatialDir, "heatmap_localidad_año.png"))
}

// writeAlertChart draws the net change of every alert zone. New occurrences
// have no numeric percentage and are drawn at the top of the scale.
func (w *Writer) writeAlertChart(in *Input) error {
	alerts := in.Analysis.Alerts
	if len(alerts) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "Zonas de alerta - cambio neto"
	p.X.Label.Text = "Localidad"
	p.Y.Label.Text = "Cambio neto (%)"

	maxPercent := 0.0
	for _, z := range alerts {
		if v := math.Abs(z.Net.Percent); v > maxPercent {
			maxPercent = v
		}
	}
	if maxPercent == 0 {
		maxPercent = 100
	}

	values := make(plotter.Values, len(alerts))
	labels := make([]string, len(alerts))
	for i, z := range alerts {
		if z.Net.Kind == analysis.ChangeNewOccurrence {
			values[i] = maxPercent * 1.1
		} else {
			values[i] = z.Net.Percent
		}
		labels[i] = z.Locality
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("failed to build alert bars: %w", err)
	}
	bars.Color = chartPalette[1]
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight

	return savePlot(p, 12*vg.Inch, 6*vg.Inch, w.figurePath(spatialDir, "zonas_alerta.png"))
}

// writeRegimeChart draws the city-wide health regime distribution.
func (w *Writer) writeRegimeChart(in *Input) error {
	city := in.Analysis.CityRegimes

	p := plot.New()
	p.Title.Text = "Distribución por régimen de salud"
	p.X.Label.Text = "Régimen"
	p.Y.Label.Text = "Casos"

	regimes := record.AllRegimes()
	values := make(plotter.Values, len(regimes))
	labels := make([]string, len(regimes))
	for i, reg := range regimes {
		values[i] = float64(city.Counts[reg])
		labels[i] = string(reg)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return fmt.Errorf("failed to build regime bars: %w", err)
	}
	bars.Color = chartPalette[2]
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)

	return savePlot(p, 8*vg.Inch, 5*vg.Inch, w.figurePath(exploratoryDir, "distribucion_regimen.png"))
}

// writeTopSubsidizedChart draws the subsidized-regime share of the ranked
// localities, mirroring top_localidades_subsidiado.csv.
func (w *Writer) writeTopSubsidizedChart(in *Input) error {
	ranked := w.rankSubsidized(in)
	if len(ranked) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Régimen subsidiado - top %d localidades", len(ranked))
	p.X.Label.Text = "Localidad"
	p.Y.Label.Text = "Subsidiado (%)"

	values := make(plotter.Values, len(ranked))
	labels := make([]string, len(ranked))
	for i, r := range ranked {
		values[i] = r.Share
		labels[i] = r.Locality
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("failed to build subsidized bars: %w", err)
	}
	bars.Color = chartPalette[3]
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight

	return savePlot(p, 10*vg.Inch, 6*vg.Inch, w.figurePath(exploratoryDir, "top_subsidiado_localidades.png"))
}

// writeMissingValuesChart draws the per-column null percentage for every
// column that still has gaps after cleaning, worst first, capped at 15.
func (w *Writer) writeMissingValuesChart(in *Input) error {
	type gap struct {
		column  string
		percent float64
	}
	var gaps []gap
	for _, e := range in.Dictionary {
		if e.NullPercent > 0 {
			gaps = append(gaps, gap{column: e.Column, percent: e.NullPercent})
		}
	}
	if len(gaps) == 0 {
		return nil
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].percent != gaps[j].percent {
			return gaps[i].percent > gaps[j].percent
		}
		return gaps[i].column < gaps[j].column
	})
	if len(gaps) > 15 {
		gaps = gaps[:15]
	}

	p := plot.New()
	p.Title.Text = "Valores faltantes por columna"
	p.X.Label.Text = "Columna"
	p.Y.Label.Text = "Nulos (%)"
	p.Y.Max = 100

	values := make(plotter.Values, len(gaps))
	labels := make([]string, len(gaps))
	for i, g := range gaps {
		values[i] = g.percent
		labels[i] = g.column
	}

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("failed to build missing-values bars: %w", err)
	}
	bars.Color = chartPalette[4]
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight

	return savePlot(p, 12*vg.Inch, 6*vg.Inch, w.figurePath(exploratoryDir, "valores_faltantes.png"))
}

func savePlot(p *plot.Plot, width, height vg.Length, path string) error {
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}
