// internal/infra/report/excel.go
package report

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"nna_analyzer/internal/domain/record"
)

const workbookName = "analisis_nna.xlsx"

// writeWorkbook emits the analysis workbook plus the cleaned base workbook.
func (w *Writer) writeWorkbook(in *Input) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := w.addDictionarySheet(f, in); err != nil {
		return err
	}
	if err := w.addMatrixSheet(f, in); err != nil {
		return err
	}
	if err := w.addTrendSheet(f, in); err != nil {
		return err
	}
	if err := w.addAlertSheet(f, in); err != nil {
		return err
	}
	if err := w.addRegimeSheet(f, in); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	path := filepath.Join(w.params.ReportsDir, workbookName)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	return w.writeBaseWorkbook(in)
}

// writeBaseWorkbook saves the cleaned base to Excel with the usual BD sheet
// name, so the workbook round-trips through the loader.
func (w *Writer) writeBaseWorkbook(in *Input) error {
	f := excelize.NewFile()
	defer f.Close()

	rows := make([][]any, 0, in.Base.Nrow()+1)
	for _, row := range in.Base.Records() {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		rows = append(rows, cells)
	}
	if err := addSheet(f, "BD", rows); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	path := filepath.Join(w.params.ProcessedDir, cleanedBaseName+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func (w *Writer) addDictionarySheet(f *excelize.File, in *Input) error {
	rows := [][]any{{"Columna", "Tipo", "No nulos", "% nulos", "Valores distintos"}}
	for _, e := range in.Dictionary {
		rows = append(rows, []any{e.Column, e.Class, e.NonNull, e.NullPercent, e.Distinct})
	}
	return addSheet(f, "Diccionario", rows)
}

func (w *Writer) addMatrixSheet(f *excelize.File, in *Input) error {
	m := in.Analysis.Matrix
	header := []any{"Localidad"}
	for _, y := range m.Years {
		header = append(header, y)
	}
	rows := [][]any{header}
	for _, loc := range m.Localities {
		row := []any{loc}
		for _, yc := range m.Counts[loc] {
			if yc.Missing {
				row = append(row, "ND")
			} else {
				row = append(row, yc.Count)
			}
		}
		rows = append(rows, row)
	}
	return addSheet(f, "Matriz_Localidad_Año", rows)
}

func (w *Writer) addTrendSheet(f *excelize.File, in *Input) error {
	rows := [][]any{{"Localidad", "Cambio neto %", "Tendencia"}}
	for _, t := range in.Analysis.Trends {
		rows = append(rows, []any{t.Locality, formatChange(t.Net), string(t.Label)})
	}
	return addSheet(f, "Tendencias", rows)
}

func (w *Writer) addAlertSheet(f *excelize.File, in *Input) error {
	rows := [][]any{{"Localidad", "Tendencia", "Cambio neto %", "Racha"}}
	for _, z := range in.Analysis.Alerts {
		rows = append(rows, []any{z.Locality, string(z.Label), formatChange(z.Net), z.RunLength})
	}
	return addSheet(f, "Zonas_Alerta", rows)
}

func (w *Writer) addRegimeSheet(f *excelize.File, in *Input) error {
	header := []any{"Localidad", "Total"}
	for _, reg := range record.AllRegimes() {
		header = append(header, string(reg))
	}
	rows := [][]any{header}
	for _, b := range in.Analysis.LocalityRegimes {
		row := []any{b.Locality, b.Total}
		for _, reg := range record.AllRegimes() {
			row = append(row, b.Counts[reg])
		}
		rows = append(rows, row)
	}
	return addSheet(f, "Regimen_Localidad", rows)
}

func addSheet(f *excelize.File, name string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("bad cell coordinates in sheet %s: %w", name, err)
			}
			if err := f.SetCellValue(name, cell, v); err != nil {
				return fmt.Errorf("failed to set %s!%s: %w", name, cell, err)
			}
		}
	}
	return nil
}
