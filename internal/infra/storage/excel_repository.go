package storage

import (
	"context"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Name of the sheet that carries the consolidated base when present.
const baseSheetName = "BD"

// ExcelRepository loads the raw dataset from an Excel workbook.
type ExcelRepository struct {
	path string
}

func NewExcelRepository(path string) *ExcelRepository {
	return &ExcelRepository{path: path}
}

// Load reads the workbook into an all-string DataFrame. The sheet named "BD"
// is preferred; otherwise the last sheet of the workbook is used, where the
// consolidated base usually lives.
func (r *ExcelRepository) Load(ctx context.Context) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	sheet := pickSheet(f.GetSheetList())
	if sheet == "" {
		return dataframe.DataFrame{}, fmt.Errorf("workbook %s has no sheets", r.path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error reading sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return dataframe.DataFrame{}, ErrEmptyDataset
	}

	// GetRows trims trailing empty cells, so pad every row out to the
	// header width before handing the records to gota.
	width := len(rows[0])
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
		rows[i] = rows[i][:width]
	}

	df := dataframe.LoadRecords(
		rows,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error building frame from sheet %s: %w", sheet, df.Err)
	}
	return df, nil
}

func pickSheet(sheets []string) string {
	if len(sheets) == 0 {
		return ""
	}
	for _, s := range sheets {
		if s == baseSheetName {
			return s
		}
	}
	return sheets[len(sheets)-1]
}
