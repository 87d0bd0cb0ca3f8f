package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"nna_analyzer/internal/domain/record"
)

// Custom errors
var ErrUnsupportedFormat = fmt.Errorf("unsupported dataset format (want .csv, .xlsx or .xls)")
var ErrEmptyDataset = fmt.Errorf("dataset contains no data rows")

// NewDatasetRepository picks the repository implementation for the file
// extension of path.
func NewDatasetRepository(path string) (record.Repository, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return NewCSVRepository(path), nil
	case ".xlsx", ".xls":
		return NewExcelRepository(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}
