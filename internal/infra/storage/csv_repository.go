package storage

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// CSVRepository loads the raw dataset from a delimited text file.
type CSVRepository struct {
	path string
}

func NewCSVRepository(path string) *CSVRepository {
	return &CSVRepository{path: path}
}

// Load reads the CSV into an all-string DataFrame. The delimiter is sniffed
// from the header line (`;` wins over `,` when it dominates), matching the
// source exports which come in both variants.
func (r *CSVRepository) Load(ctx context.Context) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error reading dataset file: %w", err)
	}
	// Strip a UTF-8 BOM; the original base exports are written with one.
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	df := dataframe.ReadCSV(
		bytes.NewReader(data),
		dataframe.WithDelimiter(sniffDelimiter(data)),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("error parsing CSV: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, ErrEmptyDataset
	}
	return df, nil
}

func sniffDelimiter(data []byte) rune {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	if !scanner.Scan() {
		return ','
	}
	header := scanner.Bytes()
	if bytes.Count(header, []byte{';'}) > bytes.Count(header, []byte{','}) {
		return ';'
	}
	return ','
}
