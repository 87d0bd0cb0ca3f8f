package record

import (
	"context"

	"github.com/go-gota/gota/dataframe"
)

// Repository defines the operations for loading the raw intervention dataset.
// Implementations read a single file (Excel or CSV) into an all-string
// DataFrame; type interpretation is the cleaning layer's concern.
type Repository interface {
	Load(ctx context.Context) (dataframe.DataFrame, error)
}
