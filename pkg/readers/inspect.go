package readers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/TFMV/datagen/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
)

// Summary describes an exported dataset.
type Summary struct {
	Schema  *arrow.Schema
	NumRows int64
	// Preview holds the first rows rendered with each array's ValueStr.
	Preview [][]string
}

// Inspect reads the whole dataset, counting rows and keeping the first
// previewRows rows.
func Inspect(ctx context.Context, config core.ReaderConfig, previewRows int) (*Summary, error) {
	reader, err := DefaultFactory.Create(config)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	summary := &Summary{}
	for {
		rec, err := reader.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", config.Path, err)
		}
		summary.NumRows += rec.NumRows()
		summary.Preview = appendPreview(summary.Preview, rec, previewRows)
		rec.Release()
	}
	summary.Schema = reader.Schema()
	return summary, nil
}

func appendPreview(rows [][]string, rec arrow.Record, limit int) [][]string {
	for i := 0; i < int(rec.NumRows()) && len(rows) < limit; i++ {
		row := make([]string, rec.NumCols())
		for j, col := range rec.Columns() {
			row[j] = col.ValueStr(i)
		}
		rows = append(rows, row)
	}
	return rows
}
