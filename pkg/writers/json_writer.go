package writers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/TFMV/datagen/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
)

// JSONWriter implements a writer for JSON files. The output is a single
// array of row objects whose keys keep the column order.
type JSONWriter struct {
	file     *os.File
	buf      *bufio.Writer
	firstRow bool
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for JSON writer")
	}

	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON file: %w", err)
	}

	buf := bufio.NewWriter(file)
	if _, err := buf.WriteString("["); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write opening bracket: %w", err)
	}

	return &JSONWriter{
		file:     file,
		buf:      buf,
		firstRow: true,
	}, nil
}

// Write writes a record to the file.
func (w *JSONWriter) Write(ctx context.Context, record arrow.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	keys := make([][]byte, record.NumCols())
	for j, field := range record.Schema().Fields() {
		key, err := json.Marshal(field.Name)
		if err != nil {
			return fmt.Errorf("failed to encode column name: %w", err)
		}
		keys[j] = key
	}

	for i := 0; i < int(record.NumRows()); i++ {
		if w.firstRow {
			w.firstRow = false
			w.buf.WriteString("\n  {")
		} else {
			w.buf.WriteString(",\n  {")
		}

		for j, col := range record.Columns() {
			if j > 0 {
				w.buf.WriteByte(',')
			}
			// Dates and timestamps marshal as formatted strings.
			value, err := json.Marshal(col.GetOneForMarshal(i))
			if err != nil {
				return fmt.Errorf("failed to encode column %s: %w", record.ColumnName(j), err)
			}
			w.buf.Write(keys[j])
			w.buf.WriteByte(':')
			w.buf.Write(value)
		}

		if err := w.buf.WriteByte('}'); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

// Close closes the writer and flushes any pending data.
func (w *JSONWriter) Close() error {
	if w.file == nil {
		return nil
	}

	closing := "\n]\n"
	if w.firstRow {
		closing = "]\n"
	}

	_, err := w.buf.WriteString(closing)
	if flushErr := w.buf.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	if closeErr := w.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	w.file = nil

	return err
}
