package writers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/TFMV/datagen/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
)

// CSVWriter implements a writer for CSV files with a header row.
type CSVWriter struct {
	writer *csv.Writer
	file   *os.File
}

// NewCSVWriter creates a new CSV writer.
func NewCSVWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for CSV writer")
	}

	file, err := os.Create(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file: %w", err)
	}

	// The Arrow writer is created with the first record's schema.
	return &CSVWriter{file: file}, nil
}

// Write writes a record to the file.
func (w *CSVWriter) Write(ctx context.Context, record arrow.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if w.writer == nil {
		w.writer = csv.NewWriter(w.file, record.Schema(),
			csv.WithHeader(true),
			csv.WithNullWriter(""),
		)
	}

	if err := w.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Close closes the writer and flushes any pending data.
func (w *CSVWriter) Close() error {
	var err error

	if w.writer != nil {
		w.writer.Flush()
		err = w.writer.Error()
	}

	if w.file != nil {
		if closeErr := w.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		w.file = nil
	}

	return err
}
