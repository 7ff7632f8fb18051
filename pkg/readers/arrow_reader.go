package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TFMV/datagen/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
)

// ArrowReader implements a reader for Arrow IPC files. Each record stored
// in the file is returned as one batch.
type ArrowReader struct {
	schema *arrow.Schema
	reader *ipc.FileReader
	file   *os.File
	next   int
}

// NewArrowReader creates a new Arrow IPC reader.
func NewArrowReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Arrow reader")
	}

	file, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Arrow file: %w", err)
	}

	reader, err := ipc.NewFileReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create Arrow file reader: %w", err)
	}

	return &ArrowReader{schema: reader.Schema(), reader: reader, file: file}, nil
}

// Read returns the next record. The caller must release it.
func (r *ArrowReader) Read(ctx context.Context) (arrow.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.next >= r.reader.NumRecords() {
		return nil, io.EOF
	}

	rec, err := r.reader.Record(r.next)
	if err != nil {
		return nil, fmt.Errorf("failed to read record at index %d: %w", r.next, err)
	}
	r.next++

	// The file reader reuses the record on its next call.
	rec.Retain()
	return rec, nil
}

// Schema returns the schema of the dataset.
func (r *ArrowReader) Schema() *arrow.Schema {
	return r.schema
}

// Close closes the reader and releases resources.
func (r *ArrowReader) Close() error {
	var err error
	if r.reader != nil {
		err = r.reader.Close()
		r.reader = nil
	}
	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}
	return err
}
