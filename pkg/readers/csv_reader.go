package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TFMV/datagen/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// CSVReader implements a reader for CSV files, converting to Arrow. Column
// types are inferred from the first chunk.
type CSVReader struct {
	file    *os.File
	reader  *csv.Reader
	pending arrow.Record
	done    bool
}

// NewCSVReader creates a new CSV reader.
func NewCSVReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for CSV reader")
	}

	file, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	chunkSize := config.BatchSize
	if chunkSize <= 0 {
		chunkSize = DefaultBatchSize
	}

	reader := csv.NewInferringReader(
		file,
		csv.WithChunk(int(chunkSize)),
		csv.WithHeader(true),
		csv.WithNullReader(true, ""),
		csv.WithAllocator(memory.DefaultAllocator),
	)

	return &CSVReader{file: file, reader: reader}, nil
}

// Read returns the next batch of records. The caller must release it.
func (r *CSVReader) Read(ctx context.Context) (arrow.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if r.pending != nil {
		rec := r.pending
		r.pending = nil
		return rec, nil
	}
	return r.advance()
}

func (r *CSVReader) advance() (arrow.Record, error) {
	if r.done {
		return nil, io.EOF
	}
	if !r.reader.Next() {
		r.done = true
		if err := r.reader.Err(); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		return nil, io.EOF
	}
	rec := r.reader.Record()
	rec.Retain()
	return rec, nil
}

// Schema returns the schema of the dataset. The schema is only known after
// the first chunk has been parsed, so this may read ahead.
func (r *CSVReader) Schema() *arrow.Schema {
	if schema := r.reader.Schema(); schema != nil {
		return schema
	}
	if r.pending == nil && !r.done {
		rec, err := r.advance()
		if err != nil {
			return arrow.NewSchema(nil, nil)
		}
		r.pending = rec
	}
	if schema := r.reader.Schema(); schema != nil {
		return schema
	}
	return arrow.NewSchema(nil, nil)
}

// Close closes the reader and releases resources.
func (r *CSVReader) Close() error {
	if r.pending != nil {
		r.pending.Release()
		r.pending = nil
	}
	if r.reader != nil {
		r.reader.Release()
		r.reader = nil
	}
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}
