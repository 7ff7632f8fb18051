package readers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/TFMV/datagen/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// DefaultBatchSize is the number of rows per record when the config sets none.
const DefaultBatchSize = 10000

// ParquetReader implements a reader for Parquet files.
type ParquetReader struct {
	schema     *arrow.Schema
	fileReader *file.Reader
	records    pqarrow.RecordReader
	file       *os.File
}

// NewParquetReader creates a new Parquet reader.
func NewParquetReader(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Parquet reader")
	}

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	f, err := os.Open(config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Parquet file: %w", err)
	}

	parquetReader, err := file.NewParquetReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create Parquet file reader: %w", err)
	}

	arrowProps := pqarrow.ArrowReadProperties{
		Parallel:  true,
		BatchSize: batchSize,
	}
	arrowReader, err := pqarrow.NewFileReader(parquetReader, arrowProps, memory.DefaultAllocator)
	if err != nil {
		parquetReader.Close()
		f.Close()
		return nil, fmt.Errorf("failed to create Arrow reader: %w", err)
	}

	records, err := arrowReader.GetRecordReader(context.Background(), nil, nil)
	if err != nil {
		parquetReader.Close()
		f.Close()
		return nil, fmt.Errorf("failed to create record reader: %w", err)
	}

	return &ParquetReader{
		schema:     records.Schema(),
		fileReader: parquetReader,
		records:    records,
		file:       f,
	}, nil
}

// Read returns the next batch of records. The caller must release it.
func (r *ParquetReader) Read(ctx context.Context) (arrow.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !r.records.Next() {
		if err := r.records.Err(); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read Parquet batch: %w", err)
		}
		return nil, io.EOF
	}

	rec := r.records.Record()
	rec.Retain()
	return rec, nil
}

// Schema returns the schema of the dataset.
func (r *ParquetReader) Schema() *arrow.Schema {
	return r.schema
}

// Close closes the reader and releases resources.
func (r *ParquetReader) Close() error {
	if r.records != nil {
		r.records.Release()
		r.records = nil
	}

	var err error
	if r.fileReader != nil {
		err = r.fileReader.Close()
		r.fileReader = nil
	}
	if r.file != nil {
		if closeErr := r.file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		r.file = nil
	}
	return err
}
