// Package core provides the interfaces shared by the dataset writers and readers.
package core

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
)

// DatasetReader defines an interface for reading data back from an exported dataset.
type DatasetReader interface {
	// Read returns a record batch and an error if any.
	// Returns io.EOF when there are no more batches.
	Read(ctx context.Context) (arrow.Record, error)

	// Schema returns the schema of the dataset.
	Schema() *arrow.Schema

	// Close closes the reader and releases resources.
	Close() error
}

// DatasetWriter defines an interface for writing generated data to a destination.
type DatasetWriter interface {
	// Write writes a record to the destination.
	Write(ctx context.Context, record arrow.Record) error

	// Close closes the writer and flushes any pending data.
	Close() error
}

// ReaderConfig provides configuration for creating a reader.
type ReaderConfig struct {
	// Type is the type of the reader.
	Type string

	// Path is the path to the file.
	Path string

	// BatchSize is the size of batches to read.
	BatchSize int64
}

// WriterConfig provides configuration for creating a writer.
type WriterConfig struct {
	// Type is the export format.
	Type string

	// Path is the path to the output file.
	Path string

	// Dialect selects the SQL database: sqlite, postgres or mysql.
	Dialect string

	// ConnectionString is the DSN for a database. For sqlite it defaults to Path.
	ConnectionString string

	// Table is the table name for a database. It defaults to the file stem of Path.
	Table string

	// BatchSize is the number of rows per Arrow record handed to the writer.
	BatchSize int64
}
