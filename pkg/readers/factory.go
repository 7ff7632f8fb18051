// Package readers loads exported datasets back as Arrow record batches.
package readers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/TFMV/datagen/pkg/core"
)

// Factory creates a reader based on the given configuration.
type Factory struct {
	// registered readers by type
	readers map[string]Creator
}

// Creator is a function that creates a reader from a configuration.
type Creator func(config core.ReaderConfig) (core.DatasetReader, error)

// NewFactory creates a new reader factory.
func NewFactory() *Factory {
	return &Factory{
		readers: make(map[string]Creator),
	}
}

// Register registers a creator for a reader type.
func (f *Factory) Register(typ string, creator Creator) {
	f.readers[typ] = creator
}

// Create creates a reader based on the given configuration. An empty type
// is inferred from the file extension.
func (f *Factory) Create(config core.ReaderConfig) (core.DatasetReader, error) {
	if config.Type == "" {
		config.Type = TypeFromPath(config.Path)
	}
	creator, ok := f.readers[config.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported reader type: %q", config.Type)
	}
	return creator(config)
}

// TypeFromPath maps a file extension to a reader type.
func TypeFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return "parquet"
	case ".arrow", ".ipc", ".feather":
		return "arrow"
	case ".csv":
		return "csv"
	default:
		return ""
	}
}

// DefaultFactory is the default reader factory with built-in reader types.
var DefaultFactory = NewFactory()

// init registers built-in reader types.
func init() {
	DefaultFactory.Register("parquet", NewParquetReader)
	DefaultFactory.Register("arrow", NewArrowReader)
	DefaultFactory.Register("csv", NewCSVReader)
}
