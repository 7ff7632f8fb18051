// Package writers exports generated tables to files and databases.
package writers

import (
	"errors"
	"fmt"
	"sort"

	"github.com/TFMV/datagen/pkg/core"
)

// ErrUnsupportedFormat is returned for unknown or unimplemented export formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Factory creates a writer based on the given configuration.
type Factory struct {
	// registered writers by type
	writers map[string]Creator
}

// Creator is a function that creates a writer from a configuration.
type Creator func(config core.WriterConfig) (core.DatasetWriter, error)

// NewFactory creates a new writer factory.
func NewFactory() *Factory {
	return &Factory{
		writers: make(map[string]Creator),
	}
}

// Register registers a creator for a writer type.
func (f *Factory) Register(typ string, creator Creator) {
	f.writers[typ] = creator
}

// Create creates a writer based on the given configuration.
func (f *Factory) Create(config core.WriterConfig) (core.DatasetWriter, error) {
	creator, ok := f.writers[config.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, config.Type)
	}
	return creator(config)
}

// Types lists the registered writer types in sorted order.
func (f *Factory) Types() []string {
	types := make([]string, 0, len(f.writers))
	for typ := range f.writers {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory is the default writer factory with built-in writer types.
var DefaultFactory = NewFactory()

// init registers built-in writer types.
func init() {
	DefaultFactory.Register("csv", NewCSVWriter)
	DefaultFactory.Register("excel", NewExcelWriter)
	DefaultFactory.Register("json", NewJSONWriter)
	DefaultFactory.Register("parquet", NewParquetWriter)
	DefaultFactory.Register("arrow", NewArrowWriter)
	DefaultFactory.Register("sql", NewSQLWriter)
}
