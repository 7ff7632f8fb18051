package writers

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/TFMV/datagen/logger"
	"github.com/TFMV/datagen/pkg/core"
	"github.com/TFMV/datagen/pkg/table"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"
)

// DefaultBatchSize is the number of rows per Arrow record handed to a writer.
const DefaultBatchSize = 10000

// Extensions maps file formats to the extension appended when the output
// path has none. SQL uses it for sqlite database files.
var Extensions = map[string]string{
	"csv":     ".csv",
	"excel":   ".xlsx",
	"json":    ".json",
	"parquet": ".parquet",
	"arrow":   ".arrow",
	"sql":     ".db",
}

// Formats lists every accepted format name, including the ones that are
// recognized but not implemented.
func Formats() []string {
	return append(DefaultFactory.Types(), "cloud")
}

// Export writes tbl with the writer selected by config.Type and returns
// where it went: the file path, or dialect:table for databases.
func Export(ctx context.Context, tbl *table.Table, config core.WriterConfig) (string, error) {
	config.Type = strings.ToLower(strings.TrimSpace(config.Type))
	if config.Type == "cloud" {
		return "", fmt.Errorf("%w: cloud export is not implemented", ErrUnsupportedFormat)
	}

	config, dest, err := resolve(config)
	if err != nil {
		return "", err
	}

	log := logger.GetLogger().With(
		zap.String("format", config.Type),
		zap.String("destination", dest),
	)
	start := time.Now()

	w, err := DefaultFactory.Create(config)
	if err != nil {
		return "", err
	}

	chunk := int(config.BatchSize)
	if chunk <= 0 {
		chunk = DefaultBatchSize
	}
	err = tbl.Records(memory.DefaultAllocator, chunk, func(rec arrow.Record) error {
		return w.Write(ctx, rec)
	})
	if closeErr := w.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		log.Error("Export failed", zap.Error(err))
		return "", fmt.Errorf("failed to export %s: %w", config.Type, err)
	}

	log.Info("Export complete",
		zap.Int("rows", tbl.NumRows()),
		zap.Int("columns", len(tbl.Columns)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return dest, nil
}

// resolve fills in defaults: the format's extension, and for SQL the table
// name and sqlite database path.
func resolve(config core.WriterConfig) (core.WriterConfig, string, error) {
	if _, ok := DefaultFactory.writers[config.Type]; !ok {
		return config, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, config.Type)
	}

	if config.Type != "sql" {
		if config.Path == "" {
			return config, "", fmt.Errorf("output path is required for %s export", config.Type)
		}
		config.Path = WithExtension(config.Path, Extensions[config.Type])
		return config, config.Path, nil
	}

	dialect, err := LookupDialect(config.Dialect)
	if err != nil {
		return config, "", err
	}
	config.Dialect = dialect.Name
	if config.Table == "" && config.Path != "" {
		config.Table = strings.TrimSuffix(filepath.Base(config.Path), filepath.Ext(config.Path))
	}
	if dialect.Name == "sqlite" && config.ConnectionString == "" && config.Path != "" {
		config.Path = WithExtension(config.Path, Extensions["sql"])
	}
	return config, dialect.Name + ":" + config.Table, nil
}

// WithExtension appends ext to path unless path already has an extension.
func WithExtension(path, ext string) string {
	if filepath.Ext(path) != "" {
		return path
	}
	return path + ext
}
