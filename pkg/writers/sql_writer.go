package writers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TFMV/datagen/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	// Registered database/sql drivers, one per dialect.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect describes how one database spells identifiers, placeholders and
// column types.
type Dialect struct {
	Name   string
	Driver string
	quote  func(string) string
	param  func(n int) string
	column func(arrow.DataType) string
	// native reports whether dates and timestamps bind as time.Time.
	native bool
}

func quoteDouble(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
func quoteBacktick(s string) string { return "`" + strings.ReplaceAll(s, "`", "``") + "`" }
func questionMark(int) string      { return "?" }
func dollar(n int) string          { return fmt.Sprintf("$%d", n) }

var dialects = map[string]Dialect{
	"sqlite": {
		Name: "sqlite", Driver: "sqlite", quote: quoteDouble, param: questionMark,
		column: func(t arrow.DataType) string {
			switch t.ID() {
			case arrow.INT64, arrow.BOOL:
				return "INTEGER"
			case arrow.FLOAT64:
				return "REAL"
			default:
				return "TEXT"
			}
		},
	},
	"postgres": {
		Name: "postgres", Driver: "pgx", quote: quoteDouble, param: dollar, native: true,
		column: func(t arrow.DataType) string {
			switch t.ID() {
			case arrow.INT64:
				return "BIGINT"
			case arrow.FLOAT64:
				return "DOUBLE PRECISION"
			case arrow.BOOL:
				return "BOOLEAN"
			case arrow.DATE32:
				return "DATE"
			case arrow.TIMESTAMP:
				return "TIMESTAMP"
			default:
				return "TEXT"
			}
		},
	},
	"mysql": {
		Name: "mysql", Driver: "mysql", quote: quoteBacktick, param: questionMark, native: true,
		column: func(t arrow.DataType) string {
			switch t.ID() {
			case arrow.INT64:
				return "BIGINT"
			case arrow.FLOAT64:
				return "DOUBLE"
			case arrow.BOOL:
				return "BOOLEAN"
			case arrow.DATE32:
				return "DATE"
			case arrow.TIMESTAMP:
				return "DATETIME(6)"
			default:
				return "TEXT"
			}
		},
	},
}

// LookupDialect returns the dialect registered under name. Aliases such as
// "sqlite3", "postgresql" and "pgx" are accepted.
func LookupDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "sqlite", "sqlite3":
		return dialects["sqlite"], nil
	case "postgres", "postgresql", "pgx":
		return dialects["postgres"], nil
	case "mysql", "mariadb":
		return dialects["mysql"], nil
	default:
		return Dialect{}, fmt.Errorf("%w: SQL dialect %q", ErrUnsupportedFormat, name)
	}
}

// CreateTableSQL renders the CREATE TABLE statement for schema.
func (d Dialect) CreateTableSQL(table string, schema *arrow.Schema) string {
	cols := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		cols[i] = d.quote(f.Name) + " " + d.column(f.Type)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.quote(table), strings.Join(cols, ", "))
}

// InsertSQL renders a single-row INSERT statement for schema.
func (d Dialect) InsertSQL(table string, schema *arrow.Schema) string {
	cols := make([]string, schema.NumFields())
	params := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		cols[i] = d.quote(f.Name)
		params[i] = d.param(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.quote(table), strings.Join(cols, ", "), strings.Join(params, ", "))
}

// SQLWriter replaces a database table with the written records. Everything
// happens in one transaction that commits on Close.
type SQLWriter struct {
	db      *sql.DB
	dialect Dialect
	table   string
	tx      *sql.Tx
	insert  *sql.Stmt
	err     error
}

// NewSQLWriter opens the database and checks it is reachable.
func NewSQLWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	dialect, err := LookupDialect(config.Dialect)
	if err != nil {
		return nil, err
	}
	if config.Table == "" {
		return nil, errors.New("table is required for SQL writer")
	}

	dsn := config.ConnectionString
	if dsn == "" && dialect.Name == "sqlite" {
		dsn = config.Path
	}
	if dsn == "" {
		return nil, fmt.Errorf("connection string is required for %s writer", dialect.Name)
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect.Name, err)
	}

	return &SQLWriter{db: db, dialect: dialect, table: config.Table}, nil
}

// Write inserts the record's rows. The first call drops and recreates the table.
func (w *SQLWriter) Write(ctx context.Context, record arrow.Record) error {
	if w.err != nil {
		return w.err
	}
	if err := w.write(ctx, record); err != nil {
		w.err = err
		return err
	}
	return nil
}

func (w *SQLWriter) write(ctx context.Context, record arrow.Record) error {
	if w.tx == nil {
		if err := w.begin(ctx, record.Schema()); err != nil {
			return err
		}
	}

	args := make([]any, record.NumCols())
	for i := 0; i < int(record.NumRows()); i++ {
		for j, col := range record.Columns() {
			args[j] = w.sqlValue(col, i)
		}
		if _, err := w.insert.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row into %s: %w", w.table, err)
		}
	}
	return nil
}

func (w *SQLWriter) begin(ctx context.Context, schema *arrow.Schema) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	w.tx = tx

	drop := fmt.Sprintf("DROP TABLE IF EXISTS %s", w.dialect.quote(w.table))
	if _, err := tx.ExecContext(ctx, drop); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", w.table, err)
	}
	if _, err := tx.ExecContext(ctx, w.dialect.CreateTableSQL(w.table, schema)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", w.table, err)
	}

	stmt, err := tx.PrepareContext(ctx, w.dialect.InsertSQL(w.table, schema))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	w.insert = stmt
	return nil
}

func (w *SQLWriter) sqlValue(col arrow.Array, i int) any {
	if col.IsNull(i) {
		return nil
	}
	switch c := col.(type) {
	case *array.Int64:
		return c.Value(i)
	case *array.Float64:
		return c.Value(i)
	case *array.Boolean:
		return c.Value(i)
	case *array.String:
		return c.Value(i)
	case *array.Date32:
		if w.dialect.native {
			return c.Value(i).ToTime()
		}
		return c.Value(i).FormattedString()
	case *array.Timestamp:
		unit := c.DataType().(*arrow.TimestampType).Unit
		ts := c.Value(i).ToTime(unit)
		if w.dialect.native {
			return ts
		}
		return ts.Format(time.DateTime)
	default:
		return col.ValueStr(i)
	}
}

// Close commits the transaction, or rolls it back if any write failed.
func (w *SQLWriter) Close() error {
	var err error

	if w.insert != nil {
		err = w.insert.Close()
		w.insert = nil
	}

	if w.tx != nil {
		if w.err != nil {
			_ = w.tx.Rollback()
		} else if commitErr := w.tx.Commit(); commitErr != nil && err == nil {
			err = fmt.Errorf("failed to commit table %s: %w", w.table, commitErr)
		}
		w.tx = nil
	}

	if w.db != nil {
		if closeErr := w.db.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		w.db = nil
	}

	return err
}
