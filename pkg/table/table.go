// Package table holds generated data as ordered columns and converts it to
// Apache Arrow records for the export sinks.
package table

import (
	"fmt"
	"time"

	"github.com/TFMV/datagen/pkg/model"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Column is one named sequence of generated values.
type Column struct {
	Name   string             `json:"name"`
	Type   model.SemanticType `json:"type"`
	Values []any              `json:"values"`
}

// Table is the column-oriented result of a generation run. Column order
// follows the model's field order and every column has the same length.
type Table struct {
	Columns []Column `json:"columns"`
	index   map[string]int
}

// New creates an empty table with one column per field, each with room for capacity values.
func New(fields []model.FieldSpec, capacity int) *Table {
	t := &Table{
		Columns: make([]Column, len(fields)),
		index:   make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		t.Columns[i] = Column{Name: f.Name, Type: f.Type, Values: make([]any, 0, capacity)}
		t.index[f.Name] = i
	}
	return t
}

// Append adds values to the end of the i-th column.
func (t *Table) Append(i int, values []any) {
	t.Columns[i].Values = append(t.Columns[i].Values, values...)
}

// Column returns the values of the named column.
func (t *Table) Column(name string) ([]any, bool) {
	if i, ok := t.index[name]; ok {
		return t.Columns[i].Values, true
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// NumRows returns the number of rows. Columns are uniform, so the first one decides.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Row returns the values of row i across all columns.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// Head returns a table holding at most the first n rows. Values are shared, not copied.
func (t *Table) Head(n int) *Table {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	out := &Table{Columns: make([]Column, len(t.Columns)), index: t.index}
	for i, c := range t.Columns {
		out.Columns[i] = Column{Name: c.Name, Type: c.Type, Values: c.Values[:n]}
	}
	return out
}

// ArrowType maps a semantic type to the Arrow type used to store it.
func ArrowType(t model.SemanticType) arrow.DataType {
	switch t {
	case model.TypeInteger:
		return arrow.PrimitiveTypes.Int64
	case model.TypeFloat:
		return arrow.PrimitiveTypes.Float64
	case model.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean
	case model.TypeDate:
		return arrow.FixedWidthTypes.Date32
	case model.TypeDatetime:
		return arrow.FixedWidthTypes.Timestamp_us
	default:
		return arrow.BinaryTypes.String
	}
}

// Schema returns the Arrow schema of the table.
func (t *Table) Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns))
	for i, c := range t.Columns {
		fields[i] = arrow.Field{Name: c.Name, Type: ArrowType(c.Type), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// Record builds an Arrow record from rows [offset, offset+length).
// The caller must release the record.
func (t *Table) Record(mem memory.Allocator, offset, length int) (arrow.Record, error) {
	if offset < 0 || length < 0 || offset+length > t.NumRows() {
		return nil, fmt.Errorf("row range [%d, %d) out of bounds for %d rows", offset, offset+length, t.NumRows())
	}

	builder := array.NewRecordBuilder(mem, t.Schema())
	defer builder.Release()

	for i, c := range t.Columns {
		fb := builder.Field(i)
		fb.Reserve(length)
		for _, v := range c.Values[offset : offset+length] {
			if err := appendValue(fb, v); err != nil {
				return nil, fmt.Errorf("column '%s': %w", c.Name, err)
			}
		}
	}

	return builder.NewRecord(), nil
}

// Records splits the table into records of at most chunk rows and passes
// each to fn. Records are released after fn returns.
func (t *Table) Records(mem memory.Allocator, chunk int, fn func(arrow.Record) error) error {
	if chunk <= 0 {
		chunk = t.NumRows()
	}
	total := t.NumRows()
	if total == 0 {
		rec, err := t.Record(mem, 0, 0)
		if err != nil {
			return err
		}
		defer rec.Release()
		return fn(rec)
	}
	for offset := 0; offset < total; offset += chunk {
		n := chunk
		if offset+n > total {
			n = total - offset
		}
		rec, err := t.Record(mem, offset, n)
		if err != nil {
			return err
		}
		err = fn(rec)
		rec.Release()
		if err != nil {
			return err
		}
	}
	return nil
}

func appendValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch fb := b.(type) {
	case *array.StringBuilder:
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		fb.Append(s)
	case *array.Int64Builder:
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("expected int64, got %T", v)
		}
		fb.Append(n)
	case *array.Float64Builder:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("expected float64, got %T", v)
		}
		fb.Append(f)
	case *array.BooleanBuilder:
		bv, ok := v.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
		fb.Append(bv)
	case *array.Date32Builder:
		tv, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", v)
		}
		fb.Append(arrow.Date32FromTime(tv))
	case *array.TimestampBuilder:
		tv, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("expected time.Time, got %T", v)
		}
		fb.Append(arrow.Timestamp(tv.UnixMicro()))
	default:
		return fmt.Errorf("unsupported builder %T", b)
	}
	return nil
}
