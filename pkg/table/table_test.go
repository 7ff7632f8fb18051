package table

import (
	"testing"
	"time"

	"github.com/TFMV/datagen/pkg/model"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Table {
	t.Helper()
	fields := []model.FieldSpec{
		{Name: "id", Type: model.TypeIdentifier},
		{Name: "age", Type: model.TypeInteger},
		{Name: "price", Type: model.TypeFloat},
		{Name: "active", Type: model.TypeBoolean},
		{Name: "joined", Type: model.TypeDate},
		{Name: "seen", Type: model.TypeDatetime},
		{Name: "legacy", Type: model.TypeUnsupported},
	}
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	tbl := New(fields, 3)
	tbl.Append(0, []any{"a", "b", "c"})
	tbl.Append(1, []any{int64(1), int64(2), int64(3)})
	tbl.Append(2, []any{1.5, 2.25, 3.0})
	tbl.Append(3, []any{true, false, true})
	tbl.Append(4, []any{day, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2)})
	tbl.Append(5, []any{day.Add(time.Second), day.Add(time.Minute), day.Add(time.Hour)})
	tbl.Append(6, []any{"", "", ""})
	return tbl
}

func TestTableAccessors(t *testing.T) {
	tbl := sample(t)
	assert.Equal(t, 3, tbl.NumRows())
	assert.Equal(t, []string{"id", "age", "price", "active", "joined", "seen", "legacy"}, tbl.Names())

	ages, ok := tbl.Column("age")
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, ages)

	_, ok = tbl.Column("missing")
	assert.False(t, ok)

	row := tbl.Row(1)
	assert.Equal(t, "b", row[0])
	assert.Equal(t, false, row[3])
}

func TestEmptyTable(t *testing.T) {
	tbl := New([]model.FieldSpec{{Name: "x", Type: model.TypeInteger}}, 0)
	assert.Equal(t, 0, tbl.NumRows())
	assert.Equal(t, 0, New(nil, 0).NumRows())
}

func TestHead(t *testing.T) {
	tbl := sample(t)
	head := tbl.Head(2)
	assert.Equal(t, 2, head.NumRows())
	assert.Equal(t, tbl.Names(), head.Names())

	ids, ok := head.Column("id")
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, ids)

	assert.Equal(t, 3, tbl.Head(10).NumRows())
}

func TestSchema(t *testing.T) {
	schema := sample(t).Schema()
	require.Equal(t, 7, schema.NumFields())
	want := []arrow.DataType{
		arrow.BinaryTypes.String,
		arrow.PrimitiveTypes.Int64,
		arrow.PrimitiveTypes.Float64,
		arrow.FixedWidthTypes.Boolean,
		arrow.FixedWidthTypes.Date32,
		arrow.FixedWidthTypes.Timestamp_us,
		arrow.BinaryTypes.String,
	}
	for i, dt := range want {
		assert.True(t, arrow.TypeEqual(dt, schema.Field(i).Type), "field %s", schema.Field(i).Name)
	}
}

func TestRecord(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec, err := sample(t).Record(mem, 1, 2)
	require.NoError(t, err)
	defer rec.Release()

	assert.Equal(t, int64(2), rec.NumRows())
	assert.Equal(t, "b", rec.Column(0).(*array.String).Value(0))
	assert.Equal(t, int64(3), rec.Column(1).(*array.Int64).Value(1))
	assert.Equal(t, 2.25, rec.Column(2).(*array.Float64).Value(0))
	assert.Equal(t, arrow.Date32FromTime(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)), rec.Column(4).(*array.Date32).Value(0))
}

func TestRecordOutOfRange(t *testing.T) {
	_, err := sample(t).Record(memory.NewGoAllocator(), 2, 5)
	assert.Error(t, err)
}

func TestRecordTypeMismatch(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	tbl := New([]model.FieldSpec{{Name: "n", Type: model.TypeInteger}}, 1)
	tbl.Append(0, []any{"not a number"})
	_, err := tbl.Record(mem, 0, 1)
	assert.ErrorContains(t, err, "column 'n'")
}

func TestRecordsChunks(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	var sizes []int64
	err := sample(t).Records(mem, 2, func(rec arrow.Record) error {
		sizes = append(sizes, rec.NumRows())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, sizes)
}

func TestRecordsEmptyTable(t *testing.T) {
	tbl := New([]model.FieldSpec{{Name: "x", Type: model.TypeEmail}}, 0)
	calls := 0
	err := tbl.Records(memory.NewGoAllocator(), 10, func(rec arrow.Record) error {
		calls++
		assert.Equal(t, int64(0), rec.NumRows())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
