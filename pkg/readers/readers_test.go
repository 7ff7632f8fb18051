package readers

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/TFMV/datagen/pkg/core"
	"github.com/TFMV/datagen/pkg/model"
	"github.com/TFMV/datagen/pkg/table"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArrowFile(t *testing.T, rows int, chunk int) string {
	t.Helper()
	fields := []model.FieldSpec{
		{Name: "id", Type: model.TypeInteger},
		{Name: "label", Type: model.TypeString},
	}
	tbl := table.New(fields, rows)
	for i := 0; i < rows; i++ {
		tbl.Append(0, []any{int64(i)})
		tbl.Append(1, []any{"row"})
	}

	path := filepath.Join(t.TempDir(), "data.arrow")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(tbl.Schema()))
	require.NoError(t, err)
	require.NoError(t, tbl.Records(memory.DefaultAllocator, chunk, w.Write))
	require.NoError(t, w.Close())
	return path
}

func TestTypeFromPath(t *testing.T) {
	assert.Equal(t, "parquet", TypeFromPath("a/b.parquet"))
	assert.Equal(t, "arrow", TypeFromPath("b.ARROW"))
	assert.Equal(t, "arrow", TypeFromPath("b.feather"))
	assert.Equal(t, "csv", TypeFromPath("b.csv"))
	assert.Equal(t, "", TypeFromPath("b.xlsx"))
}

func TestFactoryUnsupported(t *testing.T) {
	_, err := DefaultFactory.Create(core.ReaderConfig{Path: "book.xlsx"})
	assert.Error(t, err)
}

func TestArrowReaderBatches(t *testing.T) {
	path := writeArrowFile(t, 10, 4)

	r, err := DefaultFactory.Create(core.ReaderConfig{Path: path})
	require.NoError(t, err)
	defer r.Close()

	var sizes []int64
	for {
		rec, err := r.Read(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, rec.NumRows())
		rec.Release()
	}
	assert.Equal(t, []int64{4, 4, 2}, sizes)
	assert.Equal(t, "id", r.Schema().Field(0).Name)
}

func TestCSVReaderSchemaBeforeRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name\n1,Jane\n2,John\n"), 0o644))

	r, err := NewCSVReader(core.ReaderConfig{Path: path})
	require.NoError(t, err)
	defer r.Close()

	schema := r.Schema()
	require.Equal(t, 2, schema.NumFields())
	assert.Equal(t, "name", schema.Field(1).Name)

	rec, err := r.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.NumRows())
	rec.Release()

	_, err = r.Read(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestInspect(t *testing.T) {
	path := writeArrowFile(t, 7, 3)

	summary, err := Inspect(context.Background(), core.ReaderConfig{Path: path}, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), summary.NumRows)
	assert.Equal(t, [][]string{{"0", "row"}, {"1", "row"}}, summary.Preview)
}

func TestReaderCancelled(t *testing.T) {
	path := writeArrowFile(t, 3, 3)
	r, err := NewArrowReader(core.ReaderConfig{Path: path})
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMissingPath(t *testing.T) {
	for _, create := range []Creator{NewParquetReader, NewArrowReader, NewCSVReader} {
		_, err := create(core.ReaderConfig{})
		assert.Error(t, err)
		_, err = create(core.ReaderConfig{Path: filepath.Join(t.TempDir(), "missing")})
		assert.Error(t, err)
	}
}
