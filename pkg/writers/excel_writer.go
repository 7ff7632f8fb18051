package writers

import (
	"context"
	"errors"
	"fmt"

	"github.com/TFMV/datagen/pkg/core"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/xuri/excelize/v2"
)

// ExcelSheet is the worksheet generated data is written to.
const ExcelSheet = "Sheet1"

// maxExcelRows is the worksheet row limit, header included.
const maxExcelRows = 1048576

// ExcelWriter implements a writer for .xlsx workbooks. The workbook is
// kept in memory and saved on Close.
type ExcelWriter struct {
	path string
	file *excelize.File
	row  int
}

// NewExcelWriter creates a new Excel writer.
func NewExcelWriter(config core.WriterConfig) (core.DatasetWriter, error) {
	if config.Path == "" {
		return nil, errors.New("path is required for Excel writer")
	}
	return &ExcelWriter{path: config.Path, file: excelize.NewFile()}, nil
}

// Write writes a record to the worksheet.
func (w *ExcelWriter) Write(ctx context.Context, record arrow.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if w.row == 0 {
		header := make([]any, record.NumCols())
		for j, field := range record.Schema().Fields() {
			header[j] = field.Name
		}
		if err := w.setRow(header); err != nil {
			return err
		}
	}

	if w.row+int(record.NumRows()) > maxExcelRows {
		return fmt.Errorf("excel sheets hold at most %d rows, got %d", maxExcelRows-1, w.row-1+int(record.NumRows()))
	}

	values := make([]any, record.NumCols())
	for i := 0; i < int(record.NumRows()); i++ {
		for j, col := range record.Columns() {
			values[j] = excelValue(col, i)
		}
		if err := w.setRow(values); err != nil {
			return err
		}
	}
	return nil
}

func (w *ExcelWriter) setRow(values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, w.row+1)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(ExcelSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", w.row+1, err)
	}
	w.row++
	return nil
}

// excelValue keeps numbers and booleans native so cells stay typed.
func excelValue(col arrow.Array, i int) any {
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
	default:
		return col.ValueStr(i)
	}
}

// Close saves the workbook.
func (w *ExcelWriter) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.SaveAs(w.path)
	if closeErr := w.file.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	w.file = nil
	if err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}
