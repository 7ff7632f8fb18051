package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/TFMV/datagen/pkg/model"
	"github.com/TFMV/datagen/pkg/table"
	"github.com/spf13/cobra"
)

// bindFlags makes the named flags override configuration keys.
func bindFlags(a *app, cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		_ = a.v.BindPFlag(key, cmd.Flags().Lookup(name))
	}
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printRows renders a header and rows as aligned columns.
func printRows(w io.Writer, header []string, rows [][]string) {
	tw := newTabWriter(w)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

func printPreview(w io.Writer, tbl *table.Table) {
	rows := make([][]string, tbl.NumRows())
	for i := range rows {
		values := tbl.Row(i)
		rows[i] = make([]string, len(values))
		for j, v := range values {
			rows[i][j] = formatValue(tbl.Columns[j].Type, v)
		}
	}
	printRows(w, tbl.Names(), rows)
}

func formatValue(t model.SemanticType, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if t == model.TypeDate {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	case float64:
		return fmt.Sprintf("%.2f", x)
	default:
		return fmt.Sprint(x)
	}
}
