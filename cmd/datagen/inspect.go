package main

import (
	"fmt"

	"github.com/TFMV/datagen/pkg/core"
	"github.com/TFMV/datagen/pkg/readers"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newInspectCommand(a *app) *cobra.Command {
	var (
		rows       int
		readerType string
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the schema, row count and first rows of an exported file",
		Long: `Inspect reads a Parquet, Arrow IPC or CSV file written by 'datagen generate'.
The format is taken from the file extension unless --type is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := readers.Inspect(cmd.Context(), core.ReaderConfig{
				Type:      readerType,
				Path:      args[0],
				BatchSize: int64(a.cfg.Export.BatchSize),
			}, rows)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s rows, %d columns\n\n",
				args[0], humanize.Comma(summary.NumRows), summary.Schema.NumFields())

			fields := make([][]string, summary.Schema.NumFields())
			header := make([]string, summary.Schema.NumFields())
			for i, f := range summary.Schema.Fields() {
				fields[i] = []string{f.Name, f.Type.String()}
				header[i] = f.Name
			}
			printRows(out, []string{"COLUMN", "TYPE"}, fields)

			if len(summary.Preview) > 0 {
				fmt.Fprintln(out)
				printRows(out, header, summary.Preview)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 5, "Number of rows to show")
	cmd.Flags().StringVarP(&readerType, "type", "t", "", "File type (parquet, arrow, csv)")
	return cmd
}
