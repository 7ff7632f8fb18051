package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TFMV/datagen/pkg/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newModelsCommand(a *app) *cobra.Command {
	var (
		details bool
		schema  bool
	)

	cmd := &cobra.Command{
		Use:   "models [search]",
		Short: "List the available data models",
		Long: `List catalog models whose name, description or category contains the search
term (case-insensitive). Models from configured model_files are included.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			found := a.catalog.Search(term)
			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintf(out, "No models match %q\n", term)
				return nil
			}

			if schema {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				defer enc.Close()
				for _, m := range found {
					if err := enc.Encode(m); err != nil {
						return fmt.Errorf("failed to encode model %s: %w", m.Name, err)
					}
				}
				return nil
			}

			rows := make([][]string, len(found))
			for i, m := range found {
				rows[i] = []string{m.Name, m.Category, strconv.Itoa(len(m.Fields)), m.Description}
			}
			printRows(out, []string{"NAME", "CATEGORY", "FIELDS", "DESCRIPTION"}, rows)

			if details {
				for _, m := range found {
					fmt.Fprintf(out, "\n%s\n", m.Name)
					printRows(out, []string{"FIELD", "TYPE", "AVAILABLE", "DESCRIPTION"}, fieldRows(m))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&details, "details", "d", false, "Show the fields of each model")
	cmd.Flags().BoolVar(&schema, "schema", false, "Print the models as YAML model files")
	return cmd
}

func fieldRows(m model.ModelSpec) [][]string {
	rows := make([][]string, len(m.Fields))
	for i, f := range m.Fields {
		available := make([]string, len(f.AvailableTypes))
		for j, t := range f.AvailableTypes {
			available[j] = t.String()
		}
		rows[i] = []string{f.Name, f.Type.String(), strings.Join(available, ","), f.Description}
	}
	return rows
}
