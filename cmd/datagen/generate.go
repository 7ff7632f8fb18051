package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/TFMV/datagen/metrics"
	"github.com/TFMV/datagen/pkg/core"
	"github.com/TFMV/datagen/pkg/generator"
	"github.com/TFMV/datagen/pkg/model"
	"github.com/TFMV/datagen/pkg/writers"
	"github.com/TFMV/datagen/report"
	"github.com/TFMV/datagen/version"
	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// GenerateOptions represents the options for the generate command that are
// not carried by the configuration.
type GenerateOptions struct {
	Model      string
	ModelFile  string
	Rows       int
	Seed       int64
	Types      []string
	Fields     []string
	Preview    int
	ReportPath string
	NoExport   bool
}

func newGenerateCommand(a *app) *cobra.Command {
	options := &GenerateOptions{Rows: 1000}

	cmd := &cobra.Command{
		Use:   "generate [flags]",
		Short: "Generate a synthetic dataset and export it",
		Long: `The generate command produces rows for a catalog model (--model) or a YAML
model file (--model-file) and exports them.

Fields can be rendered as another of their available types with
--type field=type, and restricted with --fields. A --seed makes the output
identical across runs and worker counts.`,
		Example: `  datagen generate --model "Customer Data" --rows 10000 --format parquet --output customers
  datagen generate --model-file orders.yaml --rows 500 --seed 7 --preview 5 --no-export
  datagen generate --model "Product Data" --format sql --dialect postgres --dsn "$PG_DSN" --table products`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runGenerate(ctx, cmd, a, options)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&options.Model, "model", "m", "", "Catalog model to generate (see 'datagen models')")
	flags.StringVar(&options.ModelFile, "model-file", "", "YAML model definition to generate")
	flags.IntVarP(&options.Rows, "rows", "n", options.Rows, "Number of rows to generate")
	flags.Int64Var(&options.Seed, "seed", 0, "Seed for reproducible output")
	flags.StringArrayVar(&options.Types, "type", nil, "Render a field as another available type (field=type, repeatable)")
	flags.StringSliceVar(&options.Fields, "fields", nil, "Only generate these fields")
	flags.IntVar(&options.Preview, "preview", 0, "Print the first N rows")
	flags.StringVar(&options.ReportPath, "report", "", "Write a run report to this file (.html for a page, JSON otherwise)")
	flags.BoolVar(&options.NoExport, "no-export", false, "Skip exporting the result")

	flags.IntP("batch-size", "b", 0, "Rows generated per batch")
	flags.IntP("workers", "w", 0, "Maximum fields generated concurrently")
	flags.StringP("format", "f", "", "Export format ("+strings.Join(writers.Formats(), ", ")+")")
	flags.StringP("output", "o", "", "Output path; the format's extension is added when missing")
	flags.String("dialect", "", "SQL dialect (sqlite, postgres, mysql)")
	flags.String("dsn", "", "SQL connection string (sqlite defaults to the output path)")
	flags.String("table", "", "SQL table name (defaults to the output file name)")
	bindFlags(a, cmd, map[string]string{
		"generation.batch_size":  "batch-size",
		"generation.max_workers": "workers",
		"export.format":          "format",
		"export.output":          "output",
		"export.dialect":         "dialect",
		"export.dsn":             "dsn",
		"export.table":           "table",
	})

	cmd.MarkFlagsMutuallyExclusive("model", "model-file")
	cmd.MarkFlagsOneRequired("model", "model-file")

	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, a *app, options *GenerateOptions) error {
	m, err := resolveModel(a.catalog, options)
	if err != nil {
		return err
	}

	req := generator.Request{
		Model:      m,
		RowCount:   options.Rows,
		BatchSize:  a.cfg.Generation.BatchSize,
		Seed:       a.cfg.Generation.Seed,
		MaxWorkers: a.cfg.Generation.MaxWorkers,
	}
	if cmd.Flags().Changed("seed") {
		req.Seed = &options.Seed
	}

	runReport := metrics.NewRunReport(runMetadata(req))
	log := a.log.With(zap.String("model", m.Name))
	log.Info("Generating dataset",
		zap.Int("rows", req.RowCount),
		zap.Int("batch_size", req.BatchSize),
		zap.Int("max_workers", req.MaxWorkers),
	)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " generating " + m.Name
	s.Start()
	tbl, err := generator.GenerateData(ctx, req, func(fraction float64) {
		done := int64(fraction * float64(req.RowCount))
		s.Lock()
		s.Suffix = fmt.Sprintf(" %s / %s rows (%.0f%%)",
			humanize.Comma(done), humanize.Comma(int64(req.RowCount)), fraction*100)
		s.Unlock()
	})
	s.Stop()

	if err != nil {
		runReport.Finish(0, err)
		saveReport(a, options.ReportPath, runReport)
		log.Error("Generation failed", zap.Error(err))
		return err
	}

	out := cmd.OutOrStdout()
	if options.Preview > 0 {
		printPreview(out, tbl.Head(options.Preview))
	}

	if !options.NoExport {
		dest, err := writers.Export(ctx, tbl, exportConfig(a))
		if err != nil {
			runReport.Finish(tbl.NumRows(), err)
			saveReport(a, options.ReportPath, runReport)
			return err
		}
		runReport.Export = metrics.ExportMetadata{Format: a.cfg.Export.Format, Destination: dest}
	}

	runReport.Finish(tbl.NumRows(), nil)
	saveReport(a, options.ReportPath, runReport)

	fmt.Fprintf(out, "Generated %s rows, %d columns in %s (%s rows/s)\n",
		humanize.Comma(int64(tbl.NumRows())), len(tbl.Columns),
		runReport.Duration.Round(time.Millisecond), humanize.Commaf(float64(int64(runReport.RowsPerSecond))))
	if dest := runReport.Export.Destination; dest != "" {
		fmt.Fprintf(out, "Exported %s to %s%s\n", runReport.Export.Format, dest, fileSize(dest))
	}
	return nil
}

// resolveModel picks the model and applies --type and --fields.
func resolveModel(catalog *model.Catalog, options *GenerateOptions) (model.ModelSpec, error) {
	var (
		m   model.ModelSpec
		err error
	)
	if options.ModelFile != "" {
		m, err = model.LoadModelFile(options.ModelFile)
	} else {
		m, err = catalog.Get(options.Model)
	}
	if err != nil {
		return model.ModelSpec{}, err
	}

	overrides, err := parseTypeOverrides(options.Types)
	if err != nil {
		return model.ModelSpec{}, err
	}
	if len(overrides) > 0 {
		if m, err = m.WithFieldTypes(overrides); err != nil {
			return model.ModelSpec{}, err
		}
	}
	return m.Select(options.Fields)
}

// parseTypeOverrides parses field=type pairs.
func parseTypeOverrides(pairs []string) (map[string]model.SemanticType, error) {
	overrides := make(map[string]model.SemanticType, len(pairs))
	for _, pair := range pairs {
		name, typ, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --type %q, expected field=type", pair)
		}
		t, known := model.ParseSemanticType(typ)
		if !known {
			return nil, fmt.Errorf("invalid --type %q: unknown type %q", pair, typ)
		}
		overrides[strings.TrimSpace(name)] = t
	}
	return overrides, nil
}

func exportConfig(a *app) core.WriterConfig {
	e := a.cfg.Export
	return core.WriterConfig{
		Type:             e.Format,
		Path:             e.Output,
		Dialect:          e.Dialect,
		ConnectionString: e.DSN,
		Table:            e.Table,
		BatchSize:        int64(e.BatchSize),
	}
}

func runMetadata(req generator.Request) metrics.RunMetadata {
	fields := make([]metrics.FieldMetadata, len(req.Model.Fields))
	for i, f := range req.Model.Fields {
		fields[i] = metrics.FieldMetadata{Name: f.Name, Type: f.Type.String()}
	}
	return metrics.RunMetadata{
		Model:      req.Model.Name,
		Version:    version.GetVersion(),
		Rows:       req.RowCount,
		BatchSize:  req.BatchSize,
		Batches:    len(generator.Batches(req.RowCount, req.BatchSize)),
		MaxWorkers: req.MaxWorkers,
		Seed:       req.Seed,
		Fields:     fields,
	}
}

// saveReport writes the run report when a path was given. Failures are
// logged; the report never changes the command's outcome.
func saveReport(a *app, path string, run *metrics.RunReport) {
	if path == "" {
		return
	}
	if err := report.SaveReport(*run, path); err != nil {
		a.log.Warn("Failed to save run report", zap.String("path", path), zap.Error(err))
	}
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return ""
	}
	return " (" + humanize.Bytes(uint64(info.Size())) + ")"
}
