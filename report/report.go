// Package report renders run reports for people: an HTML page or indented
// JSON, picked from the destination file's extension.
package report

import (
	"bytes"
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/TFMV/datagen/metrics"
	"github.com/dustin/go-humanize"
)

// -----------------------------
// Report Generator Interfaces
// -----------------------------

// ReportGenerator renders a run report.
type ReportGenerator interface {
	GenerateRunReport(run metrics.RunReport) ([]byte, error)
	SaveReportToFile(run metrics.RunReport, filePath string) error
}

// ForPath returns the HTML generator for .html and .htm paths and the JSON
// generator otherwise.
func ForPath(filePath string) ReportGenerator {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".html", ".htm":
		return &HTMLReportGenerator{}
	default:
		return &JSONReportGenerator{}
	}
}

// SaveReport writes run to filePath in the format its extension selects.
func SaveReport(run metrics.RunReport, filePath string) error {
	return ForPath(filePath).SaveReportToFile(run, filePath)
}

// -----------------------------
// JSON Report Generator
// -----------------------------

// JSONReportGenerator generates JSON reports readable by metrics.LoadReport.
type JSONReportGenerator struct{}

func (j *JSONReportGenerator) GenerateRunReport(run metrics.RunReport) ([]byte, error) {
	return json.MarshalIndent(run, "", "  ")
}

func (j *JSONReportGenerator) SaveReportToFile(run metrics.RunReport, filePath string) error {
	return (&metrics.JSONMetricsStore{FilePath: filePath}).Save(run)
}

// -----------------------------
// HTML Report Generator
// -----------------------------

// HTMLReportGenerator generates a standalone HTML page.
type HTMLReportGenerator struct{}

var funcs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"rate":  func(f float64) string { return humanize.Commaf(float64(int64(f))) },
	"stamp": func(run metrics.RunReport) string { return run.EndTime.UTC().Format("2006-01-02 15:04:05 MST") },
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Generation Report: {{.Run.Model}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        table { border-collapse: collapse; margin-top: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f4f4f4; }
        .status-pass { color: green; }
        .status-fail { color: red; }
    </style>
</head>
<body>
    <h1>Generation Report: {{.Run.Model}}</h1>
    <p><strong>Status:</strong> {{if .Status.Succeeded}}<span class="status-pass">SUCCESS</span>{{else}}<span class="status-fail">FAILED</span>{{end}}</p>
    {{with .Status.Message}}<p><strong>Error:</strong> {{.}}</p>{{end}}

    <h2>Run</h2>
    <table>
        <tr><th>Rows requested</th><td>{{comma .Run.Rows}}</td></tr>
        <tr><th>Rows generated</th><td>{{comma .RowsGenerated}}</td></tr>
        <tr><th>Batch size</th><td>{{comma .Run.BatchSize}}</td></tr>
        <tr><th>Batches</th><td>{{.Run.Batches}}</td></tr>
        <tr><th>Max workers</th><td>{{.Run.MaxWorkers}}</td></tr>
        <tr><th>Seed</th><td>{{with .Run.Seed}}{{.}}{{else}}random{{end}}</td></tr>
        <tr><th>Duration</th><td>{{.Duration}}</td></tr>
        <tr><th>Throughput</th><td>{{rate .RowsPerSecond}} rows/s</td></tr>
        {{with .Export.Destination}}<tr><th>Exported to</th><td>{{.}}</td></tr>{{end}}
    </table>

    <h2>Fields</h2>
    <table>
        <tr><th>Name</th><th>Type</th></tr>
        {{range .Run.Fields}}<tr><td>{{.Name}}</td><td>{{.Type}}</td></tr>
        {{end}}
    </table>

    <footer>
        <p>Generated on {{stamp .}} by datagen {{.Run.Version}}</p>
    </footer>
</body>
</html>
`

var pageTemplate = template.Must(template.New("report").Funcs(funcs).Parse(htmlTemplate))

func (h *HTMLReportGenerator) GenerateRunReport(run metrics.RunReport) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, run); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *HTMLReportGenerator) SaveReportToFile(run metrics.RunReport, filePath string) error {
	data, err := h.GenerateRunReport(run)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
