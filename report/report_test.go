package report

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TFMV/datagen/metrics"
)

func createTestReport(err error) metrics.RunReport {
	seed := int64(42)
	run := metrics.NewRunReport(metrics.RunMetadata{
		Model:      "Customer Data",
		Version:    "test",
		Rows:       2500,
		BatchSize:  1000,
		Batches:    3,
		MaxWorkers: 4,
		Seed:       &seed,
		Fields: []metrics.FieldMetadata{
			{Name: "customer_id", Type: "uuid"},
			{Name: "age", Type: "integer"},
		},
	})
	run.Export = metrics.ExportMetadata{Format: "csv", Destination: "customers.csv"}
	rows := 2500
	if err != nil {
		rows = 0
	}
	run.Finish(rows, err)
	return *run
}

func TestForPath(t *testing.T) {
	if _, ok := ForPath("out/report.HTML").(*HTMLReportGenerator); !ok {
		t.Error("Expected HTML generator for .HTML")
	}
	if _, ok := ForPath("report.json").(*JSONReportGenerator); !ok {
		t.Error("Expected JSON generator for .json")
	}
	if _, ok := ForPath("report").(*JSONReportGenerator); !ok {
		t.Error("Expected JSON generator without extension")
	}
}

func TestJSONReportGenerator_GenerateRunReport(t *testing.T) {
	data, err := (&JSONReportGenerator{}).GenerateRunReport(createTestReport(nil))
	if err != nil {
		t.Fatalf("Failed to generate report: %v", err)
	}

	var decoded metrics.RunReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Generated invalid JSON: %v", err)
	}
	if decoded.Run.Model != "Customer Data" {
		t.Errorf("Expected model 'Customer Data', got %s", decoded.Run.Model)
	}
	if decoded.RowsGenerated != 2500 {
		t.Errorf("Expected 2500 rows, got %d", decoded.RowsGenerated)
	}
}

func TestSaveReportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")
	if err := SaveReport(createTestReport(nil), path); err != nil {
		t.Fatalf("Failed to save report: %v", err)
	}

	loaded, err := metrics.LoadReport(path)
	if err != nil {
		t.Fatalf("Failed to load report: %v", err)
	}
	if !loaded.Status.Succeeded {
		t.Error("Expected a successful status")
	}
	if loaded.Run.Seed == nil || *loaded.Run.Seed != 42 {
		t.Errorf("Expected seed 42, got %v", loaded.Run.Seed)
	}
}

func TestHTMLReportGenerator_GenerateRunReport(t *testing.T) {
	data, err := (&HTMLReportGenerator{}).GenerateRunReport(createTestReport(nil))
	if err != nil {
		t.Fatalf("Failed to generate report: %v", err)
	}

	html := string(data)
	for _, want := range []string{
		"Generation Report: Customer Data",
		"SUCCESS",
		"2,500",
		"customer_id",
		"customers.csv",
		"<td>42</td>",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected HTML to contain %q", want)
		}
	}
}

func TestHTMLReportShowsFailure(t *testing.T) {
	data, err := (&HTMLReportGenerator{}).GenerateRunReport(createTestReport(errors.New("field 'age': bad <bounds>")))
	if err != nil {
		t.Fatalf("Failed to generate report: %v", err)
	}

	html := string(data)
	if !strings.Contains(html, "FAILED") {
		t.Error("Expected FAILED status")
	}
	if !strings.Contains(html, "bad &lt;bounds&gt;") {
		t.Error("Expected the error message to be escaped")
	}
}

func TestHTMLReportWithoutSeed(t *testing.T) {
	run := createTestReport(nil)
	run.Run.Seed = nil
	data, err := (&HTMLReportGenerator{}).GenerateRunReport(run)
	if err != nil {
		t.Fatalf("Failed to generate report: %v", err)
	}
	if !strings.Contains(string(data), "<td>random</td>") {
		t.Error("Expected unseeded runs to be marked random")
	}
}
