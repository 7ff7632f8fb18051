// Package metrics records what a generation run produced and persists the
// report as JSON.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// -----------------------------
// Domain Types & Metadata
// -----------------------------

// FieldMetadata describes one generated column.
type FieldMetadata struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// RunMetadata captures the parameters of a generation run.
type RunMetadata struct {
	Model      string          `json:"model"`
	Version    string          `json:"version"`
	Rows       int             `json:"rows"`
	BatchSize  int             `json:"batch_size"`
	Batches    int             `json:"batches"`
	MaxWorkers int             `json:"max_workers"`
	Seed       *int64          `json:"seed,omitempty"`
	Fields     []FieldMetadata `json:"fields"`
}

// ExportMetadata describes where the result went.
type ExportMetadata struct {
	Format      string `json:"format"`
	Destination string `json:"destination"`
}

// RunStatus holds the outcome of a run.
type RunStatus struct {
	Succeeded bool      `json:"succeeded"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// RunReport aggregates everything known about one run.
type RunReport struct {
	Run           RunMetadata    `json:"run"`
	Export        ExportMetadata `json:"export"`
	StartTime     time.Time      `json:"start_time"`
	EndTime       time.Time      `json:"end_time"`
	Duration      time.Duration  `json:"duration"`
	RowsGenerated int            `json:"rows_generated"`
	RowsPerSecond float64        `json:"rows_per_second"`
	Status        RunStatus      `json:"status"`
}

// NewRunReport starts a report for run at the current time.
func NewRunReport(run RunMetadata) *RunReport {
	return &RunReport{Run: run, StartTime: time.Now()}
}

// Finish stamps the end time, throughput and outcome.
func (r *RunReport) Finish(rowsGenerated int, err error) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.RowsGenerated = rowsGenerated
	if secs := r.Duration.Seconds(); secs > 0 {
		r.RowsPerSecond = float64(rowsGenerated) / secs
	}
	r.Status = RunStatus{Succeeded: err == nil, Timestamp: r.EndTime}
	if err != nil {
		r.Status.Message = err.Error()
	}
}

// -----------------------------
// Metrics Storage
// -----------------------------

// MetricsStore abstracts run report storage.
type MetricsStore interface {
	Save(run RunReport) error
	SaveWithContext(ctx context.Context, run RunReport) error
}

// JSONMetricsStore stores reports as indented JSON, in FilePath when set
// and on Out (stdout by default) otherwise.
type JSONMetricsStore struct {
	FilePath string
	Out      io.Writer
}

func (j *JSONMetricsStore) Save(run RunReport) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	if j.FilePath != "" {
		return os.WriteFile(j.FilePath, data, 0644)
	}
	out := j.Out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func (j *JSONMetricsStore) SaveWithContext(ctx context.Context, run RunReport) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return j.Save(run)
	}
}

// LoadReport reads a report written by JSONMetricsStore.
func LoadReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var run RunReport
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return &run, nil
}
