// Package sink implements the Result/Log Sink (spec.md §6): persisting a
// run's step-outcome records and HTTP request/response log as timestamped
// JSON files under output_dir, grounded on the original implementation's
// save_results/setup_logging and the teacher's internal/io JSONWriter.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"catoseq/internal/logging"
	"catoseq/internal/orchestrator"
	"catoseq/internal/transport"
)

const timestampLayout = "20060102_150405"

// Sink persists a run's outputs under a single output directory.
type Sink struct {
	OutputDir string
}

// New builds a Sink rooted at outputDir, creating it if necessary.
func New(outputDir string) (*Sink, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory '%s': %w", outputDir, err)
	}
	return &Sink{OutputDir: outputDir}, nil
}

// Timestamp formats now the way the original implementation names its
// output files (results_<ts>.json etc).
func Timestamp(now time.Time) string {
	return now.Format(timestampLayout)
}

// OpenExecutionLog creates execution_<ts>.log under the sink's output
// directory and redirects internal/logging output to it, returning the
// open file so the caller can close it when the run completes.
func (s *Sink) OpenExecutionLog(ts string) (*os.File, error) {
	path := filepath.Join(s.OutputDir, fmt.Sprintf("execution_%s.log", ts))
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution log '%s': %w", path, err)
	}
	logging.SetOutput(file)
	return file, nil
}

// WriteResults persists the step-outcome records as results_<ts>.json
// (spec.md §4.7.1) and returns the written path.
func (s *Sink) WriteResults(results []orchestrator.Result, ts string) (string, error) {
	path := filepath.Join(s.OutputDir, fmt.Sprintf("results_%s.json", ts))
	if results == nil {
		results = []orchestrator.Result{}
	}
	if err := writeJSON(path, results); err != nil {
		return "", err
	}
	return path, nil
}

// httpLogDocument is the {generated_at, total_requests, logs} shape from
// spec.md §6.
type httpLogDocument struct {
	GeneratedAt    string                `json:"generated_at"`
	TotalRequests  int                   `json:"total_requests"`
	Logs           []transport.LogRecord `json:"logs"`
}

// WriteHTTPLog persists the transport adapter's request/response log as
// http_requests_<ts>.json and returns the written path. Callers should
// skip this when execution.enable_http_logging is false.
func (s *Sink) WriteHTTPLog(logs []transport.LogRecord, generatedAt time.Time, ts string) (string, error) {
	path := filepath.Join(s.OutputDir, fmt.Sprintf("http_requests_%s.json", ts))
	if logs == nil {
		logs = []transport.LogRecord{}
	}
	doc := httpLogDocument{
		GeneratedAt:   generatedAt.Format(time.RFC3339),
		TotalRequests: len(logs),
		Logs:          logs,
	}
	if err := writeJSON(path, doc); err != nil {
		return "", err
	}
	return path, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode '%s': %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}
