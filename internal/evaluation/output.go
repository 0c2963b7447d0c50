package evaluation

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"
)

const (
	SummaryFile = "summary.yaml"
	ResultsFile = "results.parquet"
)

// RunConfig describes how a run was made
type RunConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model,omitempty"`
	DatasetPath string `yaml:"dataset_path"`
	PerLabel    int    `yaml:"per_label,omitempty"`
	Concurrency int    `yaml:"concurrency"`
	Timestamp   string `yaml:"timestamp"`
}

// Report is the content of summary.yaml
type Report struct {
	Config  RunConfig `yaml:"config"`
	Summary Summary   `yaml:"summary"`
}

// Save writes summary.yaml and results.parquet into dir
func Save(dir string, report Report, results []Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SummaryFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}

	if err := writeResults(filepath.Join(dir, ResultsFile), results); err != nil {
		return err
	}

	slog.Info("Evaluation results saved", "dir", dir, "results", len(results))
	return nil
}

func writeResults(path string, results []Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[Result](file)
	if _, err := writer.Write(results); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close results writer: %w", err)
	}
	return nil
}

// LoadReport reads summary.yaml from dir
func LoadReport(dir string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read summary file: %w", err)
	}

	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse summary file: %w", err)
	}
	return &report, nil
}

// LoadResults reads per-image results from a parquet file, or from
// results.parquet when path is a run directory
func LoadResults(path string) ([]Result, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ResultsFile)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat results file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Result](pf)
	defer reader.Close()

	results := make([]Result, 0, pf.NumRows())
	rows := make([]Result, 128)
	for {
		n, err := reader.Read(rows)
		results = append(results, rows[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read results: %w", err)
		}
	}
	return results, nil
}
