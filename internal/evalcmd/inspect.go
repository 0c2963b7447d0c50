package evalcmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/plantcare/internal/evaluation"
)

func executeInspect(w io.Writer, path string, limit int, missesOnly bool) error {
	results, err := evaluation.LoadResults(path)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	dir := path
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		dir = filepath.Dir(path)
	}
	if report, err := evaluation.LoadReport(dir); err == nil {
		fmt.Fprintf(w, "Provider: %s\n", report.Config.Provider)
		if report.Config.Model != "" {
			fmt.Fprintf(w, "Model:    %s\n", report.Config.Model)
		}
		fmt.Fprintf(w, "Dataset:  %s\n", report.Config.DatasetPath)
		fmt.Fprintf(w, "Run at:   %s\n", report.Config.Timestamp)
		report.Summary.Print(w)
	} else {
		slog.Debug("No summary next to results", "dir", dir, "err", err)
		evaluation.Summarize(results).Print(w)
	}

	fmt.Fprintf(w, "\nLoaded %d results from %s\n", len(results), path)
	fmt.Fprintln(w, strings.Repeat("=", 80))

	printed := 0
	for i, r := range results {
		if missesOnly && r.Top1 && r.Error == "" {
			continue
		}
		if limit > 0 && printed >= limit {
			fmt.Fprintf(w, "\n... (use --limit 0 to show all)\n")
			break
		}
		printed++

		fmt.Fprintf(w, "\n[%d] %s\n", i+1, r.Path)
		fmt.Fprintf(w, "  Expected:   %s\n", r.Expected)
		if r.Error != "" {
			fmt.Fprintf(w, "  Error:      %s\n", r.Error)
			continue
		}
		fmt.Fprintf(w, "  Predicted:  %s (%.1f%%)\n", r.Predicted, r.Confidence*100)
		if r.Resolved != "" && r.Resolved != r.Predicted {
			fmt.Fprintf(w, "  Resolved:   %s\n", r.Resolved)
		}
		switch {
		case r.Top1:
			fmt.Fprintln(w, "  Outcome:    top match")
		case r.TopK:
			fmt.Fprintf(w, "  Outcome:    ranked %d\n", r.Rank)
		default:
			fmt.Fprintln(w, "  Outcome:    not in predictions")
		}
		if r.Mock {
			fmt.Fprintln(w, "  (mock prediction)")
		}
	}

	return nil
}
