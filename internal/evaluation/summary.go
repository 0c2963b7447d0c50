package evaluation

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// ClassSummary holds accuracy for one expected label
type ClassSummary struct {
	Total  int     `yaml:"total"`
	Top1   int     `yaml:"top1"`
	TopK   int     `yaml:"topk"`
	Recall float64 `yaml:"recall"`
}

// Summary aggregates a run
type Summary struct {
	Total          int                     `yaml:"total"`
	Succeeded      int                     `yaml:"succeeded"`
	Failed         int                     `yaml:"failed"`
	Mocked         int                     `yaml:"mocked"`
	Top1Accuracy   float64                 `yaml:"top1_accuracy"`
	TopKAccuracy   float64                 `yaml:"topk_accuracy"`
	CareCoverage   float64                 `yaml:"care_coverage"`
	MeanConfidence float64                 `yaml:"mean_confidence"`
	MeanDurationMS float64                 `yaml:"mean_duration_ms"`
	PerClass       map[string]ClassSummary `yaml:"per_class"`
}

// Summarize computes accuracy over successful results. Failed results
// count toward Total and Failed only.
func Summarize(results []Result) Summary {
	s := Summary{
		Total:    len(results),
		PerClass: make(map[string]ClassSummary),
	}

	var top1, topK, care int
	var confidence, duration float64
	for _, r := range results {
		if r.Error != "" {
			s.Failed++
			continue
		}
		s.Succeeded++
		if r.Mock {
			s.Mocked++
		}

		class := s.PerClass[r.Expected]
		class.Total++
		if r.Top1 {
			top1++
			class.Top1++
		}
		if r.TopK {
			topK++
			class.TopK++
		}
		s.PerClass[r.Expected] = class

		if r.CareAvailable {
			care++
		}
		confidence += r.Confidence
		duration += float64(r.DurationMS)
	}

	if s.Succeeded > 0 {
		n := float64(s.Succeeded)
		s.Top1Accuracy = float64(top1) / n
		s.TopKAccuracy = float64(topK) / n
		s.CareCoverage = float64(care) / n
		s.MeanConfidence = confidence / n
		s.MeanDurationMS = duration / n
	}
	for label, class := range s.PerClass {
		class.Recall = float64(class.Top1) / float64(class.Total)
		s.PerClass[label] = class
	}
	return s
}

// Print writes a human-readable summary
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintln(w, "Evaluation Summary")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Total Images:       %d\n", s.Total)
	fmt.Fprintf(w, "Successful:         %d\n", s.Succeeded)
	fmt.Fprintf(w, "Failed:             %d\n", s.Failed)
	if s.Mocked > 0 {
		fmt.Fprintf(w, "Mock Predictions:   %d\n", s.Mocked)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Top-1 Accuracy:     %.2f%%\n", s.Top1Accuracy*100)
	fmt.Fprintf(w, "Top-K Accuracy:     %.2f%%\n", s.TopKAccuracy*100)
	fmt.Fprintf(w, "Care Coverage:      %.2f%%\n", s.CareCoverage*100)
	fmt.Fprintf(w, "Mean Confidence:    %.3f\n", s.MeanConfidence)
	fmt.Fprintf(w, "Mean Duration:      %.0fms\n", s.MeanDurationMS)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Per-Class Top-1 Recall:")

	// Sort labels for consistent output
	labels := make([]string, 0, len(s.PerClass))
	for label := range s.PerClass {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	width := 0
	for _, label := range labels {
		width = max(width, len(label))
	}
	for _, label := range labels {
		c := s.PerClass[label]
		fmt.Fprintf(w, "  %s%s  %.2f%% (%d/%d)\n", label, strings.Repeat(" ", width-len(label)), c.Recall*100, c.Top1, c.Total)
	}
	fmt.Fprintln(w, "========================================")
}
