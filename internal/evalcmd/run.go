package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/plantcare/internal/catalog"
	"github.com/lehigh-university-libraries/plantcare/internal/config"
	"github.com/lehigh-university-libraries/plantcare/internal/evaluation"
	"github.com/lehigh-university-libraries/plantcare/internal/identification"
)

type runOptions struct {
	dataset     string
	catalog     string
	provider    string
	model       string
	perLabel    int
	concurrency int
	output      string
	fallback    bool
}

func executeRun(ctx context.Context, w io.Writer, opts runOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.catalog != "" {
		cfg.CatalogPath = opts.catalog
	}
	if opts.provider != "" {
		cfg.Provider = strings.ToLower(opts.provider)
	}
	if opts.model != "" {
		cfg.ClassifierModel = opts.model
	}
	cfg.DemoFallback = opts.fallback
	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.Info("Starting evaluation run", "dataset", opts.dataset, "provider", cfg.Provider, "model", cfg.Model())

	cat, err := catalog.Open(ctx, cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load care catalog: %w", err)
	}
	gateway, err := identification.NewFromConfig(cfg, cat)
	if err != nil {
		return err
	}

	// Load dataset
	ds, err := evaluation.LoadDataset(opts.dataset, opts.perLabel)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	slog.Info("Dataset loaded", "labels", len(ds.Labels), "items", len(ds.Items))

	for _, label := range ds.Labels {
		if _, err := catalog.NewResolver(cat).Resolve(evaluation.LabelName(label)); err != nil {
			slog.Warn("Dataset label has no care record", "label", label)
		}
	}

	results := evaluation.NewEvaluator(gateway, catalog.NewResolver(cat)).Run(ctx, ds, evaluation.Options{
		Concurrency: opts.concurrency,
	})

	// Calculate summary statistics
	summary := evaluation.Summarize(results)

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	outputDir := opts.output
	if outputDir == "" {
		outputDir = filepath.Join("evals", fmt.Sprintf("%s-%s", cfg.Provider, timestamp))
	}

	report := evaluation.Report{
		Config: evaluation.RunConfig{
			Provider:    cfg.Provider,
			Model:       cfg.Model(),
			DatasetPath: opts.dataset,
			PerLabel:    opts.perLabel,
			Concurrency: opts.concurrency,
			Timestamp:   timestamp,
		},
		Summary: summary,
	}

	// Save results
	if err := evaluation.Save(outputDir, report, results); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	// Print summary
	summary.Print(w)

	fmt.Fprintf(w, "\nResults saved to: %s\n", outputDir)
	fmt.Fprintf(w, "\nInspect misses with:\n")
	fmt.Fprintf(w, "  plantcare eval inspect %s --misses\n", outputDir)

	return nil
}
