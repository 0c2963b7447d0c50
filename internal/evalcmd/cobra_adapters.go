package evalcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command for scoring a classifier on an image folder
func NewRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate the classifier on a labelled image folder",
		Long: `Classify every image in a dataset directory laid out as one folder per
label (for example dataset/snake_plant/001.jpg) and measure how often the
expected plant is the top match or anywhere in the ranked predictions.

Writes summary.yaml and results.parquet to the output directory.`,
		Example: `  # Evaluate 5 images per plant with the demo classifier
  plantcare eval run --dataset ./test_images --per-label 5 --provider demo

  # Evaluate everything with Gemini
  plantcare eval run --dataset ./test_images --provider gemini --concurrency 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.dataset); os.IsNotExist(err) {
				return fmt.Errorf("dataset directory not found: %s", opts.dataset)
			}
			return executeRun(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.dataset, "dataset", "", "Dataset directory with one sub-directory per label (required)")
	cmd.Flags().StringVar(&opts.catalog, "catalog", "", "Care catalog JSON file or URL (default from PLANTCARE_CATALOG)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Classifier provider: hosted, gemini, ollama, openai or demo")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().IntVar(&opts.perLabel, "per-label", 0, "Images per label to evaluate (0 for all)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "Number of parallel classifier calls")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output directory (default evals/<provider>-<timestamp>)")
	cmd.Flags().BoolVar(&opts.fallback, "fallback", false, "Allow demo predictions when the classifier fails (off so failures are counted)")

	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var limit int
	var failures bool

	cmd := &cobra.Command{
		Use:   "inspect <results>",
		Short: "Inspect per-image results from an evaluation run",
		Long: `Print the per-image results from a run directory or a results.parquet
file, along with the saved summary when it is present.`,
		Example: `  # Show wrong and failed predictions
  plantcare eval inspect evals/gemini-2024-05-01_10-00-00 --misses

  # Show everything
  plantcare eval inspect evals/gemini-2024-05-01_10-00-00/results.parquet --limit 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeInspect(cmd.OutOrStdout(), args[0], limit, failures)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of results to print (0 for all)")
	cmd.Flags().BoolVar(&failures, "misses", false, "Only print results where the expected plant was not the top match")

	return cmd
}
