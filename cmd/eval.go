package cmd

import (
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/plantcare/internal/evalcmd"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Classifier evaluation tools",
		Long: `Evaluation tools for measuring how well the configured classifier
identifies plants that are in the care catalog.

Runs over a folder of labelled photos and stores per-image results as
parquet with a YAML summary.`,
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd())
	cmd.AddCommand(evalcmd.NewInspectCmd())

	return cmd
}
