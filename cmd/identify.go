package cmd

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/plantcare/internal/carelevel"
	"github.com/lehigh-university-libraries/plantcare/internal/catalog"
	"github.com/lehigh-university-libraries/plantcare/internal/config"
	"github.com/lehigh-university-libraries/plantcare/internal/identification"
	"github.com/lehigh-university-libraries/plantcare/internal/providers"
)

func newIdentifyCmd() *cobra.Command {
	var (
		catalogPath string
		provider    string
		model       string
		topK        int
		output      string
	)

	cmd := &cobra.Command{
		Use:   "identify <image>",
		Short: "Identify a plant photo and print its care instructions",
		Example: `  # Identify with the configured classifier
  plantcare identify ./leaf.jpg

  # Try Gemini and print JSON
  plantcare identify ./leaf.jpg --provider gemini --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if catalogPath != "" {
				cfg.CatalogPath = catalogPath
			}
			if provider != "" {
				cfg.Provider = strings.ToLower(provider)
			}
			if model != "" {
				cfg.ClassifierModel = model
			}
			if topK > 0 {
				cfg.TopK = topK
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			cat, err := catalog.Open(cmd.Context(), cfg.CatalogPath)
			if err != nil {
				return fmt.Errorf("failed to load care catalog: %w", err)
			}
			gateway, err := identification.NewFromConfig(cfg, cat)
			if err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			ident, err := gateway.Identify(cmd.Context(), providers.Image{
				Data:     data,
				MIMEType: mime.TypeByExtension(filepath.Ext(path)),
				Filename: filepath.Base(path),
			})
			var notFound *identification.NotFoundError
			if err != nil && !errors.As(err, &notFound) {
				return fmt.Errorf("%s: %w", identification.UserMessage(err), err)
			}

			if output != "text" {
				result := map[string]any{"identification": ident}
				if notFound == nil {
					result["care_levels"] = carelevel.ForRecord(ident.Top.Record())
				}
				return writeOutput(cmd.OutOrStdout(), output, result)
			}

			w := cmd.OutOrStdout()
			top := ident.Predictions[0]
			fmt.Fprintf(w, "Identified as %s with %.1f%% confidence\n", top.Name, top.Confidence*100)
			if ident.Mock {
				fmt.Fprintln(w, "(demo predictions: the classifier was unavailable)")
			}
			fmt.Fprintln(w)

			if notFound != nil {
				fmt.Fprintln(w, identification.UserMessage(notFound))
			} else {
				printRecord(w, ident.Top.Record())
				printLevels(w, carelevel.ForRecord(ident.Top.Record()))
			}

			if len(ident.Predictions) > 1 {
				fmt.Fprintln(w, "\nOther possible matches:")
				for i, p := range ident.Predictions[1:] {
					fmt.Fprintf(w, "  %d. %s (%.1f%%)\n", i+2, p.Name, p.Confidence*100)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Care catalog JSON file or URL (default from PLANTCARE_CATALOG)")
	cmd.Flags().StringVar(&provider, "provider", "", "Classifier provider: hosted, gemini, ollama, openai or demo")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Number of predictions to request (default from CLASSIFIER_TOP_K)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")

	return cmd
}
