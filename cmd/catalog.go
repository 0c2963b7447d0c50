package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/plantcare/internal/carelevel"
	"github.com/lehigh-university-libraries/plantcare/internal/catalog"
	"github.com/lehigh-university-libraries/plantcare/internal/models"
)

type catalogOptions struct {
	source string
	output string
}

func (o *catalogOptions) open(cmd *cobra.Command) (*catalog.Catalog, error) {
	source := o.source
	if source == "" {
		source = os.Getenv("PLANTCARE_CATALOG")
	}
	if source == "" {
		source = "plant_care_data.json"
	}
	cat, err := catalog.Open(cmd.Context(), source)
	if err != nil {
		return nil, fmt.Errorf("failed to load care catalog: %w", err)
	}
	return cat, nil
}

func newCatalogCmd() *cobra.Command {
	opts := &catalogOptions{}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the plant care catalog",
		Long: `Look up plants in the care catalog.

Names are resolved the same way classifier labels are, so synonyms such as
"sansevieria" find the Snake Plant entry.`,
	}

	cmd.PersistentFlags().StringVar(&opts.source, "catalog", "", "Care catalog JSON file or URL (default from PLANTCARE_CATALOG)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format: text, json or yaml")

	cmd.AddCommand(newCatalogListCmd(opts))
	cmd.AddCommand(newCatalogShowCmd(opts))
	cmd.AddCommand(newCatalogSearchCmd(opts))
	cmd.AddCommand(newCatalogLevelsCmd(opts))

	return cmd
}

func newCatalogListCmd(opts *catalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every plant in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if opts.output != "text" {
				return writeOutput(cmd.OutOrStdout(), opts.output, cat.Names())
			}
			for _, name := range cat.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newCatalogShowCmd(opts *catalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "show <name>",
		Short:   "Show care instructions for a plant",
		Example: `  plantcare catalog show "snake plant"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.open(cmd)
			if err != nil {
				return err
			}
			name := strings.Join(args, " ")
			rec, err := catalog.NewResolver(cat).Resolve(name)
			if err != nil {
				return fmt.Errorf("%q: %w", name, err)
			}

			levels := carelevel.ForRecord(rec)
			if opts.output != "text" {
				return writeOutput(cmd.OutOrStdout(), opts.output, map[string]any{
					"plant":       rec,
					"care_levels": levels,
				})
			}
			printRecord(cmd.OutOrStdout(), rec)
			printLevels(cmd.OutOrStdout(), levels)
			return nil
		},
	}
}

func newCatalogSearchCmd(opts *catalogOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search plant names and care text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.open(cmd)
			if err != nil {
				return err
			}
			results := cat.Search(strings.Join(args, " "))
			if opts.output != "text" {
				if results == nil {
					results = []models.CareRecord{}
				}
				return writeOutput(cmd.OutOrStdout(), opts.output, results)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d matches\n", len(results))
			for _, rec := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", rec.Name)
			}
			return nil
		},
	}
}

func newCatalogLevelsCmd(opts *catalogOptions) *cobra.Command {
	var dimension string

	cmd := &cobra.Command{
		Use:   "levels [name]",
		Short: "Show care difficulty levels",
		Long: `Show the 1-5 care difficulty levels estimated from catalog text.

With a name, prints every dimension for that plant. Without one, prints
the overall level (or the --dimension level) for every plant.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.open(cmd)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				name := strings.Join(args, " ")
				rec, err := catalog.NewResolver(cat).Resolve(name)
				if err != nil {
					return fmt.Errorf("%q: %w", name, err)
				}
				levels := carelevel.ForRecord(rec)
				if opts.output != "text" {
					return writeOutput(cmd.OutOrStdout(), opts.output, levels)
				}
				fmt.Fprintln(cmd.OutOrStdout(), rec.Name)
				printLevels(cmd.OutOrStdout(), levels)
				return nil
			}

			var dim carelevel.Dimension
			if dimension != "" {
				if dim, err = carelevel.ParseDimension(dimension); err != nil {
					return err
				}
			}

			all := make(map[string]int, cat.Len())
			for _, rec := range cat.Records() {
				levels := carelevel.ForRecord(rec)
				if dim == "" {
					all[rec.Name] = levels.Overall
				} else {
					all[rec.Name] = carelevel.Estimate(carelevel.Text(rec.Care, dim), dim)
				}
			}
			if opts.output != "text" {
				return writeOutput(cmd.OutOrStdout(), opts.output, all)
			}
			for _, name := range cat.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-40s %d  %s\n", name, all[name], carelevel.Label(all[name]))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dimension, "dimension", "", "Dimension to list: light, water, soil, humidity, fertilizer or maintenance")

	return cmd
}

func printRecord(w io.Writer, rec models.CareRecord) {
	fmt.Fprintln(w, rec.Name)
	fmt.Fprintln(w, strings.Repeat("=", len(rec.Name)))
	fields := []struct {
		label string
		text  string
	}{
		{"Light", rec.Care.LightRequirements},
		{"Watering", rec.Care.WateringNeeds},
		{"Soil", rec.Care.SoilPreferences},
		{"Temperature & Humidity", rec.Care.TemperatureHumidity},
		{"Fertilization", rec.Care.Fertilization},
		{"Pruning & Maintenance", rec.Care.PruningMaintenance},
	}
	for _, f := range fields {
		// absent fields are skipped, never shown as placeholders
		if f.text == "" {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n  %s\n", f.label, f.text)
	}
	if rec.URL != "" {
		fmt.Fprintf(w, "\nMore: %s\n", rec.URL)
	}
}

func printLevels(w io.Writer, levels carelevel.Levels) {
	fmt.Fprintln(w, "\nCare levels:")
	values := levels.Array()
	for i, dim := range carelevel.Dimensions {
		if values[i] == carelevel.NotAssessed {
			continue
		}
		fmt.Fprintf(w, "  %-12s %d  %s\n", dim, values[i], carelevel.Label(values[i]))
	}
	fmt.Fprintf(w, "  %-12s %d  %s\n", "overall", levels.Overall, carelevel.Label(levels.Overall))
}
