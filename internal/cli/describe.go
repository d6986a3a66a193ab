package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/brandonestevez/walter/internal/gis"
	"github.com/brandonestevez/walter/internal/model"
	"github.com/brandonestevez/walter/internal/report"
	"github.com/brandonestevez/walter/internal/vector"
)

var (
	describeOutput  string
	describeFormat  string
	describeStats   bool
	describeNoStats bool
	describeAI      bool
)

// describeResult is the JSON structure for the describe command output.
type describeResult struct {
	Summary     *model.Summary `json:"summary"`
	Description string         `json:"description"`
}

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Describe a vector dataset in plain language",
	Long: `Describe loads a vector dataset, summarizes its contents (feature count,
geometry types, attributes, coordinate system, statistics), and renders a
short description from fixed template sentences.

The statistics sentence (total area and bounding box extent) is included by
default when the dataset has geometry; disable it with --no-stats. With --ai
the overview sentence is written by the configured language model instead,
falling back to the template when generation fails.`,
	Example: `  walter describe parks.shp
  walter describe roads.geojson -f text --no-stats
  walter describe sites.gpkg --ai
  walter describe parks.shp -o parks.md
  walter describe parks.shp --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := describeFormat
		if !cmd.Flags().Changed("format") && appConfig.DefaultFormat != "" {
			format = appConfig.DefaultFormat
		}
		switch format {
		case "markdown", "html", "text":
		default:
			return fmt.Errorf("unknown format %q (markdown, html, text)", format)
		}

		ds, err := vector.Open(args[0])
		if err != nil {
			return err
		}
		sum := gis.Summarize(ds)

		includeStats := describeStats && !describeNoStats
		components := report.Components(sum, includeStats)
		if describeAI {
			mgr, err := modelManager()
			if err != nil {
				return err
			}
			components[0].Body = mgr.Describe(cmd.Context(), sum)
		}
		out := report.Render(components, format)

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(describeResult{Summary: sum, Description: out})
		}
		return emit(out, describeOutput, format)
	},
}

func init() {
	describeCmd.Flags().StringVarP(&describeOutput, "output", "o", "", "write the description to a file")
	describeCmd.Flags().StringVarP(&describeFormat, "format", "f", "markdown", "output format: markdown, html, or text")
	describeCmd.Flags().BoolVar(&describeStats, "stats", true, "include the statistics sentence")
	describeCmd.Flags().BoolVar(&describeNoStats, "no-stats", false, "omit the statistics sentence")
	describeCmd.Flags().BoolVar(&describeAI, "ai", false, "write the overview with the configured language model")
	rootCmd.AddCommand(describeCmd)
}
