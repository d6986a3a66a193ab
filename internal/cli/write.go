package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/brandonestevez/walter/internal/gis"
	"github.com/brandonestevez/walter/internal/report"
	"github.com/brandonestevez/walter/internal/vector"
)

var (
	writeTitle  string
	writeFormat string
	writeOutput string
	writeAI     bool
)

// writeResult is the JSON structure for the write command output.
type writeResult struct {
	Title    string `json:"title"`
	Format   string `json:"format"`
	Document string `json:"document"`
}

var writeCmd = &cobra.Command{
	Use:   "write <file>",
	Short: "Write full documentation for a dataset",
	Long: `Write produces a complete documentation page for a dataset: title, lead
summary, description sections, a sample preview, and a provenance footer.

The gitbook format is markdown with a YAML front matter block (title, tags,
generation time), ready for walter sync --to gitbook. With --ai the lead
summary is written by the configured language model, falling back to the
template when generation fails.`,
	Example: `  walter write parks.shp
  walter write parks.shp -t "City Parks" -o docs/parks.md
  walter write roads.geojson -f gitbook -o docs/roads.md
  walter write sites.gpkg -f html --ai`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := vector.Open(args[0])
		if err != nil {
			return err
		}
		sum := gis.Summarize(ds)

		mgr := templateManager()
		if writeAI {
			if mgr, err = modelManager(); err != nil {
				return err
			}
		}
		ctx := cmd.Context()
		summaryText := mgr.Describe(ctx, sum)

		title := writeTitle
		if title == "" {
			title = titleFromPath(args[0])
		}

		var tags []string
		if writeFormat == "gitbook" {
			tags = mgr.SuggestTags(ctx, summaryText, 0)
		}

		doc, err := report.Document(sum, report.DocumentOptions{
			Title:       title,
			Format:      writeFormat,
			Summary:     summaryText,
			Tags:        tags,
			GeneratedAt: time.Now(),
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(writeResult{Title: title, Format: writeFormat, Document: doc})
		}
		return emit(doc, writeOutput, writeFormat)
	},
}

func init() {
	writeCmd.Flags().StringVarP(&writeTitle, "title", "t", "", "document title (default: file name, title-cased)")
	writeCmd.Flags().StringVarP(&writeFormat, "format", "f", "markdown", "output format: markdown, html, or gitbook")
	writeCmd.Flags().StringVarP(&writeOutput, "output", "o", "", "write the document to a file")
	writeCmd.Flags().BoolVar(&writeAI, "ai", false, "write the summary with the configured language model")
	rootCmd.AddCommand(writeCmd)
}

// titleFromPath derives a document title from a file name:
// "bike-lanes.geojson" becomes "Bike Lanes".
func titleFromPath(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.ReplaceAll(stem, "-", " ")
	stem = strings.ReplaceAll(stem, "_", " ")
	words := strings.Fields(stem)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
