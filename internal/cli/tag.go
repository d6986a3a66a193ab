package cli

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandonestevez/walter/internal/gis"
	"github.com/brandonestevez/walter/internal/vector"
)

var (
	tagCount  int
	tagOutput string
)

var tagCmd = &cobra.Command{
	Use:   "tag <file>",
	Short: "Suggest tags for a dataset",
	Long: `Tag asks the configured language model for lowercase, hyphenated keywords
describing the dataset. When no model is reachable, a fixed fallback set
(gis, spatial-data, geospatial, vector-data, analysis) is returned instead.

Tags are printed one per line, or as a JSON array with --json.`,
	Example: `  walter tag parks.shp
  walter tag roads.geojson -n 8
  walter tag parks.shp -o tags.txt
  walter tag parks.shp --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := vector.Open(args[0])
		if err != nil {
			return err
		}
		sum := gis.Summarize(ds)

		mgr, err := modelManager()
		if err != nil {
			logger.Warn("language model unavailable", zap.Error(err))
			mgr = templateManager()
		}
		ctx := cmd.Context()
		description := mgr.Describe(ctx, sum)
		tags := mgr.SuggestTags(ctx, description, tagCount)
		if tagCount > 0 && len(tags) > tagCount {
			tags = tags[:tagCount]
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(tags)
		}
		return emit(strings.Join(tags, "\n")+"\n", tagOutput, "text")
	},
}

func init() {
	tagCmd.Flags().IntVarP(&tagCount, "count", "n", 5, "number of tags to suggest")
	tagCmd.Flags().StringVarP(&tagOutput, "output", "o", "", "write the tags to a file")
	rootCmd.AddCommand(tagCmd)
}
