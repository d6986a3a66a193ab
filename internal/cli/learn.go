package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandonestevez/walter/internal/catalog"
	"github.com/brandonestevez/walter/internal/gis"
	"github.com/brandonestevez/walter/internal/model"
	"github.com/brandonestevez/walter/internal/vector"
)

var (
	learnTags   bool
	learnList   bool
	learnForget string
)

// forgetResult is the JSON structure for learn --forget output.
type forgetResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

var learnCmd = &cobra.Command{
	Use:   "learn [file]",
	Short: "Remember a dataset in the local catalog",
	Long: `Learn analyzes a dataset and stores its summary (name, format, feature
count, geometry types, CRS, description, optional tags) in the SQLite
catalog. Learning the same path again replaces the earlier entry.

Use --list to show everything walter has learned, and --forget to drop an
entry by id or path.`,
	Example: `  walter learn parks.shp
  walter learn roads.geojson --tags
  walter learn --list
  walter learn --forget 4f1c2a9b-8a60-4d11-9f5e-1be1fa1c5a40
  walter learn --forget data/parks.shp`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCatalog()
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		switch {
		case learnList:
			return listLearned(ctx, s)
		case learnForget != "":
			return forgetLearned(ctx, s, learnForget)
		case len(args) == 0:
			return fmt.Errorf("provide a dataset file, or use --list / --forget")
		default:
			return learnDataset(ctx, s, args[0])
		}
	},
}

func init() {
	learnCmd.Flags().BoolVar(&learnTags, "tags", false, "also generate and store tags")
	learnCmd.Flags().BoolVar(&learnList, "list", false, "list learned datasets")
	learnCmd.Flags().StringVar(&learnForget, "forget", "", "forget an entry by id or path")
	rootCmd.AddCommand(learnCmd)
}

func learnDataset(ctx context.Context, s catalog.Store, path string) error {
	ds, err := vector.Open(path)
	if err != nil {
		return err
	}
	sum := gis.Summarize(ds)

	mgr, err := modelManager()
	if err != nil {
		logger.Warn("language model unavailable", zap.Error(err))
		mgr = templateManager()
	}
	description := mgr.Describe(ctx, sum)
	var tags []string
	if learnTags {
		tags = mgr.SuggestTags(ctx, description, 0)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	entry := model.CatalogEntry{
		Path:          abs,
		Name:          strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Format:        sum.Format,
		FeatureCount:  sum.FeatureCount,
		GeometryTypes: sum.GeometryTypes,
		CRS:           sum.CRS,
		Tags:          tags,
		Description:   description,
	}
	if err := s.Save(ctx, entry); err != nil {
		return fmt.Errorf("save catalog entry: %w", err)
	}

	stored, err := s.Get(ctx, abs)
	if err != nil {
		return fmt.Errorf("read back catalog entry: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stored)
	}
	fmt.Fprintf(os.Stderr, "Learned %s (%s)\n",
		stored.Name, english.Plural(stored.FeatureCount, "feature", ""))
	return nil
}

func listLearned(ctx context.Context, s catalog.Store) error {
	entries, err := s.List(ctx, catalog.ListOpts{})
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}

	if jsonOutput {
		if entries == nil {
			entries = []model.CatalogEntry{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No datasets learned yet.")
		return nil
	}

	tbl := NewTable(os.Stdout, "ID", "NAME", "FORMAT", "FEATURES", "TAGS", "LEARNED")
	for _, e := range entries {
		tbl.Row(
			shortID(e.ID),
			e.Name,
			e.Format,
			strconv.Itoa(e.FeatureCount),
			truncate(strings.Join(e.Tags, ","), 30),
			humanize.Time(e.LearnedAt),
		)
	}
	return tbl.Flush()
}

func forgetLearned(ctx context.Context, s catalog.Store, idOrPath string) error {
	ok, err := s.Delete(ctx, idOrPath)
	if err == nil && !ok {
		// Entries store absolute paths; retry a relative path as one.
		if abs, aerr := filepath.Abs(idOrPath); aerr == nil && abs != idOrPath {
			ok, err = s.Delete(ctx, abs)
		}
	}
	if err != nil {
		return fmt.Errorf("delete catalog entry: %w", err)
	}
	if !ok {
		return fmt.Errorf("no catalog entry for %q", idOrPath)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(forgetResult{ID: idOrPath, Deleted: true})
	}
	fmt.Fprintf(os.Stderr, "Forgot %s\n", idOrPath)
	return nil
}

// shortID abbreviates a catalog entry id for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
