// Package cli defines the cobra command tree for the walter CLI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/brandonestevez/walter/internal/catalog"
	"github.com/brandonestevez/walter/internal/config"
	"github.com/brandonestevez/walter/internal/llm"
)

var (
	catalogPath string
	jsonOutput  bool
	verbose     bool

	// appConfig is loaded once in PersistentPreRunE and read by commands
	// that need settings beyond their flags.
	appConfig = &config.Config{}

	// logger is a nop unless --verbose is set.
	logger = zap.NewNop()
)

func defaultCatalogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "catalog.db"
	}
	return filepath.Join(home, ".walter", "catalog.db")
}

// rootCmd is the top-level walter command.
var rootCmd = &cobra.Command{
	Use:   "walter",
	Short: "Walter - describe and document GIS datasets",
	Long: `walter reads vector GIS datasets (shapefile, GeoJSON, GeoPackage, CSV)
and produces plain-language descriptions, tags, and documentation.

Descriptions are built from fixed template sentences. Pass --ai to have a
configured language model (ollama or openai) write the prose instead; the
template remains the fallback whenever the model fails. Learned datasets
are kept in a SQLite catalog at ~/.walter/catalog.db (configurable via
--catalog or walter config catalog_path). All output commands support
--json for machine-readable output.`,
	Example: `  # Describe a dataset
  walter describe parks.shp
  walter describe roads.geojson -f text --no-stats

  # Generate tags and full documentation
  walter tag parks.shp -n 8
  walter write parks.shp -f gitbook -o docs/parks.md

  # Remember datasets and publish docs
  walter learn parks.shp --tags
  walter learn --list
  walter sync docs/ --to gitbook`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			zcfg := zap.NewProductionConfig()
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			l, err := zcfg.Build()
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			logger = l
		}

		cfg, err := config.LoadFrom(configPath)
		if err != nil {
			logger.Warn("config not loaded", zap.String("path", configPath), zap.Error(err))
			return nil
		}
		appConfig = cfg
		if cfg.CatalogPath != "" && !cmd.Flags().Changed("catalog") {
			catalogPath = cfg.CatalogPath
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", defaultCatalogPath(), "path to the catalog database")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

// openCatalog opens the catalog database at the configured path.
func openCatalog() (*catalog.SQLiteStore, error) {
	s, err := catalog.New(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return s, nil
}

// templateManager returns a manager with no model: every generation call
// produces the deterministic template output.
func templateManager() *llm.Manager {
	return llm.NewManager(nil, 0, logger)
}

// modelManager builds the configured language model. Callers that reached
// for the model explicitly should surface the error; best-effort callers
// degrade to templateManager.
func modelManager() (*llm.Manager, error) {
	m, err := llm.New(llm.Config{
		Provider: appConfig.LLMProvider,
		Model:    appConfig.LLMModel,
		BaseURL:  appConfig.LLMBaseURL,
		APIKey:   os.Getenv("OPENAI_API_KEY"),
	})
	if err != nil {
		return nil, err
	}
	return llm.NewManager(m, 0, logger), nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
