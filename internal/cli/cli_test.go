package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/brandonestevez/walter/internal/config"
)

// resetFlags restores every command flag to its default so tests do not
// leak state into each other, and points the config paths at throwaway
// locations.
func resetFlags(t *testing.T) {
	t.Helper()

	jsonOutput = false
	verbose = false
	catalogPath = defaultCatalogPath()
	appConfig = &config.Config{}
	logger = zap.NewNop()

	describeOutput, describeFormat = "", "markdown"
	describeStats, describeNoStats, describeAI = true, false, false
	tagCount, tagOutput = 5, ""
	writeTitle, writeFormat, writeOutput, writeAI = "", "markdown", "", false
	learnTags, learnList, learnForget = false, false, ""
	syncTo, syncMessage, syncRemote, syncSpace, syncNoPush = "github", "", "origin", "", false
	serveAddr = ":7327"

	rootCmd.PersistentFlags().Lookup("catalog").Changed = false
	rootCmd.PersistentFlags().Lookup("json").Changed = false
	describeCmd.Flags().Lookup("format").Changed = false

	dir := t.TempDir()
	oldConfig, oldGitBook := configPath, gitbookConfigPath
	configPath = filepath.Join(dir, "config.toml")
	gitbookConfigPath = filepath.Join(dir, "gitbook.yml")
	t.Cleanup(func() {
		configPath = oldConfig
		gitbookConfigPath = oldGitBook
	})
}

// captureStdoutAndStderr runs fn while capturing both stdout and stderr.
func captureStdoutAndStderr(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()

	oldOut := os.Stdout
	oldErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	fn()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldOut
	os.Stderr = oldErr

	var bufOut, bufErr bytes.Buffer
	io.Copy(&bufOut, rOut)
	io.Copy(&bufErr, rErr)
	return bufOut.String(), bufErr.String()
}

const marketsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-122.43, 37.76]}, "properties": {"name": "Ferry Plaza", "category": "farmers"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-122.41, 37.77]}, "properties": {"name": "Mission Community", "category": "farmers"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [-122.39, 37.79]}, "properties": {"name": "Crocker Galleria", "category": "artisan"}}
  ]
}`

// writeMarkets writes the three-feature fixture dataset and returns its path.
func writeMarkets(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "markets.geojson")
	if err := os.WriteFile(path, []byte(marketsGeoJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// deadURL returns a URL nothing is listening on, so model calls fail fast.
func deadURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()
	return url
}

// useDeadModel points the configured model at a closed port so generation
// always takes the fallback path.
func useDeadModel(t *testing.T) {
	t.Helper()
	cfg := &config.Config{LLMBaseURL: deadURL(t)}
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("write config: %v", err)
	}
}
