//go:build integration

package integration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestConfigCatalogPath verifies that catalog_path in config.toml controls
// where the catalog is created.
func TestConfigCatalogPath(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	customDB := filepath.Join(e.home, "custom", "my-catalog.db")
	e.mustRun(nil, "config", "catalog_path", customDB)

	e.writeDataset("markets.geojson", marketsGeoJSON)
	e.mustRun(nil, "learn", "markets.geojson")

	if _, err := os.Stat(customDB); os.IsNotExist(err) {
		t.Fatalf("custom catalog at %s does not exist", customDB)
	}

	stdout, _ := e.mustRun(nil, "learn", "--list", "--json")
	if !strings.Contains(stdout, "markets") {
		t.Errorf("list from custom catalog missing markets:\n%s", stdout)
	}
}

// TestConfigCatalogFlagOverride verifies that --catalog overrides the config
// file's catalog_path.
func TestConfigCatalogFlagOverride(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	configDB := filepath.Join(e.home, "config-db", "catalog.db")
	e.mustRun(nil, "config", "catalog_path", configDB)
	e.writeDataset("markets.geojson", marketsGeoJSON)

	// Learn into the config catalog.
	e.mustRun(nil, "learn", "markets.geojson")

	// Learn into a different catalog via the flag.
	flagDB := filepath.Join(e.home, "flag-db", "catalog.db")
	e.mustRun(nil, "learn", "markets.geojson", "--catalog", flagDB)

	// Listing with the flag sees the flag catalog only.
	stdout, _ := e.mustRun(nil, "learn", "--list", "--json", "--catalog", flagDB)
	if !strings.Contains(stdout, "markets") {
		t.Errorf("flag catalog missing markets:\n%s", stdout)
	}
	if _, err := os.Stat(flagDB); err != nil {
		t.Fatalf("flag catalog was not created: %v", err)
	}
}

// TestConfigDefaultFormat verifies default_format changes describe's output
// without a -f flag, and that -f still wins over the config value.
func TestConfigDefaultFormat(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.mustRun(nil, "config", "default_format", "text")
	e.writeDataset("markets.geojson", marketsGeoJSON)

	// Without -f: the config format applies.
	stdout, _ := e.mustRun(nil, "describe", "markets.geojson")
	if !strings.Contains(stdout, "OVERVIEW") {
		t.Errorf("expected text rendering from config, got:\n%s", stdout)
	}

	// With -f markdown: the flag wins.
	stdout, _ = e.mustRun(nil, "describe", "markets.geojson", "-f", "markdown")
	if !strings.Contains(stdout, "### Overview") {
		t.Errorf("expected markdown rendering from the flag, got:\n%s", stdout)
	}
}

// TestConfigShowsSavedValues verifies config round-trips values through the
// config file.
func TestConfigShowsSavedValues(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	e.mustRun(nil, "config", "llm_model", "llama3")
	stdout, _ := e.mustRun(nil, "config", "llm_model")
	if strings.TrimSpace(stdout) != "llama3" {
		t.Errorf("config llm_model = %q, want llama3", strings.TrimSpace(stdout))
	}

	stdout, _ = e.mustRun(nil, "config")
	if !strings.Contains(stdout, "llama3") {
		t.Errorf("config listing missing saved value:\n%s", stdout)
	}
}
