package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLMProvider != "" || cfg.CatalogPath != "" || cfg.DefaultFormat != "" || cfg.GitBookSpace != "" {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "config.toml")
	cfg := &Config{
		LLMProvider:   "ollama",
		LLMModel:      "phi",
		CatalogPath:   "/custom/catalog.db",
		DefaultFormat: "markdown",
		GitBookSpace:  "space-42",
	}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.LLMProvider != cfg.LLMProvider {
		t.Errorf("llm_provider: got %q, want %q", loaded.LLMProvider, cfg.LLMProvider)
	}
	if loaded.LLMModel != cfg.LLMModel {
		t.Errorf("llm_model: got %q, want %q", loaded.LLMModel, cfg.LLMModel)
	}
	if loaded.CatalogPath != cfg.CatalogPath {
		t.Errorf("catalog_path: got %q, want %q", loaded.CatalogPath, cfg.CatalogPath)
	}
	if loaded.DefaultFormat != cfg.DefaultFormat {
		t.Errorf("default_format: got %q, want %q", loaded.DefaultFormat, cfg.DefaultFormat)
	}
	if loaded.GitBookSpace != cfg.GitBookSpace {
		t.Errorf("gitbook_space: got %q, want %q", loaded.GitBookSpace, cfg.GitBookSpace)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("llm_provider = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestGetSet(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"llm_provider ollama", "llm_provider", "ollama", "ollama"},
		{"llm_provider openai", "llm_provider", "openai", "openai"},
		{"llm_model", "llm_model", "phi", "phi"},
		{"llm_base_url", "llm_base_url", "http://gpu-box:11434", "http://gpu-box:11434"},
		{"catalog_path", "catalog_path", "/tmp/catalog.db", "/tmp/catalog.db"},
		{"default_format markdown", "default_format", "markdown", "markdown"},
		{"default_format text", "default_format", "text", "text"},
		{"gitbook_space", "gitbook_space", "space-42", "space-42"},
		{"gitbook_url", "gitbook_url", "https://api.gitbook.example", "https://api.gitbook.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("set: %v", err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetUnknownKey(t *testing.T) {
	cfg := &Config{}
	_, err := cfg.Get("nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestSetUnknownKey(t *testing.T) {
	cfg := &Config{}
	err := cfg.Set("nonexistent", "value")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestSetInvalidProvider(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Set("llm_provider", "bedrock"); err == nil {
		t.Fatal("expected error for invalid provider")
	}
}

func TestSetInvalidFormat(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Set("default_format", "xml"); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestValidKeys(t *testing.T) {
	keys := ValidKeys()
	if len(keys) != 7 {
		t.Fatalf("expected 7 keys, got %d", len(keys))
	}
	// Verify sorted order.
	for i := 1; i < len(keys); i++ {
		if keys[i] < keys[i-1] {
			t.Errorf("keys not sorted: %q before %q", keys[i-1], keys[i])
		}
	}
	for _, k := range keys {
		if !validKeys[k] {
			t.Errorf("ValidKeys lists %q but validKeys does not allow it", k)
		}
	}
}

func TestPath(t *testing.T) {
	p := Path()
	if p == "" {
		t.Fatal("Path() returned empty string")
	}
	if filepath.Base(p) != "config.toml" {
		t.Errorf("Path() = %q, want basename config.toml", p)
	}
	if !filepath.IsAbs(p) {
		// If UserHomeDir fails, we get a relative path with .walter.
		if filepath.Dir(filepath.Dir(p)) != "." {
			t.Errorf("fallback Path() = %q, unexpected structure", p)
		}
	}
}

func TestSaveToCreatesDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "c", "config.toml")
	cfg := &Config{CatalogPath: "/test/catalog.db"}
	if err := cfg.SaveTo(nested); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := LoadFrom(nested)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.CatalogPath != "/test/catalog.db" {
		t.Errorf("CatalogPath = %q, want /test/catalog.db", loaded.CatalogPath)
	}
}

func TestSetFormatEmptyResetsToDefault(t *testing.T) {
	cfg := &Config{DefaultFormat: "html"}
	if err := cfg.Set("default_format", ""); err != nil {
		t.Fatalf("Set empty format: %v", err)
	}
	got, _ := cfg.Get("default_format")
	if got != "" {
		t.Errorf("default_format = %q, want empty", got)
	}
}

func TestLoadFromReadError(t *testing.T) {
	// Try to read a directory as a file.
	dir := t.TempDir()
	_, err := LoadFrom(dir)
	if err == nil {
		t.Fatal("expected error when reading directory as file")
	}
}
