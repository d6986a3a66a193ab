package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-git/go-git/v5"

	"github.com/brandonestevez/walter/internal/config"
	"github.com/brandonestevez/walter/internal/gitbook"
)

func initGitRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := git.PlainInit(dir, false); err != nil {
		t.Fatalf("init repo: %v", err)
	}
	return dir
}

func TestSyncCmdGitHubCommit(t *testing.T) {
	resetFlags(t)
	dir := initGitRepo(t)
	docs := filepath.Join(dir, "docs")
	if err := os.MkdirAll(docs, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docs, "markets.md"), []byte("# Markets\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"sync", docs, "--to", "github", "--no-push", "-m", "Add market docs"})
		if err := rootCmd.Execute(); err != nil {
			t.Errorf("execute: %v", err)
		}
	})

	if !strings.Contains(stderr, "Committed ") {
		t.Errorf("expected commit confirmation, got: %s", stderr)
	}

	repo, err := git.PlainOpen(dir)
	if err != nil {
		t.Fatal(err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		t.Fatal(err)
	}
	if commit.Message != "Add market docs" {
		t.Errorf("commit message = %q", commit.Message)
	}
}

func TestSyncCmdGitHubClean(t *testing.T) {
	resetFlags(t)
	dir := initGitRepo(t)
	doc := filepath.Join(dir, "markets.md")
	if err := os.WriteFile(doc, []byte("# Markets\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	run := func() string {
		_, stderr := captureStdoutAndStderr(t, func() {
			rootCmd.SetArgs([]string{"sync", doc, "--to", "github", "--no-push"})
			if err := rootCmd.Execute(); err != nil {
				t.Errorf("execute: %v", err)
			}
		})
		return stderr
	}

	run()
	stderr := run()
	if !strings.Contains(stderr, "Nothing to commit") {
		t.Errorf("expected clean message on second run, got: %s", stderr)
	}
}

func TestSyncCmdGitHubJSON(t *testing.T) {
	resetFlags(t)
	dir := initGitRepo(t)
	doc := filepath.Join(dir, "markets.md")
	if err := os.WriteFile(doc, []byte("# Markets\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _ := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"sync", doc, "--to", "github", "--no-push", "--json"})
		if err := rootCmd.Execute(); err != nil {
			t.Errorf("execute: %v", err)
		}
	})

	var result struct {
		Commit string `json:"commit"`
		Clean  bool   `json:"clean"`
		Pushed bool   `json:"pushed"`
	}
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("unmarshal JSON output: %v\noutput: %s", err, stdout)
	}
	if result.Commit == "" || result.Clean || result.Pushed {
		t.Errorf("result = %+v", result)
	}
}

func TestSyncCmdOutsideRepo(t *testing.T) {
	resetFlags(t)
	doc := filepath.Join(t.TempDir(), "markets.md")
	if err := os.WriteFile(doc, []byte("# Markets\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"sync", doc, "--to", "github", "--no-push"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error outside a git repository")
	}
}

// fakeGitBook serves the two content endpoints the publisher uses and
// counts the pages created.
func fakeGitBook(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var created atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/spaces/{space}/content", func(w http.ResponseWriter, r *http.Request) {
		n := created.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id": "page-%d"}`, n)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &created
}

func TestSyncCmdGitBookDirectory(t *testing.T) {
	resetFlags(t)
	t.Setenv("GITBOOK_TOKEN", "test-token")
	srv, created := fakeGitBook(t)

	cfg := &config.Config{GitBookURL: srv.URL + "/v1"}
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatal(err)
	}

	docs := t.TempDir()
	for _, name := range []string{"bike-lanes.md", "parks.md"} {
		if err := os.WriteFile(filepath.Join(docs, name), []byte("# Doc\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	_, stderr := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"sync", docs, "--to", "gitbook", "--space", "space-1"})
		if err := rootCmd.Execute(); err != nil {
			t.Errorf("execute: %v", err)
		}
	})

	if created.Load() != 2 {
		t.Errorf("created %d pages, want 2", created.Load())
	}
	if !strings.Contains(stderr, "Published Bike Lanes") {
		t.Errorf("expected publish confirmation, got: %s", stderr)
	}
	if !strings.Contains(stderr, "Synced 2 pages to space space-1") {
		t.Errorf("expected summary line, got: %s", stderr)
	}

	summary, err := os.ReadFile(filepath.Join(docs, "SUMMARY.md"))
	if err != nil {
		t.Fatalf("SUMMARY.md not written: %v", err)
	}
	if !strings.Contains(string(summary), "* [Parks](parks.md)") {
		t.Errorf("SUMMARY.md = %s", summary)
	}
}

func TestSyncCmdGitBookSingleFile(t *testing.T) {
	resetFlags(t)
	t.Setenv("GITBOOK_TOKEN", "test-token")
	srv, created := fakeGitBook(t)

	// Space and base URL from the publisher config file this time.
	yml := fmt.Sprintf("default_space: space-9\nbase_url: %s/v1\n", srv.URL)
	if err := os.WriteFile(gitbookConfigPath, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := filepath.Join(t.TempDir(), "flood-zones.md")
	if err := os.WriteFile(doc, []byte("# Flood Zones\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _ := captureStdoutAndStderr(t, func() {
		rootCmd.SetArgs([]string{"sync", doc, "--to", "gitbook", "--json"})
		if err := rootCmd.Execute(); err != nil {
			t.Errorf("execute: %v", err)
		}
	})

	if created.Load() != 1 {
		t.Errorf("created %d pages, want 1", created.Load())
	}
	var pages []gitbook.PublishedPage
	if err := json.Unmarshal([]byte(stdout), &pages); err != nil {
		t.Fatalf("unmarshal JSON output: %v\noutput: %s", err, stdout)
	}
	if len(pages) != 1 || pages[0].Title != "Flood Zones" || pages[0].ID != "page-1" {
		t.Errorf("pages = %+v", pages)
	}
}

func TestSyncCmdGitBookNoSpace(t *testing.T) {
	resetFlags(t)
	t.Setenv("GITBOOK_TOKEN", "test-token")

	doc := filepath.Join(t.TempDir(), "markets.md")
	if err := os.WriteFile(doc, []byte("# Markets\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"sync", doc, "--to", "gitbook"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error without a space")
	}
	if !strings.Contains(err.Error(), "space") {
		t.Errorf("error = %v", err)
	}
}

func TestSyncCmdUnknownTarget(t *testing.T) {
	resetFlags(t)

	rootCmd.SetArgs([]string{"sync", "docs", "--to", "dropbox"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for unknown target")
	}
	if !strings.Contains(err.Error(), "dropbox") {
		t.Errorf("error should name the target, got: %v", err)
	}
}
