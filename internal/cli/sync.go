package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/brandonestevez/walter/internal/gitbook"
	"github.com/brandonestevez/walter/internal/gitsync"
)

var (
	syncTo      string
	syncMessage string
	syncRemote  string
	syncSpace   string
	syncNoPush  bool
)

// gitbookConfigPath is the path to the publisher config, settable for testing.
var gitbookConfigPath = gitbook.ConfigPath()

var syncCmd = &cobra.Command{
	Use:   "sync <path>",
	Short: "Sync documentation to GitHub or GitBook",
	Long: `Sync pushes generated documentation to an external home.

With --to github the path must live inside a git worktree: walter stages it,
commits (skipping the commit when nothing changed), and pushes to the remote.
Pushing over HTTP(S) authenticates with GITHUB_TOKEN.

With --to gitbook every markdown file under the path (SUMMARY.md excluded)
is published as a page in the configured space, and a fresh SUMMARY.md index
is written next to them. A single .md file publishes one page. The API token
comes from GITBOOK_TOKEN; the space from --space, walter config
gitbook_space, or ~/.walter/gitbook.yml.`,
	Example: `  walter sync docs/ --to github -m "Update dataset docs"
  walter sync docs/parks.md --to github --no-push
  walter sync docs/ --to gitbook
  walter sync docs/parks.md --to gitbook --space sp_a1b2c3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch syncTo {
		case "github":
			return syncGitHub(cmd.Context(), args[0])
		case "gitbook":
			return syncGitBook(cmd.Context(), args[0])
		default:
			return fmt.Errorf("unknown sync target %q (github, gitbook)", syncTo)
		}
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncTo, "to", "github", "sync target: github or gitbook")
	syncCmd.Flags().StringVarP(&syncMessage, "message", "m", "", "commit message (github)")
	syncCmd.Flags().StringVar(&syncRemote, "remote", "origin", "git remote to push to (github)")
	syncCmd.Flags().BoolVar(&syncNoPush, "no-push", false, "commit without pushing (github)")
	syncCmd.Flags().StringVar(&syncSpace, "space", "", "GitBook space id (gitbook)")
	rootCmd.AddCommand(syncCmd)
}

func syncGitHub(ctx context.Context, path string) error {
	res, err := gitsync.Sync(ctx, path, gitsync.Options{
		Message: syncMessage,
		Remote:  syncRemote,
		NoPush:  syncNoPush,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if res.Clean {
		fmt.Fprintln(os.Stderr, "Nothing to commit; worktree is clean.")
		return nil
	}
	fmt.Fprintf(os.Stderr, "Committed %s\n", shortCommit(res.Commit))
	if res.Pushed {
		fmt.Fprintf(os.Stderr, "Pushed to %s\n", syncRemote)
	}
	return nil
}

func syncGitBook(ctx context.Context, path string) error {
	space := syncSpace
	if space == "" {
		space = appConfig.GitBookSpace
	}
	baseURL := appConfig.GitBookURL
	if space == "" || baseURL == "" {
		if cfg, err := gitbook.LoadConfig(gitbookConfigPath); err == nil {
			if space == "" {
				space = cfg.DefaultSpace
			}
			if baseURL == "" {
				baseURL = cfg.BaseURL
			}
		}
	}

	api, err := gitbook.NewClient(baseURL, "")
	if err != nil {
		return err
	}
	pub, err := gitbook.NewPublisher(api, space)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	var pages []gitbook.PublishedPage
	if info.IsDir() {
		pages, err = pub.SyncDirectory(ctx, path)
		if err != nil {
			return err
		}
	} else {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		title := titleFromPath(path)
		page, err := pub.Publish(ctx, title, string(content), "")
		if err != nil {
			return fmt.Errorf("publish %s: %w", filepath.Base(path), err)
		}
		pages = []gitbook.PublishedPage{{Title: title, Path: filepath.Base(path), ID: page.ID}}
	}

	if jsonOutput {
		if pages == nil {
			pages = []gitbook.PublishedPage{}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pages)
	}

	if len(pages) == 0 {
		fmt.Fprintln(os.Stderr, "No markdown files to publish.")
		return nil
	}
	for _, p := range pages {
		fmt.Fprintf(os.Stderr, "Published %s (%s)\n", p.Title, p.ID)
	}
	fmt.Fprintf(os.Stderr, "Synced %s to space %s\n",
		english.Plural(len(pages), "page", ""), space)
	return nil
}
