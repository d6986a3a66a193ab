// Package gitsync commits and pushes generated documentation to a git
// remote.
package gitsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

const defaultMessage = "Update dataset documentation"

// Options control a sync run.
type Options struct {
	Message string // Commit message; empty selects a default.
	Remote  string // Remote name; empty selects origin.
	Token   string // Push auth token; empty falls back to GITHUB_TOKEN.
	NoPush  bool   // Commit locally without pushing.
}

// Result reports what a sync run did.
type Result struct {
	Commit string `json:"commit,omitempty"`
	Clean  bool   `json:"clean"`
	Pushed bool   `json:"pushed"`
}

// Sync stages path in its enclosing repository, commits the staged
// changes with a walter signature, and pushes to the remote. When the
// path has no changes the run reports clean and commits nothing.
func Sync(ctx context.Context, path string, opts Options) (*Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	start := abs
	if !fi.IsDir() {
		start = filepath.Dir(abs)
	}

	repo, err := git.PlainOpenWithOptions(start, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository for %s: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}

	root := wt.Filesystem.Root()
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("%s is outside repository %s", abs, root)
	}
	rel = filepath.ToSlash(rel)

	if _, err := wt.Add(rel); err != nil {
		return nil, fmt.Errorf("stage %s: %w", rel, err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}
	if !hasStagedChanges(status, rel) {
		return &Result{Clean: true}, nil
	}

	msg := opts.Message
	if msg == "" {
		msg = defaultMessage
	}
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "walter",
			Email: "walter@localhost",
			When:  time.Now(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	res := &Result{Commit: hash.String()}

	if opts.NoPush {
		return res, nil
	}
	remote := opts.Remote
	if remote == "" {
		remote = "origin"
	}
	pushOpts := &git.PushOptions{RemoteName: remote}
	token := opts.Token
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token != "" {
		pushOpts.Auth = &githttp.BasicAuth{Username: "walter", Password: token}
	}
	if err := repo.PushContext(ctx, pushOpts); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("push to %s: %w", remote, err)
	}
	res.Pushed = true
	return res, nil
}

// hasStagedChanges reports whether any file at or under rel has staged
// changes. Dirt elsewhere in the worktree does not count.
func hasStagedChanges(status git.Status, rel string) bool {
	for p, st := range status {
		if rel != "." && p != rel && !strings.HasPrefix(p, rel+"/") {
			continue
		}
		if st.Staging != git.Unmodified && st.Staging != git.Untracked {
			return true
		}
	}
	return false
}
