package gitbook

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the publisher configuration stored at ~/.walter/gitbook.yml.
type Config struct {
	DefaultSpace string `yaml:"default_space"`
	BaseURL      string `yaml:"base_url,omitempty"`
}

// ConfigPath returns the default publisher config path (~/.walter/gitbook.yml).
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".walter", "gitbook.yml")
	}
	return filepath.Join(home, ".walter", "gitbook.yml")
}

// LoadConfig reads a publisher config file. A missing file is an error;
// sync needs at least a space to publish into.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gitbook config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse gitbook config %s: %w", path, err)
	}
	return &cfg, nil
}

// Publisher pushes markdown documents into a GitBook space.
type Publisher struct {
	api   *Client
	space string
}

// NewPublisher wraps api for publishing into space.
func NewPublisher(api *Client, space string) (*Publisher, error) {
	if space == "" {
		return nil, errors.New("gitbook space not configured")
	}
	return &Publisher{api: api, space: space}, nil
}

// Publish creates a page, or updates it in place when pageID is non-empty.
func (p *Publisher) Publish(ctx context.Context, title, content, pageID string) (*Page, error) {
	if pageID != "" {
		return p.api.UpdatePage(ctx, p.space, pageID, content)
	}
	return p.api.CreatePage(ctx, p.space, title, content)
}

// PublishedPage records one page pushed during a directory sync.
type PublishedPage struct {
	Title string `json:"title"`
	Path  string `json:"path"`
	ID    string `json:"id"`
}

// SyncDirectory publishes every markdown file under dir (SUMMARY.md
// excluded) and rewrites dir's SUMMARY.md from the published set.
func (p *Publisher) SyncDirectory(ctx context.Context, dir string) ([]PublishedPage, error) {
	var pages []PublishedPage
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") || d.Name() == "SUMMARY.md" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		title := pageTitle(d.Name())
		page, err := p.api.CreatePage(ctx, p.space, title, string(content))
		if err != nil {
			return fmt.Errorf("publish %s: %w", d.Name(), err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		pages = append(pages, PublishedPage{Title: title, Path: rel, ID: page.ID})
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := Summary(pages)
	if err := os.WriteFile(filepath.Join(dir, "SUMMARY.md"), []byte(summary), 0o644); err != nil {
		return nil, fmt.Errorf("write SUMMARY.md: %w", err)
	}
	return pages, nil
}

// Summary renders SUMMARY.md content linking the published pages.
func Summary(pages []PublishedPage) string {
	var b strings.Builder
	b.WriteString("# Summary\n\n")
	for _, p := range pages {
		fmt.Fprintf(&b, "* [%s](%s)\n", p.Title, p.Path)
	}
	return b.String()
}

// pageTitle derives a page title from a markdown filename:
// "bike-lanes.md" becomes "Bike Lanes".
func pageTitle(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	words := strings.Split(stem, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
