// Package catalog defines the storage interface for learned datasets.
package catalog

import (
	"context"

	"github.com/brandonestevez/walter/internal/model"
)

// Store is the persistence interface for the dataset catalog.
type Store interface {
	// Save inserts an entry, or replaces the existing entry for the
	// same path. The stored ID is stable across re-learns.
	Save(ctx context.Context, e model.CatalogEntry) error

	// List returns entries matching the given filter options, newest first.
	List(ctx context.Context, opts ListOpts) ([]model.CatalogEntry, error)

	// Get returns an entry by ID or dataset path, or nil if not found.
	Get(ctx context.Context, idOrPath string) (*model.CatalogEntry, error)

	// Delete removes an entry by ID or dataset path. Returns true if deleted.
	Delete(ctx context.Context, idOrPath string) (bool, error)

	// Count returns the number of cataloged datasets.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// ListOpts controls filtering for List.
type ListOpts struct {
	Format string // Filter by dataset format (e.g. "shapefile").
	Limit  int    // Maximum results; 0 means no limit.
}
