// Package vector loads vector GIS datasets into memory. Each file format is
// a Reader plugin registered at init; Open picks the reader by file
// extension. Datasets are fully materialized: every feature is loaded before
// analysis begins.
package vector

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/paulmach/orb"

	"github.com/brandonestevez/walter/internal/crs"
)

// Feature is one record of a dataset: a geometry plus its attributes.
type Feature struct {
	Geometry orb.Geometry
	Attrs    map[string]any
}

// Dataset is a fully loaded vector file.
type Dataset struct {
	Path     string
	Format   string   // reader name, e.g. "shapefile"
	CRS      crs.Info // zero value when the file carries no CRS
	Columns  []string // attribute names in source order, geometry excluded
	Features []Feature
}

// Reader loads one vector file format. Each format plugin handles the
// extensions it registers (e.g., ".shp" for shapefiles).
type Reader interface {
	// Name returns the unique identifier for this format (e.g., "shapefile").
	Name() string

	// Description returns a one-line summary for listings.
	Description() string

	// Extensions returns the file extensions this reader handles,
	// lowercase with the leading dot.
	Extensions() []string

	// Read loads the file at path, including any sidecar files the
	// format requires.
	Read(path string) (*Dataset, error)
}

var (
	mu       sync.RWMutex
	registry = make(map[string]Reader)
	byExt    = make(map[string]Reader)
)

// Register adds a format reader to the registry. It panics if a reader with
// the same name or extension is already registered.
func Register(r Reader) {
	mu.Lock()
	defer mu.Unlock()
	name := r.Name()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("vector: duplicate registration for %q", name))
	}
	registry[name] = r
	for _, ext := range r.Extensions() {
		if prev, exists := byExt[ext]; exists {
			panic(fmt.Sprintf("vector: extension %q claimed by both %q and %q", ext, prev.Name(), name))
		}
		byExt[ext] = r
	}
}

// Get returns the reader with the given name, or nil if not found.
func Get(name string) Reader {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}

// Names returns the sorted names of all registered format readers.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extensions returns all registered file extensions, sorted.
func Extensions() []string {
	mu.RLock()
	defer mu.RUnlock()
	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Open loads the vector file at path, dispatching on its extension.
// Unrecognized extensions fail with the supported list and, when the
// extension is close to a known one, a suggestion.
func Open(path string) (*Dataset, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, fmt.Errorf("open %s: no file extension (supported: %s)", path, strings.Join(Extensions(), ", "))
	}

	mu.RLock()
	r := byExt[ext]
	mu.RUnlock()

	if r == nil {
		msg := fmt.Sprintf("open %s: unsupported format %q (supported: %s)", path, ext, strings.Join(Extensions(), ", "))
		if near := nearestExtension(ext); near != "" {
			msg += fmt.Sprintf(", did you mean %q?", near)
		}
		return nil, fmt.Errorf("%s", msg)
	}

	ds, err := r.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.Name(), err)
	}
	return ds, nil
}

// nearestExtension finds a registered extension within edit distance 2 of
// ext, or "" when none is close enough.
func nearestExtension(ext string) string {
	best := ""
	bestDist := 3
	for _, known := range Extensions() {
		d := levenshtein.ComputeDistance(ext, known)
		if d < bestDist {
			best = known
			bestDist = d
		}
	}
	return best
}
