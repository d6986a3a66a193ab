// Package model defines core types for walter: dataset summaries, geometry
// statistics, validation issues, and catalog entries.
package model

import (
	"fmt"
	"time"
)

// BBox is a bounding box as (minx, miny, maxx, maxy) in dataset coordinates.
type BBox [4]float64

// String formats the box the way descriptions print it.
func (b BBox) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f, %.2f)", b[0], b[1], b[2], b[3])
}

// GeometryStats holds area and extent statistics for a dataset.
type GeometryStats struct {
	TotalArea float64 `json:"total_area"`
	MeanArea  float64 `json:"mean_area"`
	AreaUnit  string  `json:"area_unit"`
	BBox      BBox    `json:"bbox"`
}

// Summary is the per-invocation description of a vector dataset. It is
// computed fresh on every run and never persisted by describe.
type Summary struct {
	Filename      string           `json:"filename"`
	Format        string           `json:"format"`
	FeatureCount  int              `json:"feature_count"`
	GeometryTypes []string         `json:"geometry_types"`
	Columns       []string         `json:"columns"`
	CRS           string           `json:"crs"`
	Stats         *GeometryStats   `json:"stats,omitempty"`
	Sample        []map[string]any `json:"sample,omitempty"`
}

// Issue reports a geometry problem found during validation.
type Issue struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// CatalogEntry is a dataset walter has learned, as stored in the catalog.
type CatalogEntry struct {
	ID            string    `json:"id"`
	Path          string    `json:"path"`
	Name          string    `json:"name"`
	Format        string    `json:"format"`
	FeatureCount  int       `json:"feature_count"`
	GeometryTypes []string  `json:"geometry_types,omitempty"`
	CRS           string    `json:"crs,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	Description   string    `json:"description,omitempty"`
	LearnedAt     time.Time `json:"learned_at"`
}
