// Package gis analyzes loaded vector datasets: summary records, geometry
// statistics, and structural validity checks.
package gis

import (
	"path/filepath"

	"github.com/brandonestevez/walter/internal/model"
	"github.com/brandonestevez/walter/internal/vector"
)

// SampleSize bounds the attribute sample included in a summary.
const SampleSize = 5

// Summarize builds the summary record for a loaded dataset. Statistics are
// computed whenever the dataset has geometry; whether they are rendered is
// the formatter's decision.
func Summarize(ds *vector.Dataset) *model.Summary {
	s := &model.Summary{
		Filename:      filepath.Base(ds.Path),
		Format:        ds.Format,
		FeatureCount:  len(ds.Features),
		GeometryTypes: geometryTypes(ds.Features),
		Columns:       ds.Columns,
		CRS:           ds.CRS.String(),
		Stats:         Stats(ds),
		Sample:        sample(ds.Features),
	}
	return s
}

// geometryTypes returns the distinct geometry type names in first-appearance
// order. Features without geometry contribute nothing.
func geometryTypes(features []vector.Feature) []string {
	var types []string
	seen := make(map[string]bool)
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		name := f.Geometry.GeoJSONType()
		if !seen[name] {
			seen[name] = true
			types = append(types, name)
		}
	}
	return types
}

// sample returns the attribute maps of the first SampleSize features, in
// file order.
func sample(features []vector.Feature) []map[string]any {
	n := len(features)
	if n > SampleSize {
		n = SampleSize
	}
	if n == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, n)
	for _, f := range features[:n] {
		attrs := f.Attrs
		if attrs == nil {
			attrs = map[string]any{}
		}
		rows = append(rows, attrs)
	}
	return rows
}
