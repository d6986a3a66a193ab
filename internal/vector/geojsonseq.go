package vector

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/brandonestevez/walter/internal/crs"
)

// geoJSONSeq reads newline-delimited GeoJSON: one feature per line, with or
// without the RFC 8142 record separator prefix.
type geoJSONSeq struct{}

func init() {
	Register(&geoJSONSeq{})
}

// Name returns "geojsonseq".
func (g *geoJSONSeq) Name() string { return "geojsonseq" }

// Description returns a one-line summary for listings.
func (g *geoJSONSeq) Description() string { return "newline-delimited GeoJSON features" }

// Extensions returns the extensions this reader handles.
func (g *geoJSONSeq) Extensions() []string { return []string{".geojsonl", ".ndjson", ".geojsons"} }

// Read loads one feature per line. Blank lines are skipped; the CRS is
// always EPSG:4326 since sequence features are plain RFC 7946 documents.
func (g *geoJSONSeq) Read(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geojsonseq: %w", err)
	}
	defer f.Close()

	ds := &Dataset{
		Path:   path,
		Format: g.Name(),
		CRS:    crs.Info{Authority: "EPSG", Code: "4326", Name: "WGS 84", Geographic: true},
	}
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	// Allow large lines (features can carry big geometries).
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		// Tolerate the RS byte RFC 8142 sequences prepend.
		line = bytes.TrimPrefix(line, []byte{0x1e})
		if len(line) == 0 {
			continue
		}

		feat, err := geojson.UnmarshalFeature(line)
		if err != nil {
			return nil, fmt.Errorf("geojsonseq: line %d: %w", lineNum, err)
		}
		ds.Features = append(ds.Features, Feature{
			Geometry: feat.Geometry,
			Attrs:    map[string]any(feat.Properties),
		})
		if err := appendPropertyColumns(line, &ds.Columns, seen); err != nil {
			return nil, fmt.Errorf("geojsonseq: line %d properties: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("geojsonseq: reading %s: %w", path, err)
	}
	return ds, nil
}
