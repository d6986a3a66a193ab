package vector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"github.com/brandonestevez/walter/internal/crs"
)

// csvPoints reads point datasets from CSV files that carry coordinate
// columns.
type csvPoints struct{}

func init() {
	Register(&csvPoints{})
}

var (
	lonCandidates = []string{"lon", "lng", "long", "longitude", "x"}
	latCandidates = []string{"lat", "latitude", "y"}
)

// Name returns "csv".
func (c *csvPoints) Name() string { return "csv" }

// Description returns a one-line summary for listings.
func (c *csvPoints) Description() string { return "CSV point datasets with lon/lat columns" }

// Extensions returns the extensions this reader handles.
func (c *csvPoints) Extensions() []string { return []string{".csv"} }

// Read loads a CSV of point features. The coordinate columns are detected
// case-insensitively (lon/lng/longitude/x and lat/latitude/y), consumed as
// the geometry, and excluded from the attribute columns. Coordinate columns
// imply WGS 84 lon/lat, so the CRS is EPSG:4326.
func (c *csvPoints) Read(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: %s is empty", path)
		}
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	lonIdx := findColumn(header, lonCandidates)
	latIdx := findColumn(header, latCandidates)
	if lonIdx < 0 || latIdx < 0 {
		return nil, fmt.Errorf("csv: %s has no coordinate columns (looked for %s and %s)",
			path, strings.Join(lonCandidates, "/"), strings.Join(latCandidates, "/"))
	}

	columns := make([]string, 0, len(header)-2)
	for i, name := range header {
		if i == lonIdx || i == latIdx {
			continue
		}
		columns = append(columns, name)
	}

	ds := &Dataset{
		Path:    path,
		Format:  c.Name(),
		CRS:     crs.Info{Authority: "EPSG", Code: "4326", Name: "WGS 84", Geographic: true},
		Columns: columns,
	}

	rowNum := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		rowNum++

		lon, err := strconv.ParseFloat(strings.TrimSpace(rec[lonIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv: row %d: bad %s value %q", rowNum, header[lonIdx], rec[lonIdx])
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[latIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv: row %d: bad %s value %q", rowNum, header[latIdx], rec[latIdx])
		}

		attrs := make(map[string]any, len(columns))
		for i, name := range header {
			if i == lonIdx || i == latIdx {
				continue
			}
			attrs[name] = csvValue(rec[i])
		}
		ds.Features = append(ds.Features, Feature{
			Geometry: orb.Point{lon, lat},
			Attrs:    attrs,
		})
	}

	return ds, nil
}

// findColumn returns the index of the first header matching any candidate,
// case-insensitively.
func findColumn(header, candidates []string) int {
	for _, want := range candidates {
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), want) {
				return i
			}
		}
	}
	return -1
}

// csvValue coerces a CSV cell: integers to int64, decimals to float64,
// true/false to bool. Empty cells become nil.
func csvValue(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if v, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}
