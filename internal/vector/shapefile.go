package vector

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/brandonestevez/walter/internal/crs"
)

// shapefile reads ESRI shapefiles with their .dbf attribute and .prj CRS
// sidecars.
type shapefile struct{}

func init() {
	Register(&shapefile{})
}

// Name returns "shapefile".
func (s *shapefile) Name() string { return "shapefile" }

// Description returns a one-line summary for listings.
func (s *shapefile) Description() string { return "ESRI shapefiles (.shp with .dbf/.prj sidecars)" }

// Extensions returns the extensions this reader handles.
func (s *shapefile) Extensions() []string { return []string{".shp"} }

// Read loads the shapefile at path. Attribute columns follow DBF field
// order; the CRS comes from the .prj sidecar when one exists.
func (s *shapefile) Read(path string) (*Dataset, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("shapefile: %w", err)
	}
	defer r.Close()

	fields := r.Fields()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.String()
	}

	ds := &Dataset{
		Path:    path,
		Format:  s.Name(),
		Columns: columns,
	}

	for r.Next() {
		n, sh := r.Shape()
		geom, err := shapeGeometry(sh)
		if err != nil {
			return nil, fmt.Errorf("shapefile: record %d: %w", n, err)
		}
		attrs := make(map[string]any, len(fields))
		for k, f := range fields {
			attrs[columns[k]] = dbfValue(f, r.ReadAttribute(n, k))
		}
		ds.Features = append(ds.Features, Feature{Geometry: geom, Attrs: attrs})
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("shapefile: reading %s: %w", path, err)
	}

	prjPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
	wkt, err := os.ReadFile(prjPath)
	if err == nil {
		info, err := crs.ParseWKT(string(wkt))
		if err != nil {
			return nil, fmt.Errorf("shapefile: %s: %w", prjPath, err)
		}
		ds.CRS = info
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("shapefile: %w", err)
	}

	return ds, nil
}

// dbfValue coerces a raw DBF attribute string by field type: numerics to
// int64/float64, logicals to bool. Empty cells become nil.
func dbfValue(f shp.Field, raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	switch f.Fieldtype {
	case 'N':
		if f.Precision == 0 && !strings.Contains(raw, ".") {
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return v
			}
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
		return raw
	case 'F':
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
		return raw
	case 'L':
		switch strings.ToLower(raw) {
		case "t", "y", "true", "1":
			return true
		case "f", "n", "false", "0":
			return false
		}
		return raw
	default:
		return raw
	}
}

// shapeGeometry converts a shapefile shape to an orb geometry, dropping Z
// and M values. Null shapes convert to a nil geometry.
func shapeGeometry(s shp.Shape) (orb.Geometry, error) {
	switch v := s.(type) {
	case *shp.Null:
		return nil, nil
	case *shp.Point:
		return orb.Point{v.X, v.Y}, nil
	case *shp.PointM:
		return orb.Point{v.X, v.Y}, nil
	case *shp.PointZ:
		return orb.Point{v.X, v.Y}, nil
	case *shp.MultiPoint:
		return multiPoint(v.Points), nil
	case *shp.MultiPointM:
		return multiPoint(v.Points), nil
	case *shp.MultiPointZ:
		return multiPoint(v.Points), nil
	case *shp.PolyLine:
		return polyline(v.Parts, v.Points), nil
	case *shp.PolyLineM:
		return polyline(v.Parts, v.Points), nil
	case *shp.PolyLineZ:
		return polyline(v.Parts, v.Points), nil
	case *shp.Polygon:
		return polygon(v.Parts, v.Points), nil
	case *shp.PolygonM:
		return polygon(v.Parts, v.Points), nil
	case *shp.PolygonZ:
		return polygon(v.Parts, v.Points), nil
	default:
		return nil, fmt.Errorf("unsupported shape type %T", s)
	}
}

func multiPoint(points []shp.Point) orb.MultiPoint {
	mp := make(orb.MultiPoint, len(points))
	for i, p := range points {
		mp[i] = orb.Point{p.X, p.Y}
	}
	return mp
}

func polyline(parts []int32, points []shp.Point) orb.Geometry {
	segs := splitParts(parts, points)
	if len(segs) == 1 {
		return orb.LineString(segs[0])
	}
	ml := make(orb.MultiLineString, len(segs))
	for i, seg := range segs {
		ml[i] = orb.LineString(seg)
	}
	return ml
}

// polygon groups rings into polygons. Shapefile winding: clockwise rings are
// exteriors opening a new polygon, counter-clockwise rings are holes of the
// preceding exterior.
func polygon(parts []int32, points []shp.Point) orb.Geometry {
	segs := splitParts(parts, points)
	var polys []orb.Polygon
	for _, seg := range segs {
		ring := orb.Ring(seg)
		if len(polys) == 0 || clockwise(ring) {
			polys = append(polys, orb.Polygon{ring})
			continue
		}
		polys[len(polys)-1] = append(polys[len(polys)-1], ring)
	}
	if len(polys) == 1 {
		return polys[0]
	}
	mp := make(orb.MultiPolygon, len(polys))
	copy(mp, polys)
	return mp
}

// splitParts slices the flat point array into per-part segments using the
// shapefile part offsets.
func splitParts(parts []int32, points []shp.Point) [][]orb.Point {
	if len(parts) == 0 {
		parts = []int32{0}
	}
	out := make([][]orb.Point, 0, len(parts))
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		if int(start) > end || int(start) > len(points) {
			continue
		}
		seg := make([]orb.Point, 0, end-int(start))
		for _, p := range points[start:end] {
			seg = append(seg, orb.Point{p.X, p.Y})
		}
		out = append(out, seg)
	}
	return out
}

// clockwise reports whether the ring has negative shoelace area.
func clockwise(r orb.Ring) bool {
	var area float64
	for i := 0; i+1 < len(r); i++ {
		area += r[i][0]*r[i+1][1] - r[i+1][0]*r[i][1]
	}
	return area < 0
}
