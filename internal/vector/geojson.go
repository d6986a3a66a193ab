package vector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb/geojson"

	"github.com/brandonestevez/walter/internal/crs"
)

// geoJSON reads GeoJSON documents: FeatureCollections, single Features, and
// bare geometry objects.
type geoJSON struct{}

func init() {
	Register(&geoJSON{})
}

// Name returns "geojson".
func (g *geoJSON) Name() string { return "geojson" }

// Description returns a one-line summary for listings.
func (g *geoJSON) Description() string { return "GeoJSON feature collections (RFC 7946)" }

// Extensions returns the extensions this reader handles.
func (g *geoJSON) Extensions() []string { return []string{".geojson", ".json"} }

// Read loads a GeoJSON document. Attribute columns keep the property order
// of the file, unioned across features in first-seen order. The CRS comes
// from the legacy crs member when present; otherwise it is EPSG:4326 as
// RFC 7946 mandates.
func (g *geoJSON) Read(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("geojson: %w", err)
	}

	var doc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
		CRS      json.RawMessage   `json:"crs"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("geojson: parse %s: %w", path, err)
	}

	ds := &Dataset{
		Path:   path,
		Format: g.Name(),
		CRS:    parseCRSMember(doc.CRS),
	}
	seen := make(map[string]bool)

	switch doc.Type {
	case "FeatureCollection":
		for i, raw := range doc.Features {
			f, err := geojson.UnmarshalFeature(raw)
			if err != nil {
				return nil, fmt.Errorf("geojson: feature %d: %w", i, err)
			}
			ds.Features = append(ds.Features, Feature{
				Geometry: f.Geometry,
				Attrs:    map[string]any(f.Properties),
			})
			if err := appendPropertyColumns(raw, &ds.Columns, seen); err != nil {
				return nil, fmt.Errorf("geojson: feature %d properties: %w", i, err)
			}
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("geojson: parse %s: %w", path, err)
		}
		ds.Features = append(ds.Features, Feature{
			Geometry: f.Geometry,
			Attrs:    map[string]any(f.Properties),
		})
		if err := appendPropertyColumns(data, &ds.Columns, seen); err != nil {
			return nil, fmt.Errorf("geojson: properties: %w", err)
		}
	case "":
		return nil, fmt.Errorf("geojson: %s: missing type member", path)
	default:
		var gj geojson.Geometry
		if err := json.Unmarshal(data, &gj); err != nil {
			return nil, fmt.Errorf("geojson: parse %s: %w", path, err)
		}
		ds.Features = append(ds.Features, Feature{Geometry: gj.Geometry()})
	}

	return ds, nil
}

// parseCRSMember reads the legacy crs member that pre-RFC 7946 documents
// carry. Absent or unrecognized members resolve to EPSG:4326.
func parseCRSMember(raw json.RawMessage) crs.Info {
	wgs84 := crs.Info{Authority: "EPSG", Code: "4326", Name: "WGS 84", Geographic: true}
	if len(raw) == 0 {
		return wgs84
	}
	var member struct {
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &member); err != nil {
		return wgs84
	}
	if member.Properties.Name == "" {
		return wgs84
	}
	return parseCRSName(member.Properties.Name, wgs84)
}

// parseCRSName handles the crs member name forms in the wild: "EPSG:4326",
// "urn:ogc:def:crs:EPSG::4326", and "urn:ogc:def:crs:OGC:1.3:CRS84".
func parseCRSName(name string, fallback crs.Info) crs.Info {
	const urnPrefix = "urn:ogc:def:crs:"
	if strings.HasPrefix(strings.ToLower(name), urnPrefix) {
		parts := strings.Split(name[len(urnPrefix):], ":")
		if len(parts) == 3 {
			if info, err := crs.Parse(parts[0] + ":" + parts[2]); err == nil {
				return info
			}
		}
		return fallback
	}
	if info, err := crs.Parse(name); err == nil {
		return info
	}
	return fallback
}

// appendPropertyColumns scans one feature object's properties member and
// appends unseen keys to cols in document order. encoding/json maps lose key
// order, so this walks the token stream instead.
func appendPropertyColumns(feature []byte, cols *[]string, seen map[string]bool) error {
	dec := json.NewDecoder(bytes.NewReader(feature))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("feature is not an object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		if key != "properties" {
			if err := skipValue(dec); err != nil {
				return err
			}
			continue
		}
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			continue // null properties
		}
		for dec.More() {
			nameTok, err := dec.Token()
			if err != nil {
				return err
			}
			name, _ := nameTok.(string)
			if !seen[name] {
				seen[name] = true
				*cols = append(*cols, name)
			}
			if err := skipValue(dec); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil {
			return err
		}
	}
	return nil
}

// skipValue consumes one JSON value from dec, descending into objects and
// arrays.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || (d != '{' && d != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}
