package vector

import (
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func TestGeoJSONSeqRead(t *testing.T) {
	doc := `{"type": "Feature", "geometry": {"type": "Point", "coordinates": [1, 2]}, "properties": {"name": "a", "rank": 1}}
{"type": "Feature", "geometry": {"type": "Point", "coordinates": [3, 4]}, "properties": {"name": "b", "rank": 2}}

{"type": "Feature", "geometry": {"type": "Point", "coordinates": [5, 6]}, "properties": {"name": "c", "note": "last"}}
`
	ds, err := Open(writeFile(t, "points.geojsonl", doc))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ds.Format != "geojsonseq" {
		t.Errorf("Format: got %q, want geojsonseq", ds.Format)
	}
	if len(ds.Features) != 3 {
		t.Fatalf("features: got %d, want 3 (blank lines skipped)", len(ds.Features))
	}
	want := []string{"name", "rank", "note"}
	if len(ds.Columns) != len(want) {
		t.Fatalf("Columns: got %v, want %v", ds.Columns, want)
	}
	for i := range want {
		if ds.Columns[i] != want[i] {
			t.Errorf("Columns[%d]: got %q, want %q", i, ds.Columns[i], want[i])
		}
	}
	if got := ds.CRS.String(); got != "EPSG:4326" {
		t.Errorf("CRS: got %q, want EPSG:4326", got)
	}
	pt, ok := ds.Features[2].Geometry.(orb.Point)
	if !ok || pt[0] != 5 || pt[1] != 6 {
		t.Errorf("last geometry: got %v", ds.Features[2].Geometry)
	}
}

func TestGeoJSONSeqRecordSeparator(t *testing.T) {
	doc := "\x1e" + `{"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]}, "properties": {}}` + "\n"
	ds, err := Open(writeFile(t, "rs.ndjson", doc))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(ds.Features) != 1 {
		t.Errorf("features: got %d, want 1", len(ds.Features))
	}
}

func TestGeoJSONSeqBadLineReportsNumber(t *testing.T) {
	doc := `{"type": "Feature", "geometry": null, "properties": {}}
not json
`
	_, err := Open(writeFile(t, "bad.geojsonl", doc))
	if err == nil {
		t.Fatal("Open: expected error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name line 2", err)
	}
}
