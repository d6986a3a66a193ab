package gis

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/brandonestevez/walter/internal/crs"
	"github.com/brandonestevez/walter/internal/vector"
)

func marketsDataset() *vector.Dataset {
	return &vector.Dataset{
		Path:    "/data/markets.shp",
		Format:  "shapefile",
		CRS:     crs.Info{Authority: "EPSG", Code: "4326", Geographic: true},
		Columns: []string{"name", "category"},
		Features: []vector.Feature{
			{Geometry: orb.Point{-122.41, 37.77}, Attrs: map[string]any{"name": "Ferry Plaza", "category": "farmers"}},
			{Geometry: orb.Point{-122.43, 37.76}, Attrs: map[string]any{"name": "Mission Community", "category": "farmers"}},
			{Geometry: orb.Point{-122.39, 37.79}, Attrs: map[string]any{"name": "Crocker Galleria", "category": "artisan"}},
		},
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(marketsDataset())
	if sum.Filename != "markets.shp" {
		t.Errorf("Filename: got %q, want markets.shp", sum.Filename)
	}
	if sum.Format != "shapefile" {
		t.Errorf("Format: got %q, want shapefile", sum.Format)
	}
	if sum.FeatureCount != 3 {
		t.Errorf("FeatureCount: got %d, want 3", sum.FeatureCount)
	}
	if len(sum.GeometryTypes) != 1 || sum.GeometryTypes[0] != "Point" {
		t.Errorf("GeometryTypes: got %v, want [Point]", sum.GeometryTypes)
	}
	if len(sum.Columns) != 2 || sum.Columns[0] != "name" || sum.Columns[1] != "category" {
		t.Errorf("Columns: got %v, want [name category]", sum.Columns)
	}
	if sum.CRS != "EPSG:4326" {
		t.Errorf("CRS: got %q, want EPSG:4326", sum.CRS)
	}
	if sum.Stats == nil {
		t.Fatal("Stats: got nil, want computed stats")
	}
	if len(sum.Sample) != 3 {
		t.Errorf("Sample: got %d rows, want 3", len(sum.Sample))
	}
	if sum.Sample[0]["name"] != "Ferry Plaza" {
		t.Errorf("Sample[0]: got %v", sum.Sample[0])
	}
}

func TestGeometryTypesFirstAppearanceOrder(t *testing.T) {
	ds := &vector.Dataset{
		Features: []vector.Feature{
			{Geometry: orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}},
			{Geometry: orb.Point{0, 0}},
			{Geometry: orb.Polygon{{{2, 2}, {3, 2}, {3, 3}, {2, 2}}}},
			{Geometry: nil},
			{Geometry: orb.LineString{{0, 0}, {1, 1}}},
		},
	}
	sum := Summarize(ds)
	want := []string{"Polygon", "Point", "LineString"}
	if len(sum.GeometryTypes) != len(want) {
		t.Fatalf("GeometryTypes: got %v, want %v", sum.GeometryTypes, want)
	}
	for i := range want {
		if sum.GeometryTypes[i] != want[i] {
			t.Errorf("GeometryTypes[%d]: got %q, want %q", i, sum.GeometryTypes[i], want[i])
		}
	}
}

func TestSampleIsBoundedPrefix(t *testing.T) {
	var features []vector.Feature
	for i := 0; i < 9; i++ {
		features = append(features, vector.Feature{
			Geometry: orb.Point{float64(i), 0},
			Attrs:    map[string]any{"idx": i},
		})
	}
	sum := Summarize(&vector.Dataset{Path: "many.geojson", Features: features})
	if len(sum.Sample) != SampleSize {
		t.Fatalf("Sample: got %d rows, want %d", len(sum.Sample), SampleSize)
	}
	for i, row := range sum.Sample {
		if row["idx"] != i {
			t.Errorf("Sample[%d]: got %v, want idx %d (prefix in file order)", i, row["idx"], i)
		}
	}
}

func TestSummarizeEmptyDataset(t *testing.T) {
	sum := Summarize(&vector.Dataset{Path: "empty.geojson", Format: "geojson"})
	if sum.FeatureCount != 0 {
		t.Errorf("FeatureCount: got %d, want 0", sum.FeatureCount)
	}
	if sum.Stats != nil {
		t.Errorf("Stats: got %+v, want nil for empty dataset", sum.Stats)
	}
	if sum.Sample != nil {
		t.Errorf("Sample: got %v, want nil", sum.Sample)
	}
	if sum.CRS != "undefined" {
		t.Errorf("CRS: got %q, want undefined", sum.CRS)
	}
}

func TestSummarizeDeterministic(t *testing.T) {
	a := Summarize(marketsDataset())
	b := Summarize(marketsDataset())
	if a.FeatureCount != b.FeatureCount || a.CRS != b.CRS {
		t.Error("summaries differ across runs")
	}
	if a.Stats.BBox != b.Stats.BBox || a.Stats.TotalArea != b.Stats.TotalArea {
		t.Error("stats differ across runs")
	}
}
