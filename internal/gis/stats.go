package gis

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"

	"github.com/brandonestevez/walter/internal/model"
	"github.com/brandonestevez/walter/internal/vector"
)

// Stats computes area and extent statistics. The bounding box stays in the
// dataset's native coordinates. Areas are planimetric: geographic datasets
// are projected to Web Mercator first and reported in square meters, other
// datasets keep their native square units. Returns nil when no feature has
// geometry.
func Stats(ds *vector.Dataset) *model.GeometryStats {
	var (
		bound orb.Bound
		count int
		total float64
	)
	for _, f := range ds.Features {
		if f.Geometry == nil {
			continue
		}
		if count == 0 {
			bound = f.Geometry.Bound()
		} else {
			bound = bound.Union(f.Geometry.Bound())
		}
		count++
		total += featureArea(f.Geometry, ds.CRS.Geographic)
	}
	if count == 0 {
		return nil
	}

	unit := "square units"
	if ds.CRS.Geographic {
		unit = "square meters"
	}
	return &model.GeometryStats{
		TotalArea: total,
		MeanArea:  total / float64(count),
		AreaUnit:  unit,
		BBox:      model.BBox{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]},
	}
}

func featureArea(g orb.Geometry, geographic bool) float64 {
	if geographic {
		g = project.Geometry(orb.Clone(g), project.WGS84.ToMercator)
	}
	return planar.Area(g)
}
