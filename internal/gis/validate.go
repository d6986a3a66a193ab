package gis

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/brandonestevez/walter/internal/model"
	"github.com/brandonestevez/walter/internal/vector"
)

// Validate runs structural geometry checks over every feature and returns
// the issues found, in feature order. An empty result means the dataset
// passed.
func Validate(ds *vector.Dataset) []model.Issue {
	var issues []model.Issue
	for i, f := range ds.Features {
		for _, reason := range geometryIssues(f.Geometry) {
			issues = append(issues, model.Issue{Index: i, Reason: reason})
		}
	}
	return issues
}

func geometryIssues(g orb.Geometry) []string {
	if g == nil {
		return []string{"empty geometry"}
	}

	var reasons []string
	if !finiteGeometry(g) {
		reasons = append(reasons, "non-finite coordinate")
	}

	switch v := g.(type) {
	case orb.LineString:
		if len(v) < 2 {
			reasons = append(reasons, "line with fewer than 2 points")
		} else if duplicateVertex(v) {
			reasons = append(reasons, "line has duplicate consecutive vertices")
		}
	case orb.MultiLineString:
		for i, ls := range v {
			if len(ls) < 2 {
				reasons = append(reasons, fmt.Sprintf("line %d with fewer than 2 points", i))
			} else if duplicateVertex(ls) {
				reasons = append(reasons, fmt.Sprintf("line %d has duplicate consecutive vertices", i))
			}
		}
	case orb.Ring:
		reasons = append(reasons, ringIssues(v, "ring")...)
	case orb.Polygon:
		reasons = append(reasons, polygonIssues(v)...)
	case orb.MultiPolygon:
		for i, p := range v {
			for _, r := range polygonIssues(p) {
				reasons = append(reasons, fmt.Sprintf("polygon %d: %s", i, r))
			}
		}
	case orb.MultiPoint:
		if len(v) == 0 {
			reasons = append(reasons, "empty multipoint")
		}
	case orb.Collection:
		for i, sub := range v {
			for _, r := range geometryIssues(sub) {
				reasons = append(reasons, fmt.Sprintf("member %d: %s", i, r))
			}
		}
	}
	return reasons
}

func polygonIssues(p orb.Polygon) []string {
	if len(p) == 0 {
		return []string{"polygon with no rings"}
	}
	var reasons []string
	for i, r := range p {
		label := "exterior ring"
		if i > 0 {
			label = fmt.Sprintf("hole %d", i)
		}
		reasons = append(reasons, ringIssues(r, label)...)
	}
	return reasons
}

func ringIssues(r orb.Ring, label string) []string {
	var reasons []string
	if len(r) < 4 {
		reasons = append(reasons, fmt.Sprintf("%s has fewer than 4 points", label))
		return reasons
	}
	if !r.Closed() {
		reasons = append(reasons, fmt.Sprintf("%s is not closed", label))
	}
	if duplicateVertex(orb.LineString(r)) {
		reasons = append(reasons, fmt.Sprintf("%s has duplicate consecutive vertices", label))
	}
	return reasons
}

// duplicateVertex reports whether two consecutive points coincide.
func duplicateVertex(ls orb.LineString) bool {
	for i := 1; i < len(ls); i++ {
		if ls[i] == ls[i-1] {
			return true
		}
	}
	return false
}

// finiteGeometry reports whether every coordinate is a finite number.
func finiteGeometry(g orb.Geometry) bool {
	finite := true
	walkPoints(g, func(p orb.Point) {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
			finite = false
		}
	})
	return finite
}

func walkPoints(g orb.Geometry, fn func(orb.Point)) {
	switch v := g.(type) {
	case orb.Point:
		fn(v)
	case orb.MultiPoint:
		for _, p := range v {
			fn(p)
		}
	case orb.LineString:
		for _, p := range v {
			fn(p)
		}
	case orb.MultiLineString:
		for _, ls := range v {
			for _, p := range ls {
				fn(p)
			}
		}
	case orb.Ring:
		for _, p := range v {
			fn(p)
		}
	case orb.Polygon:
		for _, r := range v {
			for _, p := range r {
				fn(p)
			}
		}
	case orb.MultiPolygon:
		for _, poly := range v {
			for _, r := range poly {
				for _, p := range r {
					fn(p)
				}
			}
		}
	case orb.Collection:
		for _, sub := range v {
			walkPoints(sub, fn)
		}
	case orb.Bound:
		fn(v.Min)
		fn(v.Max)
	}
}
