package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Polygons flattens an areal geometry into its polygons
func Polygons(g orb.Geometry) []orb.Polygon {
	switch geometry := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{geometry}
	case orb.MultiPolygon:
		return geometry
	case orb.Ring:
		return []orb.Polygon{{geometry}}
	case orb.Bound:
		return []orb.Polygon{geometry.ToPolygon()}
	case orb.Collection:
		var polygons []orb.Polygon
		for _, part := range geometry {
			polygons = append(polygons, Polygons(part)...)
		}
		return polygons
	}

	return nil
}

// Intersects reports whether a candidate geometry shares at least one point with
// an areal geometry. Touching the boundary counts.
func Intersects(g orb.Geometry, area orb.Geometry) bool {
	if IsEmpty(g) || IsEmpty(area) {
		return false
	}
	if !g.Bound().Intersects(area.Bound()) {
		return false
	}

	for _, polygon := range Polygons(area) {
		if intersectsPolygon(g, polygon) {
			return true
		}
	}

	return false
}

func intersectsPolygon(g orb.Geometry, polygon orb.Polygon) bool {
	switch geometry := g.(type) {
	case orb.Point:
		return polygonContains(polygon, geometry)
	case orb.MultiPoint:
		for _, p := range geometry {
			if polygonContains(polygon, p) {
				return true
			}
		}
	case orb.LineString:
		return lineIntersectsPolygon(geometry, polygon)
	case orb.MultiLineString:
		for _, line := range geometry {
			if lineIntersectsPolygon(line, polygon) {
				return true
			}
		}
	case orb.Ring:
		return lineIntersectsPolygon(orb.LineString(geometry), polygon) ||
			len(polygon[0]) > 0 && planar.RingContains(geometry, polygon[0][0])
	case orb.Polygon:
		if len(geometry) == 0 {
			return false
		}
		return intersectsPolygon(geometry[0], polygon)
	case orb.MultiPolygon:
		for _, part := range geometry {
			if intersectsPolygon(part, polygon) {
				return true
			}
		}
	case orb.Collection:
		for _, part := range geometry {
			if intersectsPolygon(part, polygon) {
				return true
			}
		}
	}

	return false
}

func polygonContains(polygon orb.Polygon, p orb.Point) bool {
	if len(polygon) == 0 {
		return false
	}

	// Holes exclude their interior but not their boundary
	if !planar.RingContains(polygon[0], p) {
		return onRing(polygon[0], p)
	}
	for _, hole := range polygon[1:] {
		if planar.RingContains(hole, p) && !onRing(hole, p) {
			return false
		}
	}

	return true
}

func lineIntersectsPolygon(line orb.LineString, polygon orb.Polygon) bool {
	for _, p := range line {
		if polygonContains(polygon, p) {
			return true
		}
	}

	for i := 1; i < len(line); i++ {
		for _, ring := range polygon {
			for j := 1; j < len(ring); j++ {
				if segmentsIntersect(line[i-1], line[i], ring[j-1], ring[j]) {
					return true
				}
			}
		}
	}

	return false
}

func onRing(ring orb.Ring, p orb.Point) bool {
	for i := 1; i < len(ring); i++ {
		if orientation(ring[i-1], ring[i], p) == 0 && onSegment(ring[i-1], ring[i], p) {
			return true
		}
	}

	return false
}

func orientation(a orb.Point, b orb.Point, c orb.Point) int {
	value := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
	switch {
	case math.Abs(value) < 1e-18:
		return 0
	case value > 0:
		return 1
	}

	return -1
}

func onSegment(a orb.Point, b orb.Point, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}

func segmentsIntersect(p1 orb.Point, p2 orb.Point, q1 orb.Point, q2 orb.Point) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}

	return o1 == 0 && onSegment(p1, p2, q1) ||
		o2 == 0 && onSegment(p1, p2, q2) ||
		o3 == 0 && onSegment(q1, q2, p1) ||
		o4 == 0 && onSegment(q1, q2, p2)
}

// DistanceToLine is the planar distance from a point to the closest part of a
// line geometry, in the geometry's own units.
func DistanceToLine(g orb.Geometry, p orb.Point) float64 {
	distance := math.Inf(1)
	for _, line := range Lines(g) {
		if len(line) == 1 {
			distance = math.Min(distance, planar.Distance(line[0], p))
			continue
		}
		for i := 1; i < len(line); i++ {
			distance = math.Min(distance, planar.DistanceFromSegment(line[i-1], line[i], p))
		}
	}

	return distance
}
