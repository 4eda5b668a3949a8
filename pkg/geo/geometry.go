package geo

import "github.com/paulmach/orb"

// Lines flattens a line or multi-line geometry into its parts. Other geometry
// types give nil.
func Lines(g orb.Geometry) []orb.LineString {
	switch geometry := g.(type) {
	case orb.LineString:
		if len(geometry) == 0 {
			return nil
		}
		return []orb.LineString{geometry}
	case orb.MultiLineString:
		var lines []orb.LineString
		for _, line := range geometry {
			if len(line) > 0 {
				lines = append(lines, line)
			}
		}
		return lines
	case orb.Collection:
		var lines []orb.LineString
		for _, part := range geometry {
			lines = append(lines, Lines(part)...)
		}
		return lines
	}

	return nil
}

func IsLinear(g orb.Geometry) bool {
	switch geometry := g.(type) {
	case orb.LineString, orb.MultiLineString:
		return true
	case orb.Collection:
		for _, part := range geometry {
			if !IsLinear(part) {
				return false
			}
		}
		return len(geometry) > 0
	}

	return false
}

func IsEmpty(g orb.Geometry) bool {
	switch geometry := g.(type) {
	case nil:
		return true
	case orb.Point:
		return false
	case orb.MultiPoint:
		return len(geometry) == 0
	case orb.LineString:
		return len(geometry) == 0
	case orb.MultiLineString:
		return len(Lines(geometry)) == 0
	case orb.Ring:
		return len(geometry) == 0
	case orb.Polygon:
		return len(geometry) == 0 || len(geometry[0]) == 0
	case orb.MultiPolygon:
		for _, polygon := range geometry {
			if !IsEmpty(polygon) {
				return false
			}
		}
		return true
	case orb.Collection:
		for _, part := range geometry {
			if !IsEmpty(part) {
				return false
			}
		}
		return true
	}

	return false
}

// FirstPoint is the first coordinate of a geometry; for multi-part lines and
// line collections the first point of the first non-empty part.
func FirstPoint(g orb.Geometry) (orb.Point, bool) {
	switch geometry := g.(type) {
	case orb.Point:
		return geometry, true
	case orb.MultiPoint:
		if len(geometry) > 0 {
			return geometry[0], true
		}
	case orb.LineString:
		if len(geometry) > 0 {
			return geometry[0], true
		}
	case orb.MultiLineString, orb.Collection:
		lines := Lines(geometry)
		if len(lines) > 0 {
			return lines[0][0], true
		}
	case orb.Polygon:
		if len(geometry) > 0 && len(geometry[0]) > 0 {
			return geometry[0][0], true
		}
	}

	return orb.Point{}, false
}
