package geo

import (
	"fmt"
	"math"

	"github.com/paulcager/osgridref"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
)

// National Grid extent in metres
const (
	gridMaxEasting  = 700000
	gridMaxNorthing = 1300000
)

// gridToWGS84 converts National Grid coordinates through osgridref. The first
// conversion failure is kept in err since orb projections cannot fail.
type gridToWGS84 struct {
	err error
}

// Grid references resolve to the metre
func (g *gridToWGS84) project(p orb.Point) orb.Point {
	if g.err != nil {
		return p
	}

	gridRef, err := osgridref.ParseOsGridRef(fmt.Sprintf("%d,%d", int(math.Round(p[0])), int(math.Round(p[1]))))
	if err != nil {
		g.err = fmt.Errorf("%w: grid reference %v: %v", ErrUnsupportedCRS, p, err)
		return p
	}

	lat, lon := gridRef.ToLatLon()
	return orb.Point{lon, lat}
}

func insideGrid(p orb.Point) bool {
	return p[0] >= 0 && p[0] < gridMaxEasting && p[1] >= 0 && p[1] < gridMaxNorthing
}

// outsideGrid returns the first coordinate of g lying off the National Grid
func outsideGrid(g orb.Geometry) (orb.Point, bool) {
	var outside *orb.Point
	project.Geometry(orb.Clone(g), func(p orb.Point) orb.Point {
		if outside == nil && !insideGrid(p) {
			found := p
			outside = &found
		}
		return p
	})

	if outside == nil {
		return orb.Point{}, false
	}
	return *outside, true
}

func toWGS84(from CRS) (orb.Projection, *gridToWGS84, error) {
	switch from.Kind {
	case KindGeographic:
		return nil, nil, nil
	case KindWebMercator:
		return project.Mercator.ToWGS84, nil, nil
	case KindUTM:
		return utmToWGS84(from.Zone, from.South), nil, nil
	case KindBritishNationalGrid:
		grid := &gridToWGS84{}
		return grid.project, grid, nil
	}

	return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedCRS, from)
}

func fromWGS84(to CRS) (orb.Projection, error) {
	switch to.Kind {
	case KindGeographic:
		return nil, nil
	case KindWebMercator:
		return project.WGS84.ToMercator, nil
	case KindUTM:
		return wgs84ToUTM(to.Zone, to.South), nil
	}

	return nil, fmt.Errorf("%w: cannot project into %s", ErrUnsupportedCRS, to)
}

// Reproject returns a copy of g moved from one coordinate system to another.
// Coordinates are not rounded and the input geometry is left untouched. National
// Grid coordinates off the grid are an ErrUnsupportedCRS error.
func Reproject(g orb.Geometry, from CRS, to CRS) (orb.Geometry, error) {
	if g == nil {
		return nil, nil
	}
	if from.EPSG == to.EPSG {
		return orb.Clone(g), nil
	}

	if from.Kind == KindBritishNationalGrid {
		if p, outside := outsideGrid(g); outside {
			return nil, fmt.Errorf("%w: %v lies outside the national grid", ErrUnsupportedCRS, p)
		}
	}

	inverse, grid, err := toWGS84(from)
	if err != nil {
		return nil, err
	}
	forward, err := fromWGS84(to)
	if err != nil {
		return nil, err
	}

	out := orb.Clone(g)
	if inverse != nil {
		out = project.Geometry(out, inverse)
	}
	if grid != nil && grid.err != nil {
		return nil, grid.err
	}
	if forward != nil {
		out = project.Geometry(out, forward)
	}

	return out, nil
}

// ReprojectPoint is Reproject for a single coordinate
func ReprojectPoint(p orb.Point, from CRS, to CRS) (orb.Point, error) {
	g, err := Reproject(p, from, to)
	if err != nil {
		return orb.Point{}, err
	}

	return g.(orb.Point), nil
}

// Centroid computes the planar centroid of a lon/lat geometry in web mercator
// and hands it back in lon/lat.
func Centroid(g orb.Geometry) (orb.Point, bool) {
	if IsEmpty(g) {
		return orb.Point{}, false
	}

	projected := project.Geometry(orb.Clone(g), project.WGS84.ToMercator)
	centroid, _ := planar.CentroidArea(projected)

	return project.Mercator.ToWGS84(centroid), true
}

// LengthKM is the geodesic length of a lon/lat geometry
func LengthKM(g orb.Geometry) float64 {
	if IsEmpty(g) {
		return 0
	}

	return orbgeo.Length(g) / 1000
}
