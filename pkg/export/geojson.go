package export

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/travigo/transitrecon/pkg/geo"
	"github.com/travigo/transitrecon/pkg/network"
	"github.com/twpayne/go-polyline"
)

// EncodePolyline encodes each part of a line geometry as a Google encoded
// polyline
func EncodePolyline(g orb.Geometry) []string {
	var encoded []string
	for _, line := range geo.Lines(g) {
		coords := make([][]float64, 0, len(line))
		for _, p := range line {
			coords = append(coords, []float64{p.Lat(), p.Lon()})
		}
		encoded = append(encoded, string(polyline.EncodeCoords(coords)))
	}

	return encoded
}

// RoutesFeatureCollection has one feature per route with a geometry. Routes
// without one are left out of the map layer.
func RoutesFeatureCollection(routes []*network.Route) *geojson.FeatureCollection {
	collection := geojson.NewFeatureCollection()

	for _, route := range routes {
		if !route.HasGeometry() {
			continue
		}

		feature := geojson.NewFeature(route.Geometry)
		feature.ID = route.ID
		feature.Properties["route_id"] = route.ID
		feature.Properties["color"] = route.Color
		feature.Properties["length_km"] = geo.LengthKM(route.Geometry)
		feature.Properties["polyline"] = EncodePolyline(route.Geometry)
		if centroid, ok := geo.Centroid(route.Geometry); ok {
			feature.Properties["centroid"] = []float64{centroid.Lon(), centroid.Lat()}
		}

		collection.Append(feature)
	}

	return collection
}

// StopsFeatureCollection has one point feature per resolved stop
func StopsFeatureCollection(stops []*network.Stop) *geojson.FeatureCollection {
	collection := geojson.NewFeatureCollection()

	for _, stop := range stops {
		if !stop.Resolved() {
			continue
		}

		feature := geojson.NewFeature(*stop.Coordinates)
		feature.ID = stop.ID
		feature.Properties["stop_id"] = stop.ID
		feature.Properties["name"] = stop.Name
		feature.Properties["osm_id"] = stop.CanonicalID
		feature.Properties["lines"] = stop.Lines

		collection.Append(feature)
	}

	return collection
}
