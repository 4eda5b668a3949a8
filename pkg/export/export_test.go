package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/transitrecon/pkg/network"
)

func point(lon, lat float64) *orb.Point {
	p := orb.Point{lon, lat}
	return &p
}

func testRoutes() []*network.Route {
	return []*network.Route{
		{
			ID:              "L119",
			Color:           "255,0,0",
			CanonicalEdges:  []string{"45", "46"},
			MatchedSegments: []string{"45", "46"},
			Geometry:        orb.LineString{{47.5012345678, -18.9087654321}, {47.51, -18.90}, {47.52, -18.91}},
			StopRefs:        []network.StopRef{{BusStop: "bs_1"}, {BusStop: "bs_2"}, {BusStop: "bs_x"}},
			Stops: []*network.Stop{
				{ID: "bs_1", Name: "Analakely", CanonicalID: "45", Lines: "119 147", Coordinates: point(47.5012345678, -18.9087654321)},
				{ID: "bs_2", Name: "Ambohijatovo", Lane: "None"},
				{ID: "bs_x", Placeholder: true},
			},
		},
		{
			ID:             "L147",
			Color:          network.DefaultRouteColor,
			Geometry:       orb.MultiLineString{},
			UnmatchedEdges: []string{"900"},
			AbsentEdges:    []string{"#0"},
		},
	}
}

func TestWriteXML(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, WriteXML(&buffer, testRoutes(), Options{}))

	output := buffer.String()
	assert.True(t, strings.HasPrefix(output, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, output, "<busRoutes>\n    <route id=\"L119\" color=\"255,0,0\">\n        <stop ")
	assert.Contains(t, output, `<stop name="Ambohijatovo" osm_id="None" coordinates="None" lines="None"></stop>`)
	assert.Contains(t, output, `<route id="L147" color="0,0,255"></route>`)
}

func TestXMLRoundTrip(t *testing.T) {
	routes := testRoutes()

	var buffer bytes.Buffer
	require.NoError(t, WriteXML(&buffer, routes, Options{}))

	document, err := ReadXML(&buffer)
	require.NoError(t, err)
	require.Len(t, document.Routes, 2)

	stops := document.Routes[0].Stops
	require.Len(t, stops, len(routes[0].StopRefs))

	coordinates, err := ParseCoordinates(stops[0].Coordinates)
	require.NoError(t, err)
	assert.InDelta(t, routes[0].Stops[0].Coordinates.Lon(), coordinates.Lon(), 1e-6)
	assert.InDelta(t, routes[0].Stops[0].Coordinates.Lat(), coordinates.Lat(), 1e-6)

	assert.Equal(t, "45", stops[0].OsmID)
	assert.Equal(t, "None", stops[2].Name)

	_, err = ParseCoordinates(stops[1].Coordinates)
	assert.ErrorIs(t, err, ErrNoCoordinates)
}

func TestCustomSentinel(t *testing.T) {
	document := NewBusRoutes(testRoutes(), Options{Sentinel: "n/a"})
	assert.Equal(t, "n/a", document.Routes[0].Stops[1].Coordinates)
}

func TestParseCoordinates(t *testing.T) {
	p, err := ParseCoordinates(" 47.5, -18.9 ")
	require.NoError(t, err)
	assert.Equal(t, orb.Point{47.5, -18.9}, p)

	_, err = ParseCoordinates("47.5")
	assert.ErrorIs(t, err, ErrNoCoordinates)

	_, err = ParseCoordinates("east, -18.9")
	assert.Error(t, err)
}

func TestMarshalJSONGroups(t *testing.T) {
	summary, err := MarshalJSON(testRoutes())
	require.NoError(t, err)

	var views []map[string]interface{}
	require.NoError(t, json.Unmarshal(summary, &views))
	require.Len(t, views, 2)
	assert.Equal(t, "L119", views[0]["id"])
	assert.Equal(t, 3.0, views[0]["stop_count"])
	assert.NotContains(t, views[0], "stops")
	assert.NotContains(t, views[0], "geometry")

	detailed, err := MarshalJSON(testRoutes(), GroupSummary, GroupDetailed)
	require.NoError(t, err)

	views = nil
	require.NoError(t, json.Unmarshal(detailed, &views))
	assert.Contains(t, views[0], "stops")
	assert.Len(t, views[0]["stops"], 3)
	assert.Contains(t, views[0], "geometry")
	assert.Equal(t, []interface{}{"900"}, views[1]["unmatched_edges"])
	assert.Equal(t, []interface{}{"#0"}, views[1]["absent_edges"])
}

func TestRoutesFeatureCollection(t *testing.T) {
	collection := RoutesFeatureCollection(testRoutes())
	require.Len(t, collection.Features, 1)

	feature := collection.Features[0]
	assert.Equal(t, "L119", feature.Properties["route_id"])
	assert.Greater(t, feature.Properties["length_km"].(float64), 0.0)
	assert.Len(t, feature.Properties["polyline"], 1)
	assert.Len(t, feature.Properties["centroid"], 2)

	data, err := collection.MarshalJSON()
	require.NoError(t, err)

	decoded, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, decoded.Features, 1)
}

func TestEncodePolyline(t *testing.T) {
	// reference polyline from the encoding documentation
	encoded := EncodePolyline(orb.LineString{{-120.2, 38.5}, {-120.95, 40.7}, {-126.453, 43.252}})
	assert.Equal(t, []string{"_p~iF~ps|U_ulLnnqC_mqNvxq`@"}, encoded)
}

func TestStopsFeatureCollection(t *testing.T) {
	collection := StopsFeatureCollection(testRoutes()[0].Stops)
	require.Len(t, collection.Features, 1)
	assert.Equal(t, "bs_1", collection.Features[0].Properties["stop_id"])
}
