package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCRS(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected CRS
	}{
		{"epsg prefix", "EPSG:4326", WGS84},
		{"lower case", "epsg:3857", WebMercator},
		{"ogc urn", "urn:ogc:def:crs:EPSG::32738", CRS{EPSG: 32738, Kind: KindUTM, Zone: 38, South: true}},
		{"crs84", "urn:ogc:def:crs:OGC:1.3:CRS84", WGS84},
		{"bare code", "32631", CRS{EPSG: 32631, Kind: KindUTM, Zone: 31}},
		{"national grid", "EPSG:27700", OSGB36},
		{"legacy google", "EPSG:900913", WebMercator},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			crs, err := ParseCRS(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.expected, crs)
		})
	}
}

func TestParseCRSUnsupported(t *testing.T) {
	for _, input := range []string{"", "EPSG:2154", "EPSG:32600", "EPSG:32761", "ESRI:102100", "not a crs"} {
		_, err := ParseCRS(input)
		assert.True(t, errors.Is(err, ErrUnsupportedCRS), input)
	}
}

func TestUTMCentralMeridian(t *testing.T) {
	utm38s, err := FromEPSG(32738)
	require.NoError(t, err)

	p, err := ReprojectPoint(orb.Point{500000, 10000000}, utm38s, WGS84)
	require.NoError(t, err)

	assert.InDelta(t, 45.0, p[0], 1e-9)
	assert.InDelta(t, 0.0, p[1], 1e-9)
}

func TestUTMKnownPoint(t *testing.T) {
	// Antananarivo, Lac Anosy
	utm38s, err := FromEPSG(32738)
	require.NoError(t, err)

	p, err := ReprojectPoint(orb.Point{47.5236, -18.9149}, WGS84, utm38s)
	require.NoError(t, err)

	assert.InDelta(t, 765811.708, p[0], 0.01)
	assert.InDelta(t, 7906690.158, p[1], 0.01)
}

func TestReprojectRoundTrip(t *testing.T) {
	utm38s, _ := FromEPSG(32738)
	utm31n, _ := FromEPSG(32631)

	tests := []struct {
		name  string
		crs   CRS
		point orb.Point
	}{
		{"utm south", utm38s, orb.Point{47.5236, -18.9149}},
		{"utm south zone edge", utm38s, orb.Point{47.9, -25.0}},
		{"utm north", utm31n, orb.Point{2.3522, 48.8566}},
		{"mercator", WebMercator, orb.Point{47.5236, -18.9149}},
		{"mercator high latitude", WebMercator, orb.Point{-21.94, 64.14}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			line := orb.LineString{test.point, {test.point[0] + 0.01, test.point[1] + 0.01}}

			projected, err := Reproject(line, WGS84, test.crs)
			require.NoError(t, err)

			back, err := Reproject(projected, test.crs, WGS84)
			require.NoError(t, err)

			for i, p := range back.(orb.LineString) {
				assert.InDelta(t, line[i][0], p[0], 1e-7)
				assert.InDelta(t, line[i][1], p[1], 1e-7)
			}
		})
	}
}

func TestReprojectLeavesInputUntouched(t *testing.T) {
	line := orb.LineString{{47.5, -18.9}, {47.6, -18.8}}

	_, err := Reproject(line, WGS84, WebMercator)
	require.NoError(t, err)

	assert.Equal(t, orb.LineString{{47.5, -18.9}, {47.6, -18.8}}, line)
}

func TestReprojectIntoNationalGridUnsupported(t *testing.T) {
	_, err := Reproject(orb.Point{-1, 52}, WGS84, OSGB36)
	assert.ErrorIs(t, err, ErrUnsupportedCRS)
}

func TestReprojectFromNationalGrid(t *testing.T) {
	// Trafalgar Square
	p, err := ReprojectPoint(orb.Point{530000, 180400}, OSGB36, WGS84)
	require.NoError(t, err)
	assert.InDelta(t, -0.127, p.Lon(), 0.01)
	assert.InDelta(t, 51.508, p.Lat(), 0.01)

	tests := []struct {
		name string
		g    orb.Geometry
	}{
		{"negative", orb.Point{-5000, -5000}},
		{"beyond the grid", orb.Point{900000, 1400000}},
		{"easting at the edge", orb.Point{700000, 180000}},
		{"one vertex off the grid", orb.LineString{{530000, 180400}, {530000, -10}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			projected, err := Reproject(test.g, OSGB36, WGS84)
			assert.ErrorIs(t, err, ErrUnsupportedCRS)
			assert.Nil(t, projected)
		})
	}
}

func TestLineMerge(t *testing.T) {
	a := orb.LineString{{0, 0}, {1, 0}}
	b := orb.LineString{{1, 0}, {2, 0}}
	bReversed := orb.LineString{{2, 0}, {1, 0}}
	c := orb.LineString{{5, 5}, {6, 5}}

	t.Run("continuous", func(t *testing.T) {
		merged := LineMerge([]orb.LineString{a, b})
		assert.Equal(t, orb.LineString{{0, 0}, {1, 0}, {2, 0}}, merged)
	})

	t.Run("reversed part", func(t *testing.T) {
		merged := LineMerge([]orb.LineString{a, bReversed})
		assert.Equal(t, orb.LineString{{0, 0}, {1, 0}, {2, 0}}, merged)
	})

	t.Run("out of order", func(t *testing.T) {
		merged := LineMerge([]orb.LineString{b, a})
		assert.Equal(t, orb.LineString{{0, 0}, {1, 0}, {2, 0}}, merged)
	})

	t.Run("disjoint", func(t *testing.T) {
		merged := LineMerge([]orb.LineString{a, c, b})
		require.IsType(t, orb.MultiLineString{}, merged)

		parts := merged.(orb.MultiLineString)
		require.Len(t, parts, 2)
		assert.Equal(t, orb.LineString{{0, 0}, {1, 0}, {2, 0}}, parts[0])
		assert.Equal(t, c, parts[1])
	})

	t.Run("empty", func(t *testing.T) {
		merged := LineMerge(nil)
		assert.True(t, IsEmpty(merged))
	})

	t.Run("inputs untouched", func(t *testing.T) {
		LineMerge([]orb.LineString{a, bReversed})
		assert.Equal(t, orb.LineString{{2, 0}, {1, 0}}, bReversed)
	})
}

func TestFirstPoint(t *testing.T) {
	p, ok := FirstPoint(orb.MultiLineString{{{3, 4}, {5, 6}}, {{7, 8}, {9, 10}}})
	require.True(t, ok)
	assert.Equal(t, orb.Point{3, 4}, p)

	p, ok = FirstPoint(orb.LineString{{1, 2}, {3, 4}})
	require.True(t, ok)
	assert.Equal(t, orb.Point{1, 2}, p)

	p, ok = FirstPoint(orb.Collection{orb.LineString{{1, 2}, {3, 4}}, orb.LineString{{5, 6}, {7, 8}}})
	require.True(t, ok)
	assert.Equal(t, orb.Point{1, 2}, p)

	p, ok = FirstPoint(orb.Collection{orb.LineString{}, orb.MultiLineString{{{9, 9}, {8, 8}}}})
	require.True(t, ok)
	assert.Equal(t, orb.Point{9, 9}, p)

	_, ok = FirstPoint(orb.MultiLineString{})
	assert.False(t, ok)

	_, ok = FirstPoint(orb.Collection{})
	assert.False(t, ok)
}

func TestIntersects(t *testing.T) {
	square := orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}}
	withHole := orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	}

	tests := []struct {
		name     string
		g        orb.Geometry
		area     orb.Geometry
		expected bool
	}{
		{"point inside", orb.Point{5, 5}, square, true},
		{"point outside", orb.Point{15, 5}, square, false},
		{"point on edge", orb.Point{10, 5}, square, true},
		{"point in hole", orb.Point{5, 5}, withHole, false},
		{"point on hole edge", orb.Point{4, 5}, withHole, true},
		{"line inside", orb.LineString{{1, 1}, {2, 2}}, square, true},
		{"line crossing", orb.LineString{{-5, 5}, {15, 5}}, square, true},
		{"line outside", orb.LineString{{11, 11}, {20, 20}}, square, false},
		{"line touching corner", orb.LineString{{10, 10}, {20, 20}}, square, true},
		{"line bbox overlap only", orb.LineString{{-1, 9}, {1, 11.5}}, orb.Polygon{{{0, 0}, {10, 0}, {0, 10}, {0, 0}}}, false},
		{"multiline one part inside", orb.MultiLineString{{{20, 20}, {30, 30}}, {{1, 1}, {2, 1}}}, square, true},
		{"multipolygon zone", orb.Point{25, 25}, orb.MultiPolygon{square, {{{20, 20}, {30, 20}, {30, 30}, {20, 30}, {20, 20}}}}, true},
		{"empty area", orb.Point{1, 1}, orb.MultiPolygon{}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Intersects(test.g, test.area))
		})
	}
}

func TestCentroidAndLength(t *testing.T) {
	line := orb.LineString{{47.50, -18.90}, {47.52, -18.90}}

	centroid, ok := Centroid(line)
	require.True(t, ok)
	assert.InDelta(t, 47.51, centroid[0], 1e-9)
	assert.InDelta(t, -18.90, centroid[1], 1e-9)

	// 0.02 degrees of longitude at 18.9S
	expected := 0.02 * math.Pi / 180 * 6378.137 * math.Cos(18.9*math.Pi/180)
	assert.InDelta(t, expected, LengthKM(line), 0.01)

	_, ok = Centroid(orb.MultiLineString{})
	assert.False(t, ok)
}

func TestDistanceToLine(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}

	assert.InDelta(t, 2.0, DistanceToLine(line, orb.Point{5, 2}), 1e-12)
	assert.InDelta(t, 5.0, DistanceToLine(line, orb.Point{13, 4}), 1e-12)
	assert.True(t, math.IsInf(DistanceToLine(orb.MultiLineString{}, orb.Point{0, 0}), 1))
}

func TestDecodeFeatureCollection(t *testing.T) {
	plain := []byte(`{"type": "FeatureCollection", "features": [
  {"type": "Feature", "properties": {"osm_id": 45}, "geometry": {"type": "LineString", "coordinates": [[47.5, -18.9], [47.51, -18.91]]}}
]}`)

	collection, crs, err := DecodeFeatureCollection(plain, WebMercator)
	require.NoError(t, err)
	assert.Equal(t, WebMercator, crs)
	assert.Len(t, collection.Features, 1)

	declared := []byte(`{"type": "FeatureCollection", "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::3857"}}, "features": []}`)
	_, crs, err = DecodeFeatureCollection(declared, WGS84)
	require.NoError(t, err)
	assert.Equal(t, WebMercator, crs)

	unknown := []byte(`{"type": "FeatureCollection", "crs": {"type": "name", "properties": {"name": "EPSG:2154"}}, "features": []}`)
	_, _, err = DecodeFeatureCollection(unknown, WGS84)
	assert.ErrorIs(t, err, ErrUnsupportedCRS)

	_, _, err = DecodeFeatureCollection([]byte(`{"type":`), WGS84)
	assert.Error(t, err)
}
