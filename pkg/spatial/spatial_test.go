package spatial

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/transitrecon/pkg/network"
	"github.com/travigo/transitrecon/pkg/segments"
)

const zonesFile = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"ENSEMBLE_1": "Analamanga Nord", "zonage int": "Commune urbaine"},
     "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]}},
    {"type": "Feature", "properties": {"ensemble_1": "Analamanga Est", "zonage int": "Commune avoisinante"},
     "geometry": {"type": "Polygon", "coordinates": [[[10, 0], [20, 0], [20, 10], [10, 10], [10, 0]]]}},
    {"type": "Feature", "properties": {"ensemble_1": "Lointaine", "zonage int": "Commune avoisinante"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[50, 50], [60, 50], [60, 60], [50, 60], [50, 50]]]]}},
    {"type": "Feature", "properties": {"ensemble_1": "Point"},
     "geometry": {"type": "Point", "coordinates": [1, 1]}}
  ]
}`

func writeZones(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "zones.geojson")
	require.NoError(t, os.WriteFile(path, []byte(zonesFile), 0o644))

	return path
}

func loadIndex(t *testing.T) *Index {
	t.Helper()

	zones, issues, err := LoadZones(writeZones(t), ZoneOptions{})
	require.NoError(t, err)
	require.Len(t, zones, 3)
	assert.Len(t, issues, 1)

	return NewIndex(zones)
}

func rows() []*segments.RoadSegment {
	return []*segments.RoadSegment{
		{CanonicalID: "1", LineLabel: "119", Geometry: orb.LineString{{1, 1}, {2, 2}}},
		{CanonicalID: "2", LineLabel: "147", Geometry: orb.LineString{{5, 5}, {15, 5}}},
		{CanonicalID: "3", LineLabel: "119", Geometry: orb.LineString{{3, 3}, {4, 4}}},
		{CanonicalID: "4", Geometry: orb.LineString{{12, 1}, {13, 1}}},
		{CanonicalID: "5", LineLabel: "900", Geometry: orb.LineString{{30, 30}, {31, 31}}},
	}
}

func TestLoadZones(t *testing.T) {
	zones, _, err := LoadZones(writeZones(t), ZoneOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Analamanga Nord", zones[0].Name)
	assert.Equal(t, "Commune urbaine", zones[0].Attributes["zonage int"])
	assert.Equal(t, 2, zones[2].Index)
}

func TestLoadZonesFilter(t *testing.T) {
	zones, _, err := LoadZones(writeZones(t), ZoneOptions{Filter: `zonage_int == "Commune avoisinante"`})
	require.NoError(t, err)

	require.Len(t, zones, 2)
	assert.Equal(t, "Analamanga Est", zones[0].Name)
	assert.Equal(t, 0, zones[0].Index)
	assert.Equal(t, "Lointaine", zones[1].Name)
}

func TestLoadZonesBadFilter(t *testing.T) {
	_, _, err := LoadZones(writeZones(t), ZoneOptions{Filter: `zonage_int ==`})
	assert.Error(t, err)
}

func TestZoneOfTakesFirstZone(t *testing.T) {
	index := loadIndex(t)

	zone, ok := index.ZoneOf(orb.Point{10, 5})
	require.True(t, ok)
	assert.Equal(t, "Analamanga Nord", zone.Name)

	zone, ok = index.ZoneOf(orb.Point{15, 5})
	require.True(t, ok)
	assert.Equal(t, "Analamanga Est", zone.Name)

	_, ok = index.ZoneOf(orb.Point{30, 30})
	assert.False(t, ok)
}

func TestLineLabelsInZone(t *testing.T) {
	index := loadIndex(t)

	assert.Equal(t, []string{"119", "147"}, index.LineLabelsInZone(rows(), "Analamanga Nord"))
	assert.Equal(t, []string{"147"}, index.LineLabelsInZone(rows(), "Analamanga Est"))
	assert.Empty(t, index.LineLabelsInZone(rows(), "Lointaine"))
}

func TestCountLineLabels(t *testing.T) {
	index := loadIndex(t)

	assert.Equal(t, []ZoneCount{
		{Zone: "Analamanga Nord", Lines: 2},
		{Zone: "Analamanga Est", Lines: 1},
		{Zone: "Lointaine", Lines: 0},
	}, index.CountLineLabels(rows()))
	assert.Equal(t, []string{"Analamanga Nord", "Analamanga Est"}, index.ZonesWithLines(rows()))
}

func TestJoinIsSymmetricOverCandidates(t *testing.T) {
	index := loadIndex(t)

	candidates := geometries(rows())
	all := index.Join(candidates)

	var union []Pair
	for position, candidate := range candidates {
		for _, pair := range index.Join([]orb.Geometry{candidate}) {
			pair.Candidate = position
			union = append(union, pair)
		}
	}

	assert.Equal(t, union, all)
	assert.Len(t, all, 5)
}

func TestZeroZones(t *testing.T) {
	index := NewIndex(nil)

	assert.Empty(t, index.Join(geometries(rows())))
	assert.Empty(t, index.CountLineLabels(rows()))
	assert.Empty(t, index.ZonesWithLines(rows()))
	_, ok := index.ZoneOf(orb.Point{1, 1})
	assert.False(t, ok)
}

func TestStopsNear(t *testing.T) {
	point := func(lon, lat float64) *orb.Point {
		p := orb.Point{lon, lat}
		return &p
	}

	stops := []*network.Stop{
		{ID: "on", Coordinates: point(47.505, -18.9)},
		{ID: "close", Coordinates: point(47.505, -18.905)},
		{ID: "far", Coordinates: point(47.505, -18.95)},
		{ID: "unresolved"},
	}
	route := orb.LineString{{47.50, -18.90}, {47.51, -18.90}}

	near := StopsNear(route, stops, 0)
	require.Len(t, near, 2)
	assert.Equal(t, "on", near[0].ID)
	assert.Equal(t, "close", near[1].ID)

	assert.Empty(t, StopsNear(orb.MultiLineString{}, stops, 0))
}
