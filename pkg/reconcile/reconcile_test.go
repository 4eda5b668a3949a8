package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/transitrecon/pkg/config"
	"github.com/travigo/transitrecon/pkg/dataimporter/datasets"
	"github.com/travigo/transitrecon/pkg/diagnostics"
	"github.com/travigo/transitrecon/pkg/export"
	"github.com/travigo/transitrecon/pkg/transforms"
)

const roads = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"osm_id": 45, "fclass": "primary", "taxibe_lin": "119", "km": 1.2},
     "geometry": {"type": "LineString", "coordinates": [[47.50, -18.90], [47.51, -18.90]]}},
    {"type": "Feature", "properties": {"osm_id": 46, "fclass": "primary", "taxibe_lin": "119", "km": 0.8},
     "geometry": {"type": "LineString", "coordinates": [[47.51, -18.90], [47.52, -18.91]]}},
    {"type": "Feature", "properties": {"osm_id": 46, "fclass": "primary", "taxibe_lin": "147", "km": 0.8},
     "geometry": {"type": "LineString", "coordinates": [[47.51, -18.90], [47.52, -18.91]]}},
    {"type": "Feature", "properties": {"osm_id": 47, "fclass": "secondary", "km": 3},
     "geometry": {"type": "LineString", "coordinates": [[47.60, -18.95], [47.61, -18.96]]}}
  ]
}`

const sumo = `<?xml version="1.0" encoding="UTF-8"?>
<routes>
    <route id="L119" edges="45#0 45#1 -46#2" color="255,0,0">
        <stop busStop="bs_1" duration="20"/>
        <stop busStop="bs_2" duration="20"/>
        <stop busStop="bs_9" duration="20"/>
    </route>
    <route id="L147" edges="900#0">
        <stop busStop="bs_2" duration="20"/>
    </route>
    <busStop id="bs_1" name="Analakely" lane="45#0_0" lines="119"/>
    <busStop id="bs_2" name="Ambohijatovo" lane="None"/>
    <busStop id="bs_3" name="Anosy" lane="47_0"/>
</routes>`

const zones = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"ensemble_1": "Antananarivo Renivohitra"},
     "geometry": {"type": "Polygon", "coordinates": [[[47.45, -18.95], [47.55, -18.95], [47.55, -18.85], [47.45, -18.85], [47.45, -18.95]]]}},
    {"type": "Feature", "properties": {"ensemble_1": "Avaradrano"},
     "geometry": {"type": "Polygon", "coordinates": [[[47.58, -19.00], [47.70, -19.00], [47.70, -18.90], [47.58, -18.90], [47.58, -19.00]]]}}
  ]
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	directory := t.TempDir()
	write := func(name string, contents string) string {
		path := filepath.Join(directory, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
		return path
	}

	write("roads/a_roads.geojson", roads)
	write("roads/b_broken.geojson", `{"type":`)

	cfg := config.Default()
	cfg.Sources = []datasets.DataSet{
		{Identifier: "roads", Kind: datasets.DataSetKindSegments, Source: filepath.Join(directory, "roads")},
		{Identifier: "network", Kind: datasets.DataSetKindSUMO, Source: write("bus.rou.xml", sumo)},
		{Identifier: "broken-network", Kind: datasets.DataSetKindSUMO, Source: write("broken.rou.xml", `<routes><route id="X" edges="45"></routes>`)},
		{Identifier: "zones", Kind: datasets.DataSetKindZones, Source: write("zones.geojson", zones)},
	}
	cfg.Output.Directory = filepath.Join(directory, "output")

	return cfg
}

func TestRun(t *testing.T) {
	result, err := Run(context.Background(), testConfig(t))
	require.NoError(t, err)

	assert.Len(t, result.Segments.Rows, 4)
	assert.Equal(t, 3, result.Table.Len())

	require.Len(t, result.Routes, 2)
	route := result.Routes[0]
	assert.Equal(t, "L119", route.ID)
	assert.Equal(t, []string{"45", "46"}, route.CanonicalEdges)
	assert.Equal(t, orb.LineString{{47.50, -18.90}, {47.51, -18.90}, {47.52, -18.91}}, route.Geometry)
	require.Len(t, route.Stops, len(route.StopRefs))
	assert.True(t, route.Stops[2].Placeholder)

	assert.False(t, result.Routes[1].HasGeometry())
	assert.Equal(t, "0,0,255", result.Routes[1].Color)

	stop, found := result.Stops.Get("bs_2")
	require.True(t, found)
	assert.False(t, stop.Resolved())

	require.Len(t, result.Metrics, 2)
	assert.Equal(t, "119", result.Metrics[0].LineLabel)
	assert.InDelta(t, 2.0, result.Metrics[0].LengthKM, 1e-9)
	assert.InDelta(t, 6.0, result.Metrics[0].DurationMinutes, 1e-9)

	assert.Len(t, result.Diagnostics.OfKind(diagnostics.KindSourceRead), 2)
	assert.NotEmpty(t, result.Diagnostics.OfKind(diagnostics.KindUnresolved))
}

func TestRunQueries(t *testing.T) {
	result, err := Run(context.Background(), testConfig(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"119", "147"}, result.ZoneLines("Antananarivo Renivohitra"))
	assert.Empty(t, result.ZoneLines("Avaradrano"))
	assert.Equal(t, []string{"Antananarivo Renivohitra"}, result.ZonesWithLines())
	assert.Len(t, result.CountLines(), 2)

	zone, found, err := result.ZoneOfSegment("-47#1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Avaradrano", zone.Name)

	_, _, err = result.ZoneOfSegment("404")
	assert.ErrorIs(t, err, ErrSegmentNotFound)

	lineMetrics, err := result.SegmentMetrics("46#0")
	require.NoError(t, err)
	require.Len(t, lineMetrics, 2)
	assert.Equal(t, "119", lineMetrics[0].LineLabel)
	assert.Equal(t, "147", lineMetrics[1].LineLabel)

	near, err := result.StopsNearRoute("L119")
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "bs_1", near[0].ID)

	_, err = result.StopsNearRoute("L000")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestRunAppliesTransforms(t *testing.T) {
	cfg := testConfig(t)
	cfg.Transforms = transforms.Set{
		{Type: "Route", Match: map[string]string{"ID": "L147"}, Data: map[string]interface{}{"Color": "0,128,0"}},
		{Type: "Stop", Match: map[string]string{"ID": "bs_2"}, Data: map[string]interface{}{"Name": "Ambohijatovo Ambony"}},
	}

	result, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "0,128,0", result.Routes[1].Color)
	assert.Equal(t, "Ambohijatovo Ambony", result.Routes[1].Stops[0].Name)

	stop, _ := result.Stops.Get("bs_2")
	assert.Equal(t, "Ambohijatovo Ambony", stop.Name)
}

func TestRunWrite(t *testing.T) {
	cfg := testConfig(t)

	result, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	written, err := result.Write(cfg.Output)
	require.NoError(t, err)
	assert.Len(t, written, 5)

	file, err := os.Open(filepath.Join(cfg.Output.Directory, cfg.Output.XML))
	require.NoError(t, err)
	defer file.Close()

	document, err := export.ReadXML(file)
	require.NoError(t, err)
	require.Len(t, document.Routes, 2)
	assert.Len(t, document.Routes[0].Stops, 3)
	assert.Equal(t, "None", document.Routes[0].Stops[1].Coordinates)

	csv, err := os.ReadFile(filepath.Join(cfg.Output.Directory, cfg.Output.MetricsCSV))
	require.NoError(t, err)
	assert.Contains(t, string(csv), "line,length_km,speed_kmh,duration_minutes,segments")
}

func TestRunWithoutSources(t *testing.T) {
	result, err := Run(context.Background(), config.Default())
	require.NoError(t, err)

	assert.Empty(t, result.Routes)
	assert.Empty(t, result.Metrics)
	assert.Equal(t, 0, result.Zones.Len())
	assert.Empty(t, result.ZonesWithLines())
}

func TestRunConfigurationErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.ConflictPolicy = "keep-middle"
	_, err := Run(context.Background(), cfg)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Run(ctx, testConfig(t))
	assert.ErrorIs(t, err, context.Canceled)
}
