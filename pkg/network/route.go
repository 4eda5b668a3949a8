package network

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/travigo/transitrecon/pkg/diagnostics"
	"github.com/travigo/transitrecon/pkg/geo"
	"github.com/travigo/transitrecon/pkg/identifier"
	"github.com/travigo/transitrecon/pkg/segments"
	"github.com/travigo/transitrecon/pkg/util"
)

const DefaultRouteColor = "0,0,255"

type Route struct {
	ID    string
	Color string

	Edges          []string
	CanonicalEdges []string
	StopRefs       []StopRef
	Stops          []*Stop

	// orb.LineString when the matched segments form one path, otherwise an
	// orb.MultiLineString (empty when nothing matched)
	Geometry orb.Geometry

	MatchedSegments []string

	// canonical ids with no segment behind them
	UnmatchedEdges []string

	// raw references that normalize to no identifier at all
	AbsentEdges []string
}

func (r *Route) HasGeometry() bool {
	return !geo.IsEmpty(r.Geometry)
}

// Parts is the number of disjoint pieces of the merged geometry
func (r *Route) Parts() int {
	return len(geo.Lines(r.Geometry))
}

type Reconstructor struct {
	Segments     segments.SegmentLookup
	Normalizer   *identifier.Normalizer
	DefaultColor string
}

// MergeInputs normalizes a route's edge references, drops consecutive repeats
// and resolves what is left. Geometries come back in edge order. Raw references
// without an identifier are returned in absent, canonical ids without a
// segment in unmatched.
func (r *Reconstructor) MergeInputs(edges []string) (canonical []string, matched []*segments.RoadSegment, unmatched []string, absent []string) {
	normalized := make([]string, 0, len(edges))
	for _, edge := range edges {
		id, ok := r.Normalizer.Normalize(edge)
		if !ok {
			absent = append(absent, edge)
			continue
		}
		normalized = append(normalized, id)
	}

	canonical = util.DedupeConsecutive(normalized)
	for _, id := range canonical {
		segment, found := r.Segments.Lookup(id)
		if !found || geo.IsEmpty(segment.Geometry) {
			unmatched = append(unmatched, id)
			continue
		}
		matched = append(matched, segment)
	}

	return canonical, matched, unmatched, absent
}

// Reconstruct builds a Route from its SUMO definition. Routes that match no
// segment are still returned, with an empty geometry.
func (r *Reconstructor) Reconstruct(definition *RouteDefinition) (*Route, diagnostics.List) {
	var issues diagnostics.List

	route := &Route{
		ID:       definition.ID,
		Color:    strings.TrimSpace(definition.Color),
		Edges:    definition.EdgeList(),
		StopRefs: definition.Stops,
	}
	if route.Color == "" {
		route.Color = r.DefaultColor
		if route.Color == "" {
			route.Color = DefaultRouteColor
		}
	}

	canonical, matched, unmatched, absent := r.MergeInputs(route.Edges)
	route.CanonicalEdges = canonical
	route.UnmatchedEdges = unmatched
	route.AbsentEdges = absent

	var lines []orb.LineString
	for _, segment := range matched {
		route.MatchedSegments = append(route.MatchedSegments, segment.CanonicalID)
		lines = append(lines, geo.Lines(segment.Geometry)...)
	}
	route.Geometry = geo.LineMerge(lines)

	for _, edge := range absent {
		issues = append(issues, diagnostics.Diagnostic{
			Stage:   "routes",
			Kind:    diagnostics.KindUnresolved,
			Entity:  route.ID,
			Message: fmt.Sprintf("edge reference %q has no identifier", edge),
		})
	}
	for _, edge := range unmatched {
		issues = append(issues, diagnostics.Diagnostic{
			Stage:   "routes",
			Kind:    diagnostics.KindUnresolved,
			Entity:  route.ID,
			Message: fmt.Sprintf("edge %q has no matching segment", edge),
		})
	}
	if len(matched) == 0 {
		issues = append(issues, diagnostics.Diagnostic{
			Stage:   "routes",
			Kind:    diagnostics.KindUnresolved,
			Entity:  route.ID,
			Message: "no geometry available",
		})
	}

	return route, issues
}

// ReconstructAll keeps the definition order
func (r *Reconstructor) ReconstructAll(definitions []*RouteDefinition) ([]*Route, diagnostics.List) {
	var issues diagnostics.List

	routes := make([]*Route, 0, len(definitions))
	for _, definition := range definitions {
		route, routeIssues := r.Reconstruct(definition)
		routes = append(routes, route)
		issues.Append(routeIssues)
	}

	return routes, issues
}
