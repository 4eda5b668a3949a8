package reconcile

import (
	"errors"
	"fmt"

	"github.com/travigo/transitrecon/pkg/metrics"
	"github.com/travigo/transitrecon/pkg/network"
	"github.com/travigo/transitrecon/pkg/segments"
	"github.com/travigo/transitrecon/pkg/spatial"
)

var (
	ErrRouteNotFound   = errors.New("route could not be found")
	ErrSegmentNotFound = errors.New("segment could not be found")
)

func (r *Result) Route(id string) (*network.Route, error) {
	for _, route := range r.Routes {
		if route.ID == id {
			return route, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, id)
}

// Segment resolves a raw or canonical identifier through the index
func (r *Result) Segment(reference string) (*segments.RoadSegment, error) {
	canonical, ok := r.Normalizer.Normalize(reference)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSegmentNotFound, reference)
	}

	segment, found := r.Table.Lookup(canonical)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSegmentNotFound, canonical)
	}

	return segment, nil
}

// ZoneLines lists the line labels crossing a zone
func (r *Result) ZoneLines(zoneName string) []string {
	return r.Zones.LineLabelsInZone(r.Segments.Rows, zoneName)
}

// ZoneOfSegment returns the first zone a segment intersects
func (r *Result) ZoneOfSegment(reference string) (*spatial.Zone, bool, error) {
	segment, err := r.Segment(reference)
	if err != nil {
		return nil, false, err
	}

	zone, found := r.Zones.ZoneOf(segment.Geometry)

	return zone, found, nil
}

func (r *Result) ZonesWithLines() []string {
	return r.Zones.ZonesWithLines(r.Segments.Rows)
}

func (r *Result) CountLines() []spatial.ZoneCount {
	return r.Zones.CountLineLabels(r.Segments.Rows)
}

// SegmentMetrics returns the metrics of every line running over a segment
func (r *Result) SegmentMetrics(reference string) ([]metrics.LineMetric, error) {
	canonical, ok := r.Normalizer.Normalize(reference)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSegmentNotFound, reference)
	}

	return metrics.ForSegment(r.Segments.Rows, canonical, r.Config.AssumedSpeedKMH)
}

// StopsNearRoute lists the registered stops within the configured buffer of a
// route's geometry
func (r *Result) StopsNearRoute(routeID string) ([]*network.Stop, error) {
	route, err := r.Route(routeID)
	if err != nil {
		return nil, err
	}

	return spatial.StopsNear(route.Geometry, r.Stops.All(), r.Config.NearStopBufferDegrees), nil
}
