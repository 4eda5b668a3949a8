package network

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transitrecon/pkg/diagnostics"
	"github.com/travigo/transitrecon/pkg/geo"
	"github.com/travigo/transitrecon/pkg/identifier"
	"github.com/travigo/transitrecon/pkg/segments"
)

type Stop struct {
	ID          string
	Name        string
	Lane        string
	CanonicalID string
	Lines       string
	Color       string

	// lon/lat, nil when the lane did not resolve to a segment
	Coordinates *orb.Point

	// Set when a route references a stop id that has no definition
	Placeholder bool
}

func (s *Stop) Resolved() bool {
	return s.Coordinates != nil
}

// Registry holds every stop definition keyed by the simulator's stop id
type Registry struct {
	order []string
	stops map[string]*Stop
}

func (r *Registry) Get(id string) (*Stop, bool) {
	stop, exists := r.stops[id]
	return stop, exists
}

func (r *Registry) Len() int {
	return len(r.order)
}

// All returns the stops in definition order
func (r *Registry) All() []*Stop {
	all := make([]*Stop, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.stops[id])
	}

	return all
}

// BuildRegistry resolves each stop's lane to a canonical id and takes the first
// point of the matched segment as the stop position.
func BuildRegistry(definitions []*StopDefinition, lookup segments.SegmentLookup, normalizer *identifier.Normalizer) (*Registry, diagnostics.List) {
	var issues diagnostics.List
	registry := &Registry{stops: map[string]*Stop{}}

	for _, definition := range definitions {
		stop := &Stop{
			ID:    definition.ID,
			Name:  definition.Name,
			Lane:  definition.Lane,
			Lines: definition.Lines,
			Color: definition.Color,
		}

		if canonical, ok := normalizer.Normalize(definition.Lane); ok {
			stop.CanonicalID = canonical

			if segment, found := lookup.Lookup(canonical); found {
				if point, ok := geo.FirstPoint(segment.Geometry); ok {
					stop.Coordinates = &point
				}
			}
		}

		if !stop.Resolved() {
			issues = append(issues, diagnostics.Diagnostic{
				Stage:   "stops",
				Kind:    diagnostics.KindUnresolved,
				Entity:  stop.ID,
				Message: fmt.Sprintf("lane %q does not resolve to a segment", definition.Lane),
			})
		}

		if _, exists := registry.stops[stop.ID]; exists {
			issues = append(issues, diagnostics.Diagnostic{
				Stage:   "stops",
				Kind:    diagnostics.KindConflict,
				Entity:  stop.ID,
				Message: "stop defined more than once, last definition kept",
			})
		} else {
			registry.order = append(registry.order, stop.ID)
		}
		registry.stops[stop.ID] = stop
	}

	log.Debug().Int("stops", registry.Len()).Int("unresolved", len(issues.OfKind(diagnostics.KindUnresolved))).Msg("Built stop registry")

	return registry, issues
}

// Associate attaches a copy of each referenced stop to the route, in the order
// the route lists them. Unknown references become placeholders so the stop
// list is never shorter than the reference list.
func Associate(route *Route, registry *Registry) diagnostics.List {
	var issues diagnostics.List

	route.Stops = make([]*Stop, 0, len(route.StopRefs))
	for _, ref := range route.StopRefs {
		registered, exists := registry.Get(ref.BusStop)
		if !exists {
			route.Stops = append(route.Stops, &Stop{ID: ref.BusStop, Placeholder: true})

			issues = append(issues, diagnostics.Diagnostic{
				Stage:   "stops",
				Kind:    diagnostics.KindUnresolved,
				Entity:  route.ID,
				Message: fmt.Sprintf("route references unknown stop %q", ref.BusStop),
			})
			continue
		}

		var stop Stop
		if err := copier.CopyWithOption(&stop, registered, copier.Option{DeepCopy: true}); err != nil {
			log.Warn().Err(err).Str("route", route.ID).Str("stop", registered.ID).Msg("Failed to deep copy stop")

			stop = *registered
			if registered.Coordinates != nil {
				coordinates := *registered.Coordinates
				stop.Coordinates = &coordinates
			}
		}
		route.Stops = append(route.Stops, &stop)
	}

	return issues
}
