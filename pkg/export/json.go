package export

import (
	"encoding/json"

	"github.com/liip/sheriff"
	"github.com/paulmach/orb/geojson"
	"github.com/travigo/transitrecon/pkg/geo"
	"github.com/travigo/transitrecon/pkg/network"
)

const (
	GroupSummary  = "summary"
	GroupDetailed = "detailed"
)

type routeView struct {
	ID             string  `json:"id" groups:"summary,detailed"`
	Color          string  `json:"color" groups:"summary,detailed"`
	LengthKM       float64 `json:"length_km" groups:"summary,detailed"`
	Parts          int     `json:"parts" groups:"summary,detailed"`
	StopCount      int     `json:"stop_count" groups:"summary,detailed"`
	SegmentCount   int     `json:"segment_count" groups:"summary,detailed"`
	UnmatchedCount int     `json:"unmatched_count" groups:"summary,detailed"`

	Edges          []string          `json:"edges" groups:"detailed"`
	UnmatchedEdges []string          `json:"unmatched_edges" groups:"detailed"`
	AbsentEdges    []string          `json:"absent_edges" groups:"detailed"`
	Stops          []stopView        `json:"stops" groups:"detailed"`
	Geometry       *geojson.Geometry `json:"geometry" groups:"detailed"`
}

type stopView struct {
	ID          string    `json:"id" groups:"detailed"`
	Name        string    `json:"name" groups:"detailed"`
	OsmID       string    `json:"osm_id" groups:"detailed"`
	Lines       string    `json:"lines" groups:"detailed"`
	Coordinates []float64 `json:"coordinates" groups:"detailed"`
	Placeholder bool      `json:"placeholder" groups:"detailed"`
}

func newRouteView(route *network.Route) routeView {
	view := routeView{
		ID:             route.ID,
		Color:          route.Color,
		LengthKM:       geo.LengthKM(route.Geometry),
		Parts:          route.Parts(),
		StopCount:      len(route.Stops),
		SegmentCount:   len(route.MatchedSegments),
		UnmatchedCount: len(route.UnmatchedEdges),
		Edges:          route.CanonicalEdges,
		UnmatchedEdges: route.UnmatchedEdges,
		AbsentEdges:    route.AbsentEdges,
		Stops:          make([]stopView, 0, len(route.Stops)),
	}
	if route.HasGeometry() {
		view.Geometry = geojson.NewGeometry(route.Geometry)
	}

	for _, stop := range route.Stops {
		stopJSON := stopView{
			ID:          stop.ID,
			Name:        stop.Name,
			OsmID:       stop.CanonicalID,
			Lines:       stop.Lines,
			Placeholder: stop.Placeholder,
		}
		if stop.Resolved() {
			stopJSON.Coordinates = []float64{stop.Coordinates.Lon(), stop.Coordinates.Lat()}
		}
		view.Stops = append(view.Stops, stopJSON)
	}

	return view
}

// MarshalJSON renders the routes reduced to the given field groups. With no
// groups the summary group is used.
func MarshalJSON(routes []*network.Route, groups ...string) ([]byte, error) {
	if len(groups) == 0 {
		groups = []string{GroupSummary}
	}

	views := make([]routeView, 0, len(routes))
	for _, route := range routes {
		views = append(views, newRouteView(route))
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, views)
	if err != nil {
		return nil, err
	}

	return json.MarshalIndent(reduced, "", "  ")
}
