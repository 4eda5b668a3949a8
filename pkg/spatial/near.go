package spatial

import (
	"github.com/paulmach/orb"
	"github.com/travigo/transitrecon/pkg/geo"
	"github.com/travigo/transitrecon/pkg/network"
	"github.com/travigo/transitrecon/pkg/util"
	"golang.org/x/exp/slices"
)

const DefaultNearStopBuffer = 0.009

// StopsNear lists the resolved stops lying within buffer degrees of a route
// line, in stop order
func StopsNear(route orb.Geometry, stops []*network.Stop, buffer float64) []*network.Stop {
	if geo.IsEmpty(route) {
		return nil
	}
	if buffer <= 0 {
		buffer = DefaultNearStopBuffer
	}

	near := slices.Clone(stops)
	util.InPlaceFilter(&near, func(stop *network.Stop) bool {
		return stop.Resolved() && geo.DistanceToLine(route, *stop.Coordinates) <= buffer
	})

	return near
}
