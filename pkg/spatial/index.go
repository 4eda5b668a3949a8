package spatial

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
	"github.com/travigo/transitrecon/pkg/geo"
	"golang.org/x/exp/slices"
)

// Index answers zone membership queries. Zone bounds live in an R-tree and
// every candidate hit is confirmed with an exact intersection test.
type Index struct {
	zones []*Zone
	tree  rtree.RTreeG[int]
}

func NewIndex(zones []*Zone) *Index {
	index := &Index{zones: zones}

	for i, zone := range zones {
		bound := zone.Geometry.Bound()
		index.tree.Insert([2]float64{bound.Min[0], bound.Min[1]}, [2]float64{bound.Max[0], bound.Max[1]}, i)
	}

	return index
}

func (i *Index) Zones() []*Zone {
	return i.zones
}

func (i *Index) Len() int {
	return len(i.zones)
}

// intersecting returns the positions of the zones g intersects, in zone input
// order
func (i *Index) intersecting(g orb.Geometry) []int {
	if len(i.zones) == 0 || geo.IsEmpty(g) {
		return nil
	}

	bound := g.Bound()

	var candidates []int
	i.tree.Search(
		[2]float64{bound.Min[0], bound.Min[1]},
		[2]float64{bound.Max[0], bound.Max[1]},
		func(min, max [2]float64, position int) bool {
			candidates = append(candidates, position)
			return true
		},
	)
	slices.Sort(candidates)

	matched := candidates[:0]
	for _, position := range candidates {
		if geo.Intersects(g, i.zones[position].Geometry) {
			matched = append(matched, position)
		}
	}

	return matched
}
