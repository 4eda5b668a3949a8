package spatial

import (
	"github.com/paulmach/orb"
	"github.com/travigo/transitrecon/pkg/segments"
	"github.com/travigo/transitrecon/pkg/util"
)

// Pair is one candidate/zone intersection. Candidate is the position in the
// candidate slice passed to Join.
type Pair struct {
	Candidate int
	Zone      *Zone
}

// Join returns every intersecting pair, ordered by candidate then by zone
func (i *Index) Join(candidates []orb.Geometry) []Pair {
	var pairs []Pair
	for position, candidate := range candidates {
		for _, zone := range i.intersecting(candidate) {
			pairs = append(pairs, Pair{Candidate: position, Zone: i.zones[zone]})
		}
	}

	return pairs
}

// Within lists the positions of the candidates that intersect any zone named
// zoneName
func (i *Index) Within(candidates []orb.Geometry, zoneName string) []int {
	var within []int
	for position, candidate := range candidates {
		for _, zone := range i.intersecting(candidate) {
			if i.zones[zone].Name == zoneName {
				within = append(within, position)
				break
			}
		}
	}

	return within
}

// ZoneOf returns the first zone, in zone input order, that g intersects. A
// geometry straddling a boundary between two zones gets the earlier one.
func (i *Index) ZoneOf(g orb.Geometry) (*Zone, bool) {
	matched := i.intersecting(g)
	if len(matched) == 0 {
		return nil, false
	}

	return i.zones[matched[0]], true
}

// LineLabelsInZone lists the distinct line labels of the segments crossing a
// zone, in first-seen order
func (i *Index) LineLabelsInZone(rows []*segments.RoadSegment, zoneName string) []string {
	var labels []string
	for _, position := range i.Within(geometries(rows), zoneName) {
		labels = append(labels, rows[position].LineLabel)
	}

	return util.RemoveDuplicateStrings(labels, nil)
}

type ZoneCount struct {
	Zone  string `csv:"zone" json:"zone"`
	Lines int    `csv:"lines" json:"lines"`
}

// CountLineLabels counts the distinct line labels per zone name. Every zone
// name appears once, in zone input order, including those with no lines.
func (i *Index) CountLineLabels(rows []*segments.RoadSegment) []ZoneCount {
	labels := map[string]map[string]bool{}
	var order []string

	for _, zone := range i.zones {
		if _, exists := labels[zone.Name]; !exists {
			labels[zone.Name] = map[string]bool{}
			order = append(order, zone.Name)
		}
	}

	for _, pair := range i.Join(geometries(rows)) {
		row := rows[pair.Candidate]
		if row.HasLineLabel() {
			labels[pair.Zone.Name][row.LineLabel] = true
		}
	}

	counts := make([]ZoneCount, 0, len(order))
	for _, name := range order {
		counts = append(counts, ZoneCount{Zone: name, Lines: len(labels[name])})
	}

	return counts
}

// ZonesWithLines lists the names of the zones crossed by at least one labelled
// segment
func (i *Index) ZonesWithLines(rows []*segments.RoadSegment) []string {
	var names []string
	for _, count := range i.CountLineLabels(rows) {
		if count.Lines > 0 {
			names = append(names, count.Zone)
		}
	}

	return names
}

func geometries(rows []*segments.RoadSegment) []orb.Geometry {
	out := make([]orb.Geometry, len(rows))
	for i, row := range rows {
		out[i] = row.Geometry
	}

	return out
}
