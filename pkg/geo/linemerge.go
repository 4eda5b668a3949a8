package geo

import "github.com/paulmach/orb"

// LineMerge joins line parts that share exact end points into continuous
// chains. A single chain is returned as an orb.LineString, several disjoint
// chains as an orb.MultiLineString in the order their first part was seen, and
// no input as an empty orb.MultiLineString.
func LineMerge(lines []orb.LineString) orb.Geometry {
	var chains []orb.LineString
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		chains = append(chains, append(orb.LineString(nil), line...))
	}

	for merged := true; merged; {
		merged = false

		for i := 0; i < len(chains) && !merged; i++ {
			for j := i + 1; j < len(chains); j++ {
				joined, ok := joinChains(chains[i], chains[j])
				if !ok {
					continue
				}

				chains[i] = joined
				chains = append(chains[:j], chains[j+1:]...)
				merged = true
				break
			}
		}
	}

	switch len(chains) {
	case 0:
		return orb.MultiLineString{}
	case 1:
		return chains[0]
	}

	return orb.MultiLineString(chains)
}

func joinChains(a orb.LineString, b orb.LineString) (orb.LineString, bool) {
	aStart, aEnd := a[0], a[len(a)-1]
	bStart, bEnd := b[0], b[len(b)-1]

	// Closed chains stay closed
	if aStart.Equal(aEnd) && len(a) > 1 || bStart.Equal(bEnd) && len(b) > 1 {
		return nil, false
	}

	switch {
	case aEnd.Equal(bStart):
		return concat(a, b), true
	case aEnd.Equal(bEnd):
		return concat(a, reversed(b)), true
	case aStart.Equal(bEnd):
		return concat(b, a), true
	case aStart.Equal(bStart):
		return concat(reversed(b), a), true
	}

	return nil, false
}

func concat(head orb.LineString, tail orb.LineString) orb.LineString {
	joined := make(orb.LineString, 0, len(head)+len(tail)-1)
	joined = append(joined, head...)

	return append(joined, tail[1:]...)
}

func reversed(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}

	return out
}
