package segments

import (
	"github.com/paulmach/orb"
)

// RoadSegment is one line feature of the geometry source. Name, Class and
// LineLabel are optional and empty when the source did not carry them.
type RoadSegment struct {
	Identifier  string
	CanonicalID string

	Name      string
	Class     string
	LineLabel string
	LengthKM  float64

	// Always EPSG:4326 once loaded
	Geometry orb.Geometry

	SourceFile  string
	SourceIndex int
}

func (s *RoadSegment) HasLineLabel() bool {
	return s.LineLabel != ""
}

func (s *RoadSegment) HasCanonicalID() bool {
	return s.CanonicalID != ""
}

// Attributes lists the source property names (lower case) that feed each
// field of a RoadSegment. The field's own name is always accepted as well.
type Attributes struct {
	Identifier []string `yaml:"identifier"`
	Class      []string `yaml:"class"`
	Name       []string `yaml:"name"`
	LineLabel  []string `yaml:"line_label"`
	Length     []string `yaml:"length"`
}

var DefaultAttributes = Attributes{
	Identifier: []string{"osm_id"},
	Class:      []string{"fclass"},
	Name:       []string{"name"},
	LineLabel:  []string{"taxibe_lin"},
	Length:     []string{"km"},
}

func (a Attributes) withCanonicalNames() Attributes {
	return Attributes{
		Identifier: append([]string{"identifier"}, a.Identifier...),
		Class:      append([]string{"class"}, a.Class...),
		Name:       append([]string{"name"}, a.Name...),
		LineLabel:  append([]string{"line_label"}, a.LineLabel...),
		Length:     append([]string{"length"}, a.Length...),
	}
}

func (a Attributes) IsZero() bool {
	return len(a.Identifier) == 0 && len(a.Class) == 0 && len(a.Name) == 0 && len(a.LineLabel) == 0 && len(a.Length) == 0
}
