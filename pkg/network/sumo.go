package network

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

// RouteDefinition is a <route> element of a SUMO routes file
type RouteDefinition struct {
	ID    string    `xml:"id,attr"`
	Edges string    `xml:"edges,attr"`
	Color string    `xml:"color,attr"`
	Stops []StopRef `xml:"stop"`
}

func (r *RouteDefinition) EdgeList() []string {
	return strings.Fields(r.Edges)
}

// StopRef is a <stop> child of a route
type StopRef struct {
	BusStop  string `xml:"busStop,attr"`
	Duration string `xml:"duration,attr"`
}

// StopDefinition is a <busStop> element of a SUMO additional file
type StopDefinition struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Lane  string `xml:"lane,attr"`
	Lines string `xml:"lines,attr"`
	Color string `xml:"color,attr"`
}

// Document collects route and bus stop definitions from one or more SUMO
// files in document order.
type Document struct {
	Routes []*RouteDefinition
	Stops  []*StopDefinition
}

func (d *Document) ParseFile(reader io.Reader) error {
	routes := 0
	stops := 0

	decoder := xml.NewDecoder(reader)
	decoder.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := decoder.Token()
		if tok == nil || err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("decoding sumo token: %w", err)
		}

		switch ty := tok.(type) {
		case xml.StartElement:
			if ty.Name.Local == "route" {
				var route RouteDefinition

				if err = decoder.DecodeElement(&route, &ty); err != nil {
					return fmt.Errorf("decoding route: %w", err)
				}
				if route.ID == "" {
					route.ID = fmt.Sprintf("route-%d", len(d.Routes))
				}

				d.Routes = append(d.Routes, &route)
				routes++
			} else if ty.Name.Local == "busStop" {
				var stop StopDefinition

				if err = decoder.DecodeElement(&stop, &ty); err != nil {
					return fmt.Errorf("decoding busStop: %w", err)
				}

				d.Stops = append(d.Stops, &stop)
				stops++
			}
		default:
		}
	}

	log.Info().Msgf("Successfully parsed SUMO document")
	log.Info().Msgf(" - Contains %d routes", routes)
	log.Info().Msgf(" - Contains %d bus stops", stops)

	return nil
}
