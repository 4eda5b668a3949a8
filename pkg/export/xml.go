package export

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/travigo/transitrecon/pkg/network"
	"golang.org/x/net/html/charset"
)

const DefaultSentinel = "None"

var ErrNoCoordinates = errors.New("no coordinates")

type Options struct {
	// written in place of every missing value
	Sentinel string
}

func (o Options) sentinel() string {
	if o.Sentinel == "" {
		return DefaultSentinel
	}

	return o.Sentinel
}

type BusRoutes struct {
	XMLName xml.Name   `xml:"busRoutes"`
	Routes  []XMLRoute `xml:"route"`
}

type XMLRoute struct {
	ID    string    `xml:"id,attr"`
	Color string    `xml:"color,attr"`
	Stops []XMLStop `xml:"stop"`
}

type XMLStop struct {
	Name        string `xml:"name,attr"`
	OsmID       string `xml:"osm_id,attr"`
	Coordinates string `xml:"coordinates,attr"`
	Lines       string `xml:"lines,attr"`
}

func orSentinel(value string, sentinel string) string {
	if strings.TrimSpace(value) == "" {
		return sentinel
	}

	return value
}

func FormatCoordinates(p orb.Point) string {
	return strconv.FormatFloat(p.Lon(), 'f', -1, 64) + ", " + strconv.FormatFloat(p.Lat(), 'f', -1, 64)
}

// ParseCoordinates reads the "lon, lat" form written by FormatCoordinates
func ParseCoordinates(value string) (orb.Point, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("%w: %q", ErrNoCoordinates, value)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("parsing longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("parsing latitude: %w", err)
	}

	return orb.Point{lon, lat}, nil
}

func NewBusRoutes(routes []*network.Route, options Options) *BusRoutes {
	sentinel := options.sentinel()
	document := &BusRoutes{Routes: make([]XMLRoute, 0, len(routes))}

	for _, route := range routes {
		xmlRoute := XMLRoute{
			ID:    orSentinel(route.ID, sentinel),
			Color: orSentinel(route.Color, sentinel),
			Stops: make([]XMLStop, 0, len(route.Stops)),
		}

		for _, stop := range route.Stops {
			coordinates := sentinel
			if stop.Resolved() {
				coordinates = FormatCoordinates(*stop.Coordinates)
			}

			xmlRoute.Stops = append(xmlRoute.Stops, XMLStop{
				Name:        orSentinel(stop.Name, sentinel),
				OsmID:       orSentinel(stop.CanonicalID, sentinel),
				Coordinates: coordinates,
				Lines:       orSentinel(stop.Lines, sentinel),
			})
		}

		document.Routes = append(document.Routes, xmlRoute)
	}

	return document
}

// WriteXML writes the reconciled network as a busRoutes document
func WriteXML(w io.Writer, routes []*network.Route, options Options) error {
	output, err := xml.MarshalIndent(NewBusRoutes(routes, options), "", "    ")
	if err != nil {
		return fmt.Errorf("encoding bus routes: %w", err)
	}

	if _, err = io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err = w.Write(output); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")

	return err
}

func ReadXML(r io.Reader) (*BusRoutes, error) {
	var document BusRoutes

	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("decoding bus routes: %w", err)
	}

	return &document, nil
}
