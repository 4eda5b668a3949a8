package geo

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

// legacy GeoJSON (2008) crs member, still written by QGIS and GDAL
type crsMember struct {
	CRS *struct {
		Type       string `json:"type"`
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// DecodeFeatureCollection parses a GeoJSON feature collection and returns the
// CRS it declares, or fallback when it declares none.
func DecodeFeatureCollection(data []byte, fallback CRS) (*geojson.FeatureCollection, CRS, error) {
	var member crsMember
	if err := json.Unmarshal(data, &member); err != nil {
		return nil, CRS{}, fmt.Errorf("decoding geojson: %w", err)
	}

	declared := fallback
	if member.CRS != nil && member.CRS.Properties.Name != "" {
		crs, err := ParseCRS(member.CRS.Properties.Name)
		if err != nil {
			return nil, CRS{}, err
		}
		declared = crs
	}

	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, CRS{}, fmt.Errorf("decoding geojson: %w", err)
	}

	return collection, declared, nil
}
