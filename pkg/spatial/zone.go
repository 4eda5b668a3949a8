package spatial

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transitrecon/pkg/diagnostics"
	"github.com/travigo/transitrecon/pkg/geo"
	"github.com/travigo/transitrecon/pkg/util"
)

const stage = "zones"

const DefaultNameAttribute = "ensemble_1"

// Zone is an administrative or planning polygon, always held in EPSG:4326
type Zone struct {
	Name       string
	Attributes map[string]interface{}
	Geometry   orb.Geometry

	// position in the source collection, used for tie breaking
	Index int
}

type ZoneOptions struct {
	NameAttribute string
	// CRS assumed when the file does not declare one
	CRS geo.CRS
	// Boolean expression over the zone attributes, e.g.
	// `zonage_int == "Commune avoisinante"`
	Filter string
}

// Filter is a compiled zone filter expression
type Filter struct {
	source  string
	program *vm.Program
}

func CompileFilter(source string) (*Filter, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	program, err := expr.Compile(source, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compiling zone filter %q: %w", source, err)
	}

	return &Filter{source: source, program: program}, nil
}

func (f *Filter) Match(zone *Zone) (bool, error) {
	if f == nil {
		return true, nil
	}

	output, err := expr.Run(f.program, filterEnvironment(zone.Attributes))
	if err != nil {
		return false, fmt.Errorf("evaluating zone filter %q: %w", f.source, err)
	}

	matched, ok := output.(bool)
	if !ok {
		return false, errors.New("zone filter did not return a boolean")
	}

	return matched, nil
}

// attribute names like "zonage int" are exposed as zonage_int
func filterEnvironment(attributes map[string]interface{}) map[string]interface{} {
	env := make(map[string]interface{}, len(attributes))
	for key, value := range attributes {
		env[strings.ReplaceAll(strings.TrimSpace(key), " ", "_")] = value
	}

	return env
}

// LoadZones reads a polygon GeoJSON file. Non areal features and zones the
// filter rejects are left out; a file that cannot be read is an error.
func LoadZones(path string, options ZoneOptions) ([]*Zone, diagnostics.List, error) {
	var issues diagnostics.List

	if options.NameAttribute == "" {
		options.NameAttribute = DefaultNameAttribute
	}
	if options.CRS.EPSG == 0 {
		options.CRS = geo.WGS84
	}

	filter, err := CompileFilter(options.Filter)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading zones: %w", err)
	}

	collection, crs, err := geo.DecodeFeatureCollection(data, options.CRS)
	if err != nil {
		return nil, nil, err
	}

	nameAttribute := strings.ToLower(options.NameAttribute)

	var zones []*Zone
	for index, feature := range collection.Features {
		if len(geo.Polygons(feature.Geometry)) == 0 {
			issues.Add(stage, diagnostics.KindSkippedFeature, fmt.Sprintf("feature %d", index), "zone geometry is not a polygon")
			continue
		}

		geometry, err := geo.Reproject(feature.Geometry, crs, geo.WGS84)
		if err != nil {
			return nil, nil, err
		}

		attributes := util.LowerKeys(feature.Properties)
		zone := &Zone{
			Attributes: attributes,
			Geometry:   geometry,
			Index:      len(zones),
		}
		if value, ok := attributes[nameAttribute]; ok {
			zone.Name = util.FormatValue(value)
		}

		matched, err := filter.Match(zone)
		if err != nil {
			return nil, nil, err
		}
		if !matched {
			continue
		}

		zones = append(zones, zone)
	}

	log.Info().Msgf("Loaded zones from %s", path)
	log.Info().Msgf(" - Contains %d zones", len(zones))

	return zones, issues, nil
}
