package segments

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
	"github.com/travigo/transitrecon/pkg/diagnostics"
	"github.com/travigo/transitrecon/pkg/geo"
	"github.com/travigo/transitrecon/pkg/identifier"
	"github.com/travigo/transitrecon/pkg/util"
)

const stage = "segments"

type LoadOptions struct {
	Attributes Attributes
	// CRS assumed for files that do not declare one
	CRS        geo.CRS
	Normalizer *identifier.Normalizer

	Parallel    bool
	MaxParallel int
}

func (o LoadOptions) withDefaults() LoadOptions {
	if o.Attributes.IsZero() {
		o.Attributes = DefaultAttributes
	}
	if o.CRS.EPSG == 0 {
		o.CRS = geo.WGS84
	}
	if o.Normalizer == nil {
		o.Normalizer = identifier.Default()
	}
	if o.MaxParallel <= 0 {
		o.MaxParallel = 4
	}

	return o
}

// Load is the concatenated segment table of one or more files, in
// file-then-feature order.
type Load struct {
	Rows        []*RoadSegment
	Files       []string
	Diagnostics diagnostics.List
}

type fileResult struct {
	path        string
	rows        []*RoadSegment
	diagnostics diagnostics.List
	failed      bool
}

// ListFiles returns the GeoJSON files of a directory sorted by name
func ListFiles(directory string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		extension := strings.ToLower(filepath.Ext(entry.Name()))
		if extension == ".geojson" || extension == ".json" {
			files = append(files, filepath.Join(directory, entry.Name()))
		}
	}

	return files, nil
}

// LoadDirectory reads every GeoJSON file in a directory. A missing or empty
// directory gives an empty load with a diagnostic rather than an error.
func LoadDirectory(ctx context.Context, directory string, options LoadOptions) (*Load, error) {
	files, err := ListFiles(directory)
	if err != nil {
		log.Warn().Err(err).Str("directory", directory).Msg("Cannot list segment directory")

		load := &Load{}
		load.Diagnostics = append(load.Diagnostics, diagnostics.Diagnostic{
			Stage:   stage,
			Kind:    diagnostics.KindSourceRead,
			Source:  directory,
			Message: err.Error(),
		})
		return load, nil
	}

	return LoadFiles(ctx, files, options)
}

// LoadFiles reads the given files in order. The only error returned is a
// cancelled context; per-file failures become diagnostics.
func LoadFiles(ctx context.Context, files []string, options LoadOptions) (*Load, error) {
	options = options.withDefaults()

	var results []fileResult
	if options.Parallel && len(files) > 1 {
		mapper := iter.Mapper[string, fileResult]{MaxGoroutines: options.MaxParallel}
		results = mapper.Map(files, func(path *string) fileResult {
			if ctx.Err() != nil {
				return fileResult{path: *path, failed: true}
			}
			return loadFile(*path, options)
		})
	} else {
		for _, path := range files {
			if ctx.Err() != nil {
				break
			}
			results = append(results, loadFile(path, options))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	load := &Load{}
	for _, result := range results {
		load.Diagnostics.Append(result.diagnostics)
		if result.failed {
			continue
		}

		load.Files = append(load.Files, result.path)
		load.Rows = append(load.Rows, result.rows...)
	}

	if len(load.Rows) == 0 {
		log.Warn().Int("files", len(files)).Msg("No road segments loaded")
	}

	log.Info().Msgf("Loaded segment sources")
	log.Info().Msgf(" - Read %d of %d files", len(load.Files), len(files))
	log.Info().Msgf(" - Contains %d segments", len(load.Rows))

	return load, nil
}

func loadFile(path string, options LoadOptions) fileResult {
	result := fileResult{path: path}

	fail := func(kind diagnostics.Kind, err error) fileResult {
		log.Warn().Err(err).Str("file", path).Msg("Skipping segment file")

		result.failed = true
		result.diagnostics = append(result.diagnostics, diagnostics.Diagnostic{
			Stage:   stage,
			Kind:    kind,
			Source:  path,
			Message: err.Error(),
		})
		return result
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(diagnostics.KindSourceRead, err)
	}

	collection, crs, err := geo.DecodeFeatureCollection(data, options.CRS)
	if err != nil {
		if errors.Is(err, geo.ErrUnsupportedCRS) {
			return fail(diagnostics.KindCRS, err)
		}
		return fail(diagnostics.KindSourceRead, err)
	}

	attributes := options.Attributes.withCanonicalNames()
	withGeometry := 0

	for index, feature := range collection.Features {
		if feature.Geometry == nil {
			continue
		}
		withGeometry++

		if !geo.IsLinear(feature.Geometry) {
			result.diagnostics = append(result.diagnostics, diagnostics.Diagnostic{
				Stage:   stage,
				Kind:    diagnostics.KindSkippedFeature,
				Entity:  fmt.Sprintf("feature %d", index),
				Source:  path,
				Message: fmt.Sprintf("%s is not a line geometry", feature.Geometry.GeoJSONType()),
			})
			continue
		}

		geometry, err := geo.Reproject(feature.Geometry, crs, geo.WGS84)
		if err != nil {
			return fail(diagnostics.KindCRS, err)
		}

		segment := buildSegment(feature, attributes, options.Normalizer, &result.diagnostics, path)
		segment.Geometry = geometry
		segment.SourceFile = path
		segment.SourceIndex = index

		result.rows = append(result.rows, segment)
	}

	if len(collection.Features) > 0 && withGeometry == 0 {
		return fail(diagnostics.KindSourceRead, fmt.Errorf("no feature in %s has a geometry", filepath.Base(path)))
	}

	log.Debug().Str("file", path).Str("crs", crs.String()).Int("segments", len(result.rows)).Msg("Loaded segment file")

	return result
}

func buildSegment(feature *geojson.Feature, attributes Attributes, normalizer *identifier.Normalizer, issues *diagnostics.List, path string) *RoadSegment {
	properties := util.LowerKeys(feature.Properties)

	segment := &RoadSegment{}

	if value, ok := util.FirstPresent(properties, attributes.Identifier); ok {
		segment.Identifier = util.FormatValue(value)
	}
	if value, ok := util.FirstPresent(properties, attributes.Name); ok {
		segment.Name = util.FormatValue(value)
	}
	if value, ok := util.FirstPresent(properties, attributes.Class); ok {
		segment.Class = util.FormatValue(value)
	}
	if value, ok := util.FirstPresent(properties, attributes.LineLabel); ok {
		segment.LineLabel = util.FormatValue(value)
	}
	if value, ok := util.FirstPresent(properties, attributes.Length); ok {
		length, numeric := util.ParseNumber(value)
		if !numeric {
			*issues = append(*issues, diagnostics.Diagnostic{
				Stage:   stage,
				Kind:    diagnostics.KindMalformedAttribute,
				Entity:  segment.Identifier,
				Source:  path,
				Message: fmt.Sprintf("non-numeric length %q treated as 0", util.FormatValue(value)),
			})
		}
		segment.LengthKM = length
	}

	if canonical, ok := normalizer.Normalize(segment.Identifier); ok {
		segment.CanonicalID = canonical
	}

	return segment
}
