package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transitrecon/pkg/config"
	"github.com/travigo/transitrecon/pkg/dataimporter/datasets"
	"github.com/travigo/transitrecon/pkg/dataimporter/manager"
	"github.com/travigo/transitrecon/pkg/diagnostics"
	"github.com/travigo/transitrecon/pkg/geo"
	"github.com/travigo/transitrecon/pkg/identifier"
	"github.com/travigo/transitrecon/pkg/metrics"
	"github.com/travigo/transitrecon/pkg/network"
	"github.com/travigo/transitrecon/pkg/segments"
	"github.com/travigo/transitrecon/pkg/spatial"
)

// Result is everything one run produced. It is built fresh per run and is
// read-only afterwards.
type Result struct {
	Config     *config.Config
	Normalizer *identifier.Normalizer

	Segments *segments.Load
	Table    *segments.Table
	Routes   []*network.Route
	Stops    *network.Registry
	Zones    *spatial.Index
	Metrics  []metrics.LineMetric

	Diagnostics diagnostics.List

	Started  time.Time
	Duration time.Duration
}

// Run executes the whole pipeline. Problems with individual sources end up in
// Result.Diagnostics; only configuration errors and cancellation are returned.
func Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	result := &Result{Config: cfg, Started: time.Now()}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	result.Normalizer, err = cfg.Normalizer()
	if err != nil {
		return nil, err
	}

	deadline, err := cfg.Deadline(result.Started)
	if err != nil {
		return nil, err
	}
	if !deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	sources, err := manager.Resolve(cfg.Sources, cfg.DatasourcesDirectory)
	if err != nil {
		return nil, err
	}

	if err := result.loadSegments(ctx, manager.OfKind(sources, datasets.DataSetKindSegments)); err != nil {
		return nil, err
	}

	var issues diagnostics.List
	result.Table, issues, err = segments.NewTable(result.Segments.Rows, policy)
	if err != nil {
		return nil, err
	}
	result.Diagnostics.Append(issues)

	document, err := result.readNetwork(ctx, manager.OfKind(sources, datasets.DataSetKindSUMO))
	if err != nil {
		return nil, err
	}

	result.Stops, issues = network.BuildRegistry(document.Stops, result.Table, result.Normalizer)
	result.Diagnostics.Append(issues)

	reconstructor := &network.Reconstructor{
		Segments:     result.Table,
		Normalizer:   result.Normalizer,
		DefaultColor: cfg.DefaultRouteColor,
	}
	result.Routes, issues = reconstructor.ReconstructAll(document.Routes)
	result.Diagnostics.Append(issues)

	for _, route := range result.Routes {
		result.Diagnostics.Append(network.Associate(route, result.Stops))
	}

	cfg.Transforms.Apply(result.Routes)
	cfg.Transforms.Apply(result.Stops.All())

	if err := result.loadZones(ctx, manager.OfKind(sources, datasets.DataSetKindZones)); err != nil {
		return nil, err
	}

	result.Metrics, err = metrics.Aggregate(result.Segments.Rows, cfg.AssumedSpeedKMH)
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(result.Started)
	result.logSummary()

	return result, nil
}

func (r *Result) sourceFailure(dataset datasets.DataSet, stage string, err error) {
	kind := diagnostics.KindSourceRead
	if errors.Is(err, geo.ErrUnsupportedCRS) {
		kind = diagnostics.KindCRS
	}

	log.Warn().Err(err).Str("id", dataset.Identifier).Msg("Skipping dataset")

	r.Diagnostics = append(r.Diagnostics, diagnostics.Diagnostic{
		Stage:   stage,
		Kind:    kind,
		Entity:  dataset.Identifier,
		Source:  dataset.Source,
		Message: err.Error(),
	})
}

func datasetCRS(dataset datasets.DataSet) (geo.CRS, error) {
	if dataset.CRS == "" {
		return geo.WGS84, nil
	}

	return geo.ParseCRS(dataset.CRS)
}

func (r *Result) loadSegments(ctx context.Context, sources []datasets.DataSet) error {
	r.Segments = &segments.Load{}

	for _, dataset := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		crs, err := datasetCRS(dataset)
		if err != nil {
			r.sourceFailure(dataset, "segments", err)
			continue
		}

		fetched, err := manager.Fetch(ctx, dataset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.sourceFailure(dataset, "segments", err)
			continue
		}

		options := segments.LoadOptions{
			Attributes:  r.Config.Attributes,
			CRS:         crs,
			Normalizer:  r.Normalizer,
			Parallel:    r.Config.ParallelLoad,
			MaxParallel: r.Config.MaxParallelFiles,
		}

		var load *segments.Load
		if info, statErr := os.Stat(fetched.Path); statErr == nil && info.IsDir() {
			load, err = segments.LoadDirectory(ctx, fetched.Path, options)
		} else {
			load, err = segments.LoadFiles(ctx, []string{fetched.Path}, options)
		}
		fetched.Cleanup()
		if err != nil {
			return err
		}

		r.Segments.Rows = append(r.Segments.Rows, load.Rows...)
		r.Segments.Files = append(r.Segments.Files, load.Files...)
		r.Diagnostics.Append(load.Diagnostics)
	}

	return nil
}

func (r *Result) readNetwork(ctx context.Context, sources []datasets.DataSet) (*network.Document, error) {
	document := &network.Document{}

	for _, dataset := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fetched, err := manager.Fetch(ctx, dataset)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.sourceFailure(dataset, "network", err)
			continue
		}

		parsed, err := parseNetworkFile(fetched.Path)
		fetched.Cleanup()
		if err != nil {
			r.sourceFailure(dataset, "network", err)
			continue
		}

		document.Routes = append(document.Routes, parsed.Routes...)
		document.Stops = append(document.Stops, parsed.Stops...)
	}

	return document, nil
}

// a malformed file contributes nothing, not the routes read before the error
func parseNetworkFile(path string) (*network.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	parsed := &network.Document{}
	if err := parsed.ParseFile(file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return parsed, nil
}

func (r *Result) loadZones(ctx context.Context, sources []datasets.DataSet) error {
	var zones []*spatial.Zone

	for _, dataset := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		crs, err := datasetCRS(dataset)
		if err != nil {
			r.sourceFailure(dataset, "zones", err)
			continue
		}

		fetched, err := manager.Fetch(ctx, dataset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.sourceFailure(dataset, "zones", err)
			continue
		}

		loaded, issues, err := spatial.LoadZones(fetched.Path, spatial.ZoneOptions{
			NameAttribute: r.Config.ZoneNameAttribute,
			CRS:           crs,
			Filter:        dataset.Filter,
		})
		fetched.Cleanup()
		if err != nil {
			r.sourceFailure(dataset, "zones", err)
			continue
		}

		for _, zone := range loaded {
			zone.Index = len(zones)
			zones = append(zones, zone)
		}
		r.Diagnostics.Append(issues)
	}

	r.Zones = spatial.NewIndex(zones)

	return nil
}

func (r *Result) logSummary() {
	unresolved := 0
	for _, route := range r.Routes {
		if !route.HasGeometry() {
			unresolved++
		}
	}

	log.Info().Msgf("Reconciliation finished in %s", r.Duration.String())
	log.Info().Msgf(" - Loaded %d segments from %d files (%d indexed)", len(r.Segments.Rows), len(r.Segments.Files), r.Table.Len())
	log.Info().Msgf(" - Reconstructed %d routes (%d without geometry)", len(r.Routes), unresolved)
	log.Info().Msgf(" - Registered %d stops", r.Stops.Len())
	log.Info().Msgf(" - Loaded %d zones", r.Zones.Len())
	log.Info().Msgf(" - Computed metrics for %d lines", len(r.Metrics))

	for kind, count := range r.Diagnostics.Summary() {
		log.Info().Str("kind", string(kind)).Int("count", count).Msg("Diagnostics")
	}
	r.Diagnostics.Log(log.Logger)
}
