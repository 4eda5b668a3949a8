package reconcile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transitrecon/pkg/config"
	"github.com/travigo/transitrecon/pkg/export"
	"github.com/travigo/transitrecon/pkg/metrics"
)

// Write saves every configured output into the output directory and returns
// the paths written
func (r *Result) Write(output config.Output) ([]string, error) {
	if err := os.MkdirAll(output.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	writers := []struct {
		name  string
		write func() ([]byte, error)
	}{
		{output.XML, func() ([]byte, error) {
			var buffer bytes.Buffer
			err := export.WriteXML(&buffer, r.Routes, export.Options{Sentinel: r.Config.Sentinel})
			return buffer.Bytes(), err
		}},
		{output.JSON, func() ([]byte, error) {
			return export.MarshalJSON(r.Routes, export.GroupSummary, export.GroupDetailed)
		}},
		{output.GeoJSON, func() ([]byte, error) {
			return export.RoutesFeatureCollection(r.Routes).MarshalJSON()
		}},
		{output.StopsGeoJSON, func() ([]byte, error) {
			return export.StopsFeatureCollection(r.Stops.All()).MarshalJSON()
		}},
		{output.MetricsCSV, func() ([]byte, error) {
			var buffer bytes.Buffer
			err := metrics.WriteCSV(&buffer, r.Metrics)
			return buffer.Bytes(), err
		}},
	}

	var written []string
	for _, writer := range writers {
		if writer.name == "" {
			continue
		}

		contents, err := writer.write()
		if err != nil {
			return written, fmt.Errorf("rendering %s: %w", writer.name, err)
		}

		path := filepath.Join(output.Directory, writer.name)
		if err := os.WriteFile(path, contents, 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}

		log.Info().Str("path", path).Int("bytes", len(contents)).Msg("Wrote output")
		written = append(written, path)
	}

	return written, nil
}
