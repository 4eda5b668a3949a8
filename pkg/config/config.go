package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/transitrecon/pkg/dataimporter/datasets"
	"github.com/travigo/transitrecon/pkg/export"
	"github.com/travigo/transitrecon/pkg/identifier"
	"github.com/travigo/transitrecon/pkg/metrics"
	"github.com/travigo/transitrecon/pkg/network"
	"github.com/travigo/transitrecon/pkg/segments"
	"github.com/travigo/transitrecon/pkg/spatial"
	"github.com/travigo/transitrecon/pkg/transforms"
	"github.com/travigo/transitrecon/pkg/util"
	"gopkg.in/yaml.v3"
)

const envPrefix = "TRANSITRECON_"

// Output names the files written into Directory. An empty name skips that
// output.
type Output struct {
	Directory    string `yaml:"directory"`
	XML          string `yaml:"xml"`
	JSON         string `yaml:"json"`
	GeoJSON      string `yaml:"geojson"`
	StopsGeoJSON string `yaml:"stops_geojson"`
	MetricsCSV   string `yaml:"metrics_csv"`
}

type Config struct {
	ConflictPolicy        string  `yaml:"conflict_policy" validate:"omitempty,oneof=keep-first keep-last reject"`
	AssumedSpeedKMH       float64 `yaml:"assumed_speed_kmh" validate:"gt=0"`
	DefaultRouteColor     string  `yaml:"default_route_color"`
	Sentinel              string  `yaml:"sentinel"`
	ParallelLoad          bool    `yaml:"parallel_load"`
	MaxParallelFiles      int     `yaml:"max_parallel_files" validate:"gte=0"`
	ZoneNameAttribute     string  `yaml:"zone_name_attribute"`
	NearStopBufferDegrees float64 `yaml:"near_stop_buffer_degrees" validate:"gt=0"`

	Attributes      segments.Attributes `yaml:"attributes"`
	IdentifierRules []identifier.Rule   `yaml:"identifier_rules" validate:"dive"`
	Transforms      transforms.Set      `yaml:"transforms" validate:"dive"`
	TransformsFile  string              `yaml:"transforms_file"`

	Output Output `yaml:"output"`

	// ISO 8601 duration, e.g. PT10M
	Timeout string `yaml:"timeout"`

	Sources              []datasets.DataSet `yaml:"sources" validate:"dive"`
	DatasourcesDirectory string             `yaml:"datasources_directory"`
}

// Default is the configuration used when no file is given
func Default() *Config {
	return &Config{
		ConflictPolicy:        string(segments.DefaultConflictPolicy),
		AssumedSpeedKMH:       metrics.DefaultAssumedSpeedKMH,
		DefaultRouteColor:     network.DefaultRouteColor,
		Sentinel:              export.DefaultSentinel,
		MaxParallelFiles:      4,
		ZoneNameAttribute:     spatial.DefaultNameAttribute,
		NearStopBufferDegrees: spatial.DefaultNearStopBuffer,
		Attributes:            segments.DefaultAttributes,
		Output: Output{
			Directory:    "output",
			XML:          "bus_routes.xml",
			JSON:         "routes.json",
			GeoJSON:      "routes.geojson",
			StopsGeoJSON: "stops.geojson",
			MetricsCSV:   "line_metrics.csv",
		},
	}
}

// Load reads a yaml config over the defaults, applies environment overrides
// and validates the result. An empty path gives the defaults.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		contents, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}

		if err := yaml.Unmarshal(contents, config); err != nil {
			return nil, fmt.Errorf("decoding config: %w", err)
		}

		if config.TransformsFile != "" {
			transformsPath := config.TransformsFile
			if !filepath.IsAbs(transformsPath) {
				transformsPath = filepath.Join(filepath.Dir(path), transformsPath)
			}

			loaded, err := transforms.LoadFile(transformsPath)
			if err != nil {
				return nil, err
			}
			config.Transforms = append(config.Transforms, loaded...)
		}
	}

	if err := config.applyEnvironment(util.GetEnvironmentVariables()); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyEnvironment(env map[string]string) error {
	if value, exists := env[envPrefix+"ASSUMED_SPEED_KMH"]; exists {
		speed, ok := util.EnvironmentFloat(env, envPrefix+"ASSUMED_SPEED_KMH")
		if !ok {
			return fmt.Errorf("%sASSUMED_SPEED_KMH is not a number: %q", envPrefix, value)
		}
		c.AssumedSpeedKMH = speed
	}
	if value := strings.TrimSpace(env[envPrefix+"CONFLICT_POLICY"]); value != "" {
		c.ConflictPolicy = value
	}
	if value := strings.TrimSpace(env[envPrefix+"OUTPUT_DIRECTORY"]); value != "" {
		c.Output.Directory = value
	}

	return nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var failed []string
			for _, fieldError := range validationErrors {
				failed = append(failed, fmt.Sprintf("%s (%s)", fieldError.Namespace(), fieldError.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(failed, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.Deadline(time.Now()); err != nil {
		return err
	}

	return nil
}

// Policy returns the parsed conflict policy
func (c *Config) Policy() (segments.ConflictPolicy, error) {
	return segments.ParseConflictPolicy(c.ConflictPolicy)
}

// Normalizer compiles the configured identifier rules, falling back to the
// default rules when none are set
func (c *Config) Normalizer() (*identifier.Normalizer, error) {
	if len(c.IdentifierRules) == 0 {
		return identifier.Default(), nil
	}

	return identifier.New(c.IdentifierRules...)
}

// Deadline is the zero time when no timeout is configured
func (c *Config) Deadline(start time.Time) (time.Time, error) {
	if strings.TrimSpace(c.Timeout) == "" {
		return time.Time{}, nil
	}

	timeout, err := iso8601.ParseISO8601(c.Timeout)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}

	deadline := timeout.Shift(start)
	if !deadline.After(start) {
		return time.Time{}, fmt.Errorf("invalid timeout %q: must be positive", c.Timeout)
	}

	return deadline, nil
}
