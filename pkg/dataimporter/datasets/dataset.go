package datasets

// DataSet is one input of a reconciliation run. Source is a local file, a
// local directory (segments only) or an http(s) URL.
type DataSet struct {
	Identifier    string      `yaml:"identifier" validate:"required"`
	DataSourceRef string      `yaml:"-"`
	Kind          DataSetKind `yaml:"kind" validate:"required,oneof=segments sumo zones"`

	Provider Provider `yaml:"provider"`

	Source               string               `yaml:"source" validate:"required"`
	SourceAuthentication SourceAuthentication `yaml:"authentication"`

	// EPSG code or URN assumed when a GeoJSON source declares no crs
	CRS string `yaml:"crs"`

	// Zone filter expression, zones datasets only
	Filter string `yaml:"filter"`
}

type SourceAuthentication struct {
	Query  map[string]string `yaml:"query"`
	Header map[string]string `yaml:"header"`
	Basic  struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"basic"`
}

type DataSetKind string

const (
	DataSetKindSegments DataSetKind = "segments"
	DataSetKindSUMO     DataSetKind = "sumo"
	DataSetKindZones    DataSetKind = "zones"
)

type Provider struct {
	Name    string `yaml:"name"`
	Website string `yaml:"website"`
}
