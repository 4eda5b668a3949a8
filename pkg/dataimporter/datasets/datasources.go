package datasets

// DataSource groups the datasets published by one provider. Registry files
// hold one or more DataSource documents.
type DataSource struct {
	Identifier string    `yaml:"identifier"`
	Region     string    `yaml:"region"`
	Provider   Provider  `yaml:"provider"`
	Datasets   []DataSet `yaml:"datasets"`

	SourceAuthentication *SourceAuthentication `yaml:"authentication"`
}
