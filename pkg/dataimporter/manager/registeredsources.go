package manager

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/travigo/transitrecon/pkg/dataimporter/datasets"
	"gopkg.in/yaml.v3"
)

// GetRegisteredDataSets walks a directory of yaml datasource files. Each file
// may hold several DataSource documents; dataset identifiers are prefixed with
// their datasource identifier.
func GetRegisteredDataSets(directory string) ([]datasets.DataSet, error) {
	var registeredDatasets []datasets.DataSet

	if directory == "" {
		return nil, nil
	}

	err := filepath.Walk(directory,
		func(path string, fileInfo os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if fileInfo.IsDir() {
				return nil
			}

			extension := filepath.Ext(path)
			if extension != ".yaml" && extension != ".yml" {
				return nil
			}

			log.Debug().Str("path", path).Msg("Loading datasource file")

			datasourceYaml, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			decoder := yaml.NewDecoder(bytes.NewReader(datasourceYaml))

			for {
				var datasource datasets.DataSource
				err := decoder.Decode(&datasource)
				if errors.Is(err, io.EOF) {
					break
				} else if err != nil {
					return fmt.Errorf("decoding %s: %w", path, err)
				}

				for _, dataset := range datasource.Datasets {
					if datasource.Identifier != "" {
						dataset.Identifier = fmt.Sprintf("%s-%s", datasource.Identifier, dataset.Identifier)
					}
					dataset.DataSourceRef = datasource.Identifier
					if dataset.Provider.Name == "" {
						dataset.Provider = datasource.Provider
					}
					if datasource.SourceAuthentication != nil && isZeroAuthentication(dataset.SourceAuthentication) {
						dataset.SourceAuthentication = *datasource.SourceAuthentication
					}

					registeredDatasets = append(registeredDatasets, dataset)
				}
			}

			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("loading datasources directory: %w", err)
	}

	return registeredDatasets, nil
}
