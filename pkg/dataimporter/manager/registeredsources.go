package manager

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/travigo/idletracker/pkg/dataimporter/datasets"
	"gopkg.in/yaml.v3"
)

const DefaultDataSourcesDirectory = "data/datasources/"

// GetRegisteredDataSets loads every datasource definition in directory.
// A file may hold several YAML documents, one datasource each.
func GetRegisteredDataSets(directory string) ([]datasets.DataSet, error) {
	var registeredDatasets []datasets.DataSet

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

			loaded, err := parseDataSources(datasourceYaml)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			registeredDatasets = append(registeredDatasets, loaded...)

			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("load datasources directory: %w", err)
	}

	return registeredDatasets, nil
}

func parseDataSources(datasourceYaml []byte) ([]datasets.DataSet, error) {
	var loaded []datasets.DataSet

	decoder := yaml.NewDecoder(bytes.NewReader(datasourceYaml))

	for {
		var datasource datasets.DataSource
		err := decoder.Decode(&datasource)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if datasource.Identifier == "" {
			return nil, errors.New("datasource without identifier")
		}

		for _, dataset := range datasource.Datasets {
			dataset.Identifier = fmt.Sprintf("%s-%s", datasource.Identifier, dataset.Identifier)
			dataset.DataSourceRef = datasource.Identifier
			dataset.Provider = datasource.Provider

			if dataset.Format == "" {
				dataset.Format = datasets.DataSetFormatGTFSRealtime
			}

			if dataset.Label == "" {
				dataset.Label = defaultLabel(datasource.Identifier)
			}

			if isEmptyAuthentication(dataset.SourceAuthentication) && datasource.SourceAuthentication != nil {
				dataset.SourceAuthentication = *datasource.SourceAuthentication
			}

			loaded = append(loaded, dataset)
		}
	}

	return loaded, nil
}

// defaultLabel uses the last three characters of the datasource identifier, eg. us-nyc -> NYC
func defaultLabel(identifier string) string {
	label := strings.ToUpper(identifier)
	if len(label) > 3 {
		label = label[len(label)-3:]
	}

	return label
}

func isEmptyAuthentication(authentication datasets.SourceAuthentication) bool {
	return len(authentication.Query) == 0 &&
		len(authentication.Header) == 0 &&
		authentication.Basic.Username == "" &&
		authentication.Custom == ""
}
