package manager

import (
	"fmt"
	"net/url"

	"github.com/travigo/idletracker/pkg/dataimporter/datasets"
)

func GetDataset(directory string, identifier string) (datasets.DataSet, error) {
	registered, err := GetRegisteredDataSets(directory)
	if err != nil {
		return datasets.DataSet{}, err
	}

	for _, dataset := range registered {
		if dataset.Identifier == identifier {
			return dataset, nil
		}
	}

	return datasets.DataSet{}, fmt.Errorf("dataset %s could not be found", identifier)
}

// SelectDataSets returns the datasets with the given identifiers, or all of them when none are given
func SelectDataSets(registered []datasets.DataSet, identifiers []string) ([]datasets.DataSet, error) {
	if len(identifiers) == 0 {
		return registered, nil
	}

	byIdentifier := map[string]datasets.DataSet{}
	for _, dataset := range registered {
		byIdentifier[dataset.Identifier] = dataset
	}

	selected := make([]datasets.DataSet, 0, len(identifiers))
	for _, identifier := range identifiers {
		dataset, ok := byIdentifier[identifier]
		if !ok {
			return nil, fmt.Errorf("dataset %s could not be found", identifier)
		}

		selected = append(selected, dataset)
	}

	return selected, nil
}

func ValidateDataset(dataset datasets.DataSet) error {
	if dataset.Format != datasets.DataSetFormatGTFSRealtime {
		return fmt.Errorf("dataset %s: unrecognised format %s", dataset.Identifier, dataset.Format)
	}

	if !isValidUrl(dataset.Source) {
		return fmt.Errorf("dataset %s: source %q is not a valid URL", dataset.Identifier, dataset.Source)
	}

	if dataset.SourceAuthentication.Custom != "" {
		if _, ok := customAuthenticators[dataset.SourceAuthentication.Custom]; !ok {
			return fmt.Errorf("dataset %s: unknown custom authenticator %s", dataset.Identifier, dataset.SourceAuthentication.Custom)
		}
	}

	return nil
}

func isValidUrl(toTest string) bool {
	_, err := url.ParseRequestURI(toTest)
	if err != nil {
		return false
	}

	u, err := url.Parse(toTest)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}
