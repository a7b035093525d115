package dataset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"catoseq/internal/apperr"
	"catoseq/internal/logging"
	"catoseq/internal/model"
)

// YAMLLoader implements Loader for a YAML dataset file: a list of mappings,
// with a single top-level mapping tolerated as a one-record dataset,
// adapted from the teacher's io/yaml.go YAMLReader.
type YAMLLoader struct{}

func (YAMLLoader) Load(path string) (model.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.InputNotFound, fmt.Sprintf("YAML dataset '%s' not found", path), err)
		}
		return nil, err
	}

	var records []map[string]model.Value
	listErr := yaml.Unmarshal(data, &records)
	if listErr == nil {
		if records == nil {
			return model.Dataset{}, nil
		}
		return toDataset(records), nil
	}

	var single map[string]model.Value
	if errMap := yaml.Unmarshal(data, &single); errMap == nil {
		if single == nil {
			return model.Dataset{model.Record{}}, nil
		}
		logging.Logf(logging.Debug, "YAMLLoader: '%s' is a single mapping, loading as one record", path)
		return model.Dataset{model.Record(single)}, nil
	}

	return nil, apperr.Wrap(apperr.InputMalformed, fmt.Sprintf("YAML dataset '%s' could not be parsed", path), listErr)
}
