package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"catoseq/internal/apperr"
	"catoseq/internal/logging"
	"catoseq/internal/model"
)

// JSONLoader implements Loader for a JSON dataset file: an array of
// objects, with a single top-level object tolerated as a one-record
// dataset, adapted from the teacher's io/json.go JSONReader.
type JSONLoader struct{}

func (JSONLoader) Load(path string) (model.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.InputNotFound, fmt.Sprintf("JSON dataset '%s' not found", path), err)
		}
		return nil, err
	}

	var records []map[string]model.Value
	listErr := json.Unmarshal(data, &records)
	if listErr == nil {
		return toDataset(records), nil
	}

	var single map[string]model.Value
	if err := json.Unmarshal(data, &single); err == nil {
		logging.Logf(logging.Debug, "JSONLoader: '%s' is a single object, loading as one record", path)
		return model.Dataset{model.Record(single)}, nil
	}

	return nil, apperr.Wrap(apperr.InputMalformed, fmt.Sprintf("JSON dataset '%s' could not be parsed", path), listErr)
}

func toDataset(records []map[string]model.Value) model.Dataset {
	out := make(model.Dataset, len(records))
	for i, r := range records {
		out[i] = model.Record(r)
	}
	return out
}
