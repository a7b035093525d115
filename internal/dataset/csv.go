package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"catoseq/internal/apperr"
	"catoseq/internal/logging"
	"catoseq/internal/model"
)

// CSVLoader implements Loader for UTF-8 CSV files with a header row,
// adapted from the teacher's io/csv.go CSVReader. Per spec.md §4.1, a
// field whose value is the empty string is omitted from the record rather
// than stored as an empty string.
type CSVLoader struct{}

func (CSVLoader) Load(path string) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.InputNotFound, fmt.Sprintf("CSV dataset '%s' not found", path), err)
		}
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperr.Wrap(apperr.InputMalformed, fmt.Sprintf("CSV dataset '%s' could not be parsed", path), err)
	}
	if len(rows) < 2 {
		logging.Logf(logging.Warning, "CSVLoader: '%s' has no data rows", path)
		return model.Dataset{}, nil
	}

	headers := rows[0]
	validHeaders := make(map[int]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		validHeaders[i] = h
	}

	out := make(model.Dataset, 0, len(rows)-1)
	for rowNum, row := range rows[1:] {
		if len(row) != len(headers) {
			logging.Logf(logging.Warning, "CSVLoader: '%s' row %d has %d fields, expected %d; skipping", path, rowNum+2, len(row), len(headers))
			continue
		}
		record := model.Record{}
		for idx, name := range validHeaders {
			if row[idx] == "" {
				continue
			}
			record[name] = row[idx]
		}
		out = append(out, record)
	}
	return out, nil
}
