package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"catoseq/internal/apperr"
	"catoseq/internal/logging"
	"catoseq/internal/model"
)

// XLSXLoader implements Loader for an Excel workbook, adapted from the
// teacher's io/xlsx.go XLSXReader. It reads a single sheet (the named one,
// or the workbook's active sheet) as a header row plus data rows. When
// a header repeats, the last occurrence's column wins.
type XLSXLoader struct {
	SheetName string
}

func (x XLSXLoader) Load(path string) (model.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if strings.Contains(err.Error(), "no such file") {
			return nil, apperr.Wrap(apperr.InputNotFound, fmt.Sprintf("XLSX dataset '%s' not found", path), err)
		}
		return nil, apperr.Wrap(apperr.InputMalformed, fmt.Sprintf("XLSX dataset '%s' could not be opened", path), err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Logf(logging.Error, "XLSXLoader: failed to close '%s': %v", path, cerr)
		}
	}()

	sheet := x.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if sheet == "" {
		return nil, apperr.New(apperr.InputMalformed, fmt.Sprintf("XLSX dataset '%s' has no sheets", path))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperr.Wrap(apperr.InputMalformed, fmt.Sprintf("XLSX dataset '%s' sheet '%s' could not be read", path, sheet), err)
	}
	if len(rows) < 2 {
		logging.Logf(logging.Warning, "XLSXLoader: '%s' sheet '%s' has no data rows", path, sheet)
		return model.Dataset{}, nil
	}

	headers := rows[0]
	headerIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		headerIndex[h] = i // last duplicate wins
	}

	out := make(model.Dataset, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := model.Record{}
		for name, idx := range headerIndex {
			if idx >= len(row) {
				continue
			}
			if v := row[idx]; v != "" {
				record[name] = v
			}
		}
		out = append(out, record)
	}
	return out, nil
}
