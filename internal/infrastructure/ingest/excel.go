package ingest

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelRecords reads the first sheet of a workbook into raw records, one per
// row, keyed by the header row. Rows shorter than the header are padded with
// empty strings; fully empty rows are dropped.
func ExcelRecords(path string) ([]map[string]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := rows[0]
	var records []map[string]any
	for _, row := range rows[1:] {
		record := make(map[string]any, len(headers))
		empty := true
		for i, header := range headers {
			header = strings.TrimSpace(header)
			if header == "" {
				continue
			}
			var cell string
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			if cell != "" {
				empty = false
			}
			record[header] = cell
		}
		if !empty {
			records = append(records, record)
		}
	}
	return records, nil
}
