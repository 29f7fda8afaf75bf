package ingest

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadJSONFile reads raw records from a JSON export. A file holding a single
// object is treated as a one-record batch.
func LoadJSONFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var single map[string]any
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", path, err)
	}
	return []map[string]any{single}, nil
}
