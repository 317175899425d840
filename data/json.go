package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DachengChen/paiData/applog"
)

// parseJSON accepts an array of objects (non-objects are dropped) or a
// single object.
func parseJSON(raw []byte) ([]Row, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return nil, err
	}

	switch v := doc.(type) {
	case []any:
		rows := make([]Row, 0, len(v))
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				rows = append(rows, Row(obj))
			}
		}
		return rows, nil
	case map[string]any:
		return []Row{Row(v)}, nil
	default:
		return nil, errors.New("JSON must be an array of objects or a single object")
	}
}

// parseJSONL reads one object per non-blank line. Invalid lines are
// skipped and logged.
func parseJSONL(raw []byte) ([]Row, error) {
	var rows []Row
	for i, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			applog.Warn("skipping invalid JSONL line %d: %v", i+1, err)
			continue
		}
		if obj != nil {
			rows = append(rows, Row(obj))
		}
	}

	if len(rows) == 0 {
		return nil, errors.New("no valid JSON objects found in JSONL file")
	}
	return rows, nil
}
