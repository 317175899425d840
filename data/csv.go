package data

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// numberPattern accepts the numeric spellings a spreadsheet export produces.
var numberPattern = regexp.MustCompile(`^\s*-?(\d+\.?|\.\d+|\d+\.\d+)([eE][-+]?\d+)?\s*$`)

// parseCSV reads a header row followed by records. Values are typed:
// numbers become float64, true/false become bool, empty cells become nil.
func parseCSV(raw []byte) ([]Row, []string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = 0

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrNoData
		}
		return nil, nil, fmt.Errorf("CSV parsing error: %w", err)
	}
	header = uniqueColumns(header)

	var rows []Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("CSV parsing error: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}
		row := make(Row, len(header))
		for i, col := range header {
			row[col] = typeValue(record[i])
		}
		rows = append(rows, row)
	}

	return rows, header, nil
}

func typeValue(s string) any {
	switch s {
	case "":
		return nil
	case "true", "TRUE", "True":
		return true
	case "false", "FALSE", "False":
		return false
	}
	if numberPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return s
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
