package data

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DachengChen/paiData/applog"
	"github.com/mitchellh/go-homedir"
)

// Format identifies a supported file encoding.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatBSON  Format = "bson"
)

// SupportedFormats lists the file extensions LoadFile accepts.
var SupportedFormats = []Format{FormatCSV, FormatJSON, FormatJSONL, FormatBSON}

// FormatOf derives the format from a file name's extension.
func FormatOf(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, f := range SupportedFormats {
		if string(f) == ext {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported file format: %s", ext)
}

// LoadFile reads and decodes a data file. A leading ~ is expanded.
func LoadFile(path string) (*Dataset, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand path: %w", err)
	}
	if _, err := FormatOf(expanded); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return LoadBytes(filepath.Base(expanded), raw)
}

// LoadBytes decodes an in-memory payload whose format is given by name's extension.
func LoadBytes(name string, raw []byte) (*Dataset, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}

	var rows []Row
	switch format {
	case FormatCSV:
		var columns []string
		rows, columns, err = parseCSV(raw)
		if err != nil {
			return nil, err
		}
		ds, err := newWithColumns(name, rows, columns)
		if err != nil {
			return nil, err
		}
		logLoad(ds, format)
		return ds, nil
	case FormatJSON:
		rows, err = parseJSON(raw)
	case FormatJSONL:
		rows, err = parseJSONL(raw)
	case FormatBSON:
		rows, err = parseBSON(raw)
	}
	if err != nil {
		return nil, err
	}

	ds, err := New(name, rows)
	if err != nil {
		return nil, err
	}
	logLoad(ds, format)
	return ds, nil
}

func logLoad(ds *Dataset, format Format) {
	applog.Event("DATASET", "loaded %s (%s): %d rows, %d columns",
		ds.Name, format, ds.Metadata.RowCount, ds.Metadata.ColumnCount)
}
