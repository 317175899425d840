// Package data turns uploaded files and Postgres query results into a
// uniform in-memory table that the ai package can describe to a model.
//
// Design decisions:
//   - A row is a field-name → value map; field sets may vary per row.
//   - Columns are the distinct field names in first-seen order.
//   - A Dataset is immutable once built; callers share it read-only.
package data

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ErrNoData is returned when a source decodes to zero rows.
var ErrNoData = errors.New("file contains no data")

// Row is one record of a dataset.
type Row map[string]any

// Metadata summarises a dataset.
type Metadata struct {
	RowCount    int
	ColumnCount int
	SampleSize  int
}

// Dataset is the tabular representation of a loaded source.
type Dataset struct {
	Name      string
	Rows      []Row
	Columns   []string
	Metadata  Metadata
	Truncated bool // true when a row cap cut the source short
}

// New builds a dataset, deriving columns from the rows' keys.
// Keys of each row are visited in sorted order.
func New(name string, rows []Row) (*Dataset, error) {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	return newWithColumns(name, rows, columns)
}

// newWithColumns builds a dataset whose column order is already known
// (CSV header, query field descriptions).
func newWithColumns(name string, rows []Row, columns []string) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return &Dataset{
		Name:    name,
		Rows:    rows,
		Columns: columns,
		Metadata: Metadata{
			RowCount:    len(rows),
			ColumnCount: len(columns),
			SampleSize:  min(5, len(rows)),
		},
	}, nil
}

// JSON encodes all rows as a compact JSON array without HTML escaping.
func (d *Dataset) JSON() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d.Rows); err != nil {
		return "", fmt.Errorf("encode rows: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Preview renders the first maxRows rows as a markdown table.
func (d *Dataset) Preview(maxRows int) string {
	if maxRows <= 0 {
		maxRows = 5
	}
	sample := d.Rows
	if len(sample) > maxRows {
		sample = sample[:maxRows]
	}

	var lines []string
	lines = append(lines, "| "+strings.Join(escapeCells(d.Columns), " | ")+" |")
	lines = append(lines, "|"+strings.Repeat("---|", len(d.Columns)))

	for _, row := range sample {
		values := make([]string, len(d.Columns))
		for i, col := range d.Columns {
			v, ok := row[col]
			if !ok || v == nil {
				values[i] = "-"
				continue
			}
			values[i] = truncateRunes(FormatValue(v), 30)
		}
		lines = append(lines, "| "+strings.Join(escapeCells(values), " | ")+" |")
	}

	if len(d.Rows) > maxRows {
		lines = append(lines, fmt.Sprintf("\n... and %d more rows", len(d.Rows)-maxRows))
	}

	return strings.Join(lines, "\n")
}

// FormatValue renders a cell value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case time.Time:
		return x.Format(time.RFC3339)
	case map[string]any, []any:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(raw)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "\n", " ")
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// uniqueColumns renames repeated header names so no value is lost when a
// record becomes a Row. The second "id" becomes "id_1", the third "id_2",
// skipping any suffix already taken by another column.
func uniqueColumns(names []string) []string {
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		count := seen[n]
		seen[n] = count + 1
		if count == 0 {
			out[i] = n
			continue
		}
		name := n + "_" + strconv.Itoa(count)
		for taken[name] {
			count++
			name = n + "_" + strconv.Itoa(count)
		}
		seen[n] = count + 1
		taken[name] = true
		out[i] = name
	}
	return out
}
