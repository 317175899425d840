package data

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/DachengChen/paiData/applog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMain(m *testing.M) {
	applog.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"sales.csv", FormatCSV, false},
		{"DUMP.BSON", FormatBSON, false},
		{"events.jsonl", FormatJSONL, false},
		{"data.json", FormatJSON, false},
		{"report.xlsx", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatOf(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported file format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadCSV(t *testing.T) {
	content := "region,revenue,active,note\nNorth,1200.5,true,\nSouth,980,FALSE,late\n\nEast,007,true,\"a, b\"\n"
	ds, err := LoadBytes("sales.csv", []byte(content))
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "revenue", "active", "note"}, ds.Columns)
	assert.Equal(t, Metadata{RowCount: 3, ColumnCount: 4, SampleSize: 3}, ds.Metadata)

	assert.Equal(t, "North", ds.Rows[0]["region"])
	assert.Equal(t, 1200.5, ds.Rows[0]["revenue"])
	assert.Equal(t, true, ds.Rows[0]["active"])
	assert.Nil(t, ds.Rows[0]["note"])
	assert.Equal(t, false, ds.Rows[1]["active"])
	assert.Equal(t, 7.0, ds.Rows[2]["revenue"])
	assert.Equal(t, "a, b", ds.Rows[2]["note"])
}

func TestLoadCSVErrors(t *testing.T) {
	_, err := LoadBytes("bad.csv", []byte("a,b\n1,2,3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSV parsing error")

	_, err = LoadBytes("header.csv", []byte("a,b\n"))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLoadJSON(t *testing.T) {
	ds, err := LoadBytes("items.json", []byte(`[{"b":2,"a":1},"skip",null,{"c":"x"}]`))
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Metadata.RowCount)
	assert.Equal(t, []string{"a", "b", "c"}, ds.Columns)

	ds, err = LoadBytes("one.json", []byte(`{"name":"solo"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Metadata.RowCount)

	_, err = LoadBytes("scalar.json", []byte(`42`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array of objects or a single object")

	_, err = LoadBytes("broken.json", []byte(`{"a":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")

	_, err = LoadBytes("empty.json", []byte(`[]`))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLoadJSONL(t *testing.T) {
	content := "{\"id\":1}\nnot json\n\n{\"id\":2,\"tag\":\"x\"}\n[1,2]\n"
	ds, err := LoadBytes("events.jsonl", []byte(content))
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Metadata.RowCount)
	assert.Equal(t, []string{"id", "tag"}, ds.Columns)

	_, err = LoadBytes("junk.jsonl", []byte("nope\nstill nope\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid JSON objects")
}

func TestLoadBSON(t *testing.T) {
	oid := primitive.NewObjectID()
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := bson.Marshal(bson.D{
		{Key: "_id", Value: oid},
		{Key: "name", Value: "Ada"},
		{Key: "visits", Value: int32(3)},
		{Key: "joined", Value: primitive.NewDateTimeFromTime(when)},
		{Key: "address", Value: bson.D{{Key: "city", Value: "London"}}},
		{Key: "tags", Value: bson.A{"a", "b"}},
	})
	require.NoError(t, err)
	second, err := bson.Marshal(bson.D{{Key: "name", Value: "Grace"}})
	require.NoError(t, err)

	ds, err := LoadBytes("people.bson", append(first, second...))
	require.NoError(t, err)
	require.Equal(t, 2, ds.Metadata.RowCount)

	row := ds.Rows[0]
	assert.Equal(t, oid.Hex(), row["_id"])
	assert.Equal(t, int64(3), row["visits"])
	joined, ok := row["joined"].(time.Time)
	require.True(t, ok)
	assert.True(t, when.Equal(joined))
	assert.Equal(t, map[string]any{"city": "London"}, row["address"])
	assert.Equal(t, []any{"a", "b"}, row["tags"])
	assert.Equal(t, "Grace", ds.Rows[1]["name"])

	_, err = LoadBytes("junk.bson", []byte{1, 2, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not parse BSON data")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	require.NoError(t, os.WriteFile(path, []byte("k,v\nx,1\n"), 0600))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "metrics.csv", ds.Name)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	rows := make([]Row, 0, 7)
	for i := 0; i < 7; i++ {
		rows = append(rows, Row{"id": float64(i), "label": strings.Repeat("x", 40)})
	}
	rows[1]["note"] = "a|b"
	ds, err := New("wide", rows)
	require.NoError(t, err)

	preview := ds.Preview(5)
	lines := strings.Split(preview, "\n")

	assert.Equal(t, "| id | label | note |", lines[0])
	assert.Equal(t, "|---|---|---|", lines[1])
	assert.Equal(t, "| 0 | "+strings.Repeat("x", 30)+" | - |", lines[2])
	assert.Contains(t, lines[3], `a\|b`)
	assert.True(t, strings.HasSuffix(preview, "... and 2 more rows"))
}

func TestDatasetJSON(t *testing.T) {
	ds, err := New("t", []Row{{"html": "<b>&</b>", "n": 1.5}})
	require.NoError(t, err)

	out, err := ds.JSON()
	require.NoError(t, err)
	assert.Equal(t, `[{"html":"<b>&</b>","n":1.5}]`, out)
}

func TestFormatRowCount(t *testing.T) {
	tests := map[int]string{
		42:         "42",
		1000:       "1k",
		1500:       "1.5k",
		9999:       "10k",
		12_400:     "12k",
		999_499:    "999k",
		999_500:    "1M",
		3_450_000:  "3.5M",
		12_000_000: "12M",
	}
	for n, want := range tests {
		assert.Equal(t, want, FormatRowCount(n), "n=%d", n)
	}
}

func TestShape(t *testing.T) {
	ds, err := New("t", []Row{{"a": 1.0}})
	require.NoError(t, err)
	assert.Equal(t, "1 row × 1 column", ds.Shape())
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "-", FormatAge(time.Time{}, now))
	assert.Equal(t, "just now", FormatAge(now.Add(-2*time.Second), now))
	assert.Equal(t, "42s ago", FormatAge(now.Add(-42*time.Second), now))
	assert.Equal(t, "5m ago", FormatAge(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", FormatAge(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2d ago", FormatAge(now.Add(-49*time.Hour), now))
}

func TestNormalizePG(t *testing.T) {
	id := [16]byte{0x12, 0x3e, 0x45, 0x67, 0xe8, 0x9b, 0x12, 0xd3, 0xa4, 0x56, 0x42, 0x66, 0x14, 0x17, 0x40, 0x00}
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000", normalizePG(id))
	assert.Equal(t, "raw", normalizePG([]byte("raw")))
	assert.Equal(t, int64(7), normalizePG(int32(7)))
	assert.Equal(t, "keep", normalizePG("keep"))
}

func TestUniqueColumns(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"distinct", []string{"a", "b"}, []string{"a", "b"}},
		{"repeated", []string{"id", "id", "id"}, []string{"id", "id_1", "id_2"}},
		{"suffix taken", []string{"id", "id_1", "id"}, []string{"id", "id_1", "id_2"}},
		{"empty names", []string{"", ""}, []string{"", "_1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, uniqueColumns(tt.in))
		})
	}
}

func TestLoadCSVDuplicateHeader(t *testing.T) {
	ds, err := LoadBytes("join.csv", []byte("id,name,id\n1,a,10\n2,b,20\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "id_1"}, ds.Columns)
	assert.Equal(t, 1.0, ds.Rows[0]["id"])
	assert.Equal(t, 10.0, ds.Rows[0]["id_1"])
	assert.Equal(t, 20.0, ds.Rows[1]["id_1"])
}
