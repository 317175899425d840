package chart

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/DachengChen/paiData/applog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	applog.SetOutput(io.Discard)
	os.Exit(m.Run())
}

const barAnswer = "Here:\n```chart\n{\"type\":\"bar\",\"data\":[{\"name\":\"A\",\"value\":1}]}\n```\nDone."

func TestExtractBar(t *testing.T) {
	d, ok := Extract(barAnswer)
	require.True(t, ok)

	assert.Equal(t, KindBar, d.Kind)
	assert.Equal(t, []map[string]any{{"name": "A", "value": 1.0}}, d.Series)
	assert.Equal(t, "name", d.XKey)
	assert.Equal(t, "value", d.YKey)
	assert.Equal(t, []string{"value"}, d.Keys)
	assert.Equal(t, DefaultColors, d.Colors)
	assert.Empty(t, d.Title)
}

func TestStripBar(t *testing.T) {
	assert.Equal(t, "Here:\nDone.", Strip(barAnswer))
}

func TestExtractAbsent(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no fence", "Just prose."},
		{"other language", "```json\n{\"type\":\"bar\",\"data\":[]}\n```"},
		{"invalid json", "```chart\n{type: bar}\n```"},
		{"missing data", "```chart\n{\"type\":\"bar\"}\n```"},
		{"data not array", "```chart\n{\"type\":\"bar\",\"data\":{\"a\":1}}\n```"},
		{"null data", "```chart\n{\"type\":\"bar\",\"data\":null}\n```"},
		{"missing type", "```chart\n{\"data\":[]}\n```"},
		{"unknown type", "```chart\n{\"type\":\"radar\",\"data\":[]}\n```"},
		{"not an object", "```chart\n[1,2,3]\n```"},
		{"unterminated", "```chart\n{\"type\":\"bar\",\"data\":[]}"},
		{"no newline after tag", "```chart {\"type\":\"bar\",\"data\":[]}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Extract(tt.text)
			assert.False(t, ok)
			assert.Nil(t, d)
		})
	}
}

func TestExtractFirstWins(t *testing.T) {
	text := "```chart\n{\"type\":\"pie\",\"data\":[]}\n```\nand\n```chart\n{\"type\":\"line\",\"data\":[]}\n```"
	d, ok := Extract(text)
	require.True(t, ok)
	assert.Equal(t, KindPie, d.Kind)
	assert.Equal(t, "and", Strip(text))
}

func TestExtractInvalidFirstDoesNotFallBack(t *testing.T) {
	text := "```chart\nnope\n```\n```chart\n{\"type\":\"line\",\"data\":[]}\n```"
	_, ok := Extract(text)
	assert.False(t, ok)
}

func TestParseDefaults(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		xKey   string
		yKey   string
		keys   []string
		colors []string
	}{
		{"scatter", `{"type":"scatter","data":[]}`, "x", "y", []string{"y"}, DefaultColors},
		{"explicit", `{"type":"line","data":[],"xKey":"month","yKey":"sales","keys":["sales","cost"],"colors":["#000"]}`,
			"month", "sales", []string{"sales", "cost"}, []string{"#000"}},
		{"yKey only", `{"type":"area","data":[],"yKey":"total"}`, "name", "total", []string{"total"}, DefaultColors},
		{"bad keys", `{"type":"bar","data":[],"keys":[1,"v",""],"xKey":5}`, "name", "value", []string{"v"}, DefaultColors},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Parse(tt.body)
			require.True(t, ok)
			assert.Equal(t, tt.xKey, d.XKey)
			assert.Equal(t, tt.yKey, d.YKey)
			assert.Equal(t, tt.keys, d.Keys)
			assert.Equal(t, tt.colors, d.Colors)
			assert.Equal(t, tt.body, d.Raw)
		})
	}
}

func TestParseDropsNonObjectPoints(t *testing.T) {
	d, ok := Parse(`{"type":"bar","title":"T","data":[{"name":"a","value":2},3,"x",null,{"name":"b"}]}`)
	require.True(t, ok)
	assert.Equal(t, "T", d.Title)
	assert.Len(t, d.Series, 2)
	assert.Equal(t, 3, d.Dropped)
}

func TestParseLogsDroppedPoints(t *testing.T) {
	var buf bytes.Buffer
	applog.SetOutput(&buf)
	t.Cleanup(func() { applog.SetOutput(io.Discard) })

	d, ok := Parse(`{"type":"bar","data":[{"name":"a","value":1}]}`)
	require.True(t, ok)
	assert.Zero(t, d.Dropped)
	assert.Empty(t, buf.String())

	_, ok = Parse(`{"type":"pie","title":"Mix","data":[1,{"name":"a","value":1}]}`)
	require.True(t, ok)
	assert.Contains(t, buf.String(), `dropped 1 of 2 data items`)
	assert.Contains(t, buf.String(), `\"Mix\"`)
}

func TestDefaultColorsNotShared(t *testing.T) {
	d, ok := Parse(`{"type":"bar","data":[]}`)
	require.True(t, ok)
	d.Colors[0] = "#fff"
	assert.Equal(t, "#8884d8", DefaultColors[0])
	assert.Equal(t, "#82ca9d", d.Color(7))
}

func TestStripIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"   plain text \n",
		barAnswer,
		"```chart\n{}\n```",
		"a\n```chart\nx\n```\n```chart\ny\n```\nb",
		"``````chart\nx\n```chart\ny\n```\n```\n",
		"```chart\n```chart\ninner\n```\n```\nend",
		"\n\n```chart\nbody\n```\n\n",
	}
	for _, in := range inputs {
		once := Strip(in)
		assert.Equal(t, once, Strip(once), "input %q", in)
		assert.NotContains(t, once, "```chart\n"+"x\n```")
	}
}

func TestStripNoFence(t *testing.T) {
	assert.Equal(t, "keep *this*\n\n```go\nx\n```", Strip("  keep *this*\n\n```go\nx\n```\n"))
}
