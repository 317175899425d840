// Package chart finds chart descriptions embedded in assistant answers and
// draws them in the terminal.
//
// An answer may contain one fenced block tagged "chart" whose body is a JSON
// object such as {"type":"bar","data":[{"name":"A","value":1}]}. Extract and
// Strip are independent passes over the same text: one returns the chart,
// the other the prose without any chart blocks.
package chart

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/DachengChen/paiData/applog"
)

// Kind is the chart type.
type Kind string

const (
	KindLine    Kind = "line"
	KindBar     Kind = "bar"
	KindPie     Kind = "pie"
	KindScatter Kind = "scatter"
	KindArea    Kind = "area"
)

// Valid reports whether k is a known chart type.
func (k Kind) Valid() bool {
	switch k {
	case KindLine, KindBar, KindPie, KindScatter, KindArea:
		return true
	}
	return false
}

// DefaultColors is used when a chart names no colors.
var DefaultColors = []string{"#8884d8", "#82ca9d", "#ffc658", "#ff7c7c", "#8dd1e1", "#d084d0"}

// Description is a chart with every optional field filled in.
type Description struct {
	Kind   Kind
	Title  string
	Series []map[string]any // one record per point or slice
	XKey   string           // category (or x) field
	YKey   string           // value (or y) field
	Keys   []string         // value fields plotted together
	Colors []string
	Raw    string // the fenced JSON body as written

	Dropped int // data items that were not objects
}

var (
	fencePattern = regexp.MustCompile("(?s)```chart\n(.*?)\n```")
	stripPattern = regexp.MustCompile("(?s)```chart\n.*?\n```\n?")
)

// Extract returns the chart in the first chart block of text. Missing or
// malformed blocks yield false, never an error.
func Extract(text string) (*Description, bool) {
	m := fencePattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return Parse(m[1])
}

// Parse decodes a chart block body and applies defaults.
func Parse(body string) (*Description, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, false
	}

	kindName, _ := raw["type"].(string)
	kind := Kind(kindName)
	if !kind.Valid() {
		return nil, false
	}
	points, ok := raw["data"].([]any)
	if !ok {
		return nil, false
	}

	d := &Description{Kind: kind, Raw: body}
	d.Title, _ = raw["title"].(string)
	d.XKey, _ = raw["xKey"].(string)
	d.YKey, _ = raw["yKey"].(string)
	d.Keys = stringList(raw["keys"])
	d.Colors = stringList(raw["colors"])

	d.Series = make([]map[string]any, 0, len(points))
	for _, p := range points {
		if rec, ok := p.(map[string]any); ok {
			d.Series = append(d.Series, rec)
			continue
		}
		d.Dropped++
	}
	if d.Dropped > 0 {
		applog.Warn("chart %q: dropped %d of %d data items that are not objects", d.Title, d.Dropped, len(points))
	}

	d.normalize()
	return d, true
}

// normalize fills defaults so rendering never checks for absent fields.
func (d *Description) normalize() {
	if d.XKey == "" {
		d.XKey = "name"
		if d.Kind == KindScatter {
			d.XKey = "x"
		}
	}
	if d.YKey == "" {
		d.YKey = "value"
		if d.Kind == KindScatter {
			d.YKey = "y"
		}
	}
	if len(d.Keys) == 0 {
		d.Keys = []string{d.YKey}
	}
	if len(d.Colors) == 0 {
		d.Colors = append([]string(nil), DefaultColors...)
	}
}

// Color returns the color for the i-th series or slice, cycling the palette.
func (d *Description) Color(i int) string {
	return d.Colors[i%len(d.Colors)]
}

// Strip removes every chart block from text and trims the result.
// Strip(Strip(x)) == Strip(x).
func Strip(text string) string {
	for {
		next := stripPattern.ReplaceAllString(text, "")
		if next == text {
			break
		}
		text = next
	}
	return strings.TrimSpace(text)
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
