package chart

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const (
	plotHeight    = 10
	maxLabelWidth = 16
	minBarWidth   = 10
	barGlyph      = "█"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	legendGlyph = "■"
)

// plotColors pairs the asciigraph series colors with the terminal color
// used for the matching legend entry.
var plotColors = []struct {
	series asciigraph.AnsiColor
	legend lipgloss.Color
}{
	{asciigraph.Blue, "12"},
	{asciigraph.Green, "10"},
	{asciigraph.Yellow, "11"},
	{asciigraph.Red, "9"},
	{asciigraph.Cyan, "14"},
	{asciigraph.Magenta, "13"},
}

// Render draws d in at most width columns. Bar and pie charts become
// colored horizontal bars; line, area and scatter charts become ASCII plots.
// Keys that match no numeric field render as empty series.
func Render(d *Description, width int) string {
	if d == nil {
		return ""
	}
	if width < 30 {
		width = 30
	}

	var sb strings.Builder
	if d.Title != "" {
		sb.WriteString(titleStyle.Render(d.Title))
		sb.WriteString("\n")
	}

	var body string
	switch d.Kind {
	case KindBar:
		body = renderBars(d, width)
	case KindPie:
		body = renderPie(d, width)
	case KindScatter:
		body = renderScatter(d, width)
	default:
		body = renderLines(d, width)
	}
	sb.WriteString(body)
	return strings.TrimRight(sb.String(), "\n")
}

func renderBars(d *Description, width int) string {
	if len(d.Series) == 0 {
		return mutedStyle.Render("(no data)")
	}

	labels := make([]string, len(d.Series))
	labelWidth := 0
	maxVal := 0.0
	for i, rec := range d.Series {
		labels[i] = clip(label(rec[d.XKey], i), maxLabelWidth)
		if w := utf8.RuneCountInString(labels[i]); w > labelWidth {
			labelWidth = w
		}
		for _, k := range d.Keys {
			if v, ok := number(rec[k]); ok && math.Abs(v) > maxVal {
				maxVal = math.Abs(v)
			}
		}
	}
	barWidth := width - labelWidth - 14
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	var sb strings.Builder
	for i, rec := range d.Series {
		for j, k := range d.Keys {
			name := ""
			if j == 0 {
				name = labels[i]
			}
			v, ok := number(rec[k])
			bar := lipgloss.NewStyle().Foreground(lipgloss.Color(d.Color(j))).
				Render(strings.Repeat(barGlyph, scaled(v, maxVal, barWidth)))
			fmt.Fprintf(&sb, "%s │ %s %s\n", pad(name, labelWidth), bar, formatValue(v, ok))
		}
	}
	if len(d.Keys) > 1 {
		sb.WriteString(legend(d.Keys, func(i int) lipgloss.Color { return lipgloss.Color(d.Color(i)) }))
	}
	return sb.String()
}

func renderPie(d *Description, width int) string {
	total := 0.0
	for _, rec := range d.Series {
		if v, ok := number(rec[d.YKey]); ok && v > 0 {
			total += v
		}
	}
	if total == 0 {
		return mutedStyle.Render("(no data)")
	}

	labelWidth := 0
	for i, rec := range d.Series {
		if w := utf8.RuneCountInString(clip(label(rec[d.XKey], i), maxLabelWidth)); w > labelWidth {
			labelWidth = w
		}
	}
	barWidth := width - labelWidth - 22
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	var sb strings.Builder
	for i, rec := range d.Series {
		v, ok := number(rec[d.YKey])
		if !ok || v < 0 {
			v = 0
		}
		share := v / total
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(d.Color(i))).
			Render(strings.Repeat(barGlyph, scaled(share, 1, barWidth)))
		fmt.Fprintf(&sb, "%s │ %s %5.1f%% (%s)\n",
			pad(clip(label(rec[d.XKey], i), maxLabelWidth), labelWidth), bar, share*100, formatValue(v, ok))
	}
	return sb.String()
}

func renderLines(d *Description, width int) string {
	series := make([][]float64, 0, len(d.Keys))
	var names []string
	for _, k := range d.Keys {
		var ys []float64
		for _, rec := range d.Series {
			if v, ok := number(rec[k]); ok {
				ys = append(ys, v)
			}
		}
		if len(ys) > 0 {
			series = append(series, ys)
			names = append(names, k)
		}
	}
	if len(series) == 0 {
		return mutedStyle.Render(fmt.Sprintf("(no numeric data for %s)", strings.Join(d.Keys, ", ")))
	}

	caption := ""
	if n := len(d.Series); n > 0 {
		caption = fmt.Sprintf("%s: %s … %s", d.XKey, label(d.Series[0][d.XKey], 0), label(d.Series[n-1][d.XKey], n-1))
	}
	out := plot(series, width, caption)
	if len(names) > 1 {
		out += "\n" + legend(names, func(i int) lipgloss.Color { return plotColors[i%len(plotColors)].legend })
	}
	return out
}

func renderScatter(d *Description, width int) string {
	type point struct{ x, y float64 }
	var pts []point
	for _, rec := range d.Series {
		x, okX := number(rec[d.XKey])
		y, okY := number(rec[d.YKey])
		if okX && okY {
			pts = append(pts, point{x, y})
		}
	}
	if len(pts) == 0 {
		return mutedStyle.Render(fmt.Sprintf("(no numeric data for %s, %s)", d.XKey, d.YKey))
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].x < pts[j].x })

	ys := make([]float64, len(pts))
	for i, p := range pts {
		ys[i] = p.y
	}
	caption := fmt.Sprintf("%s by %s: %s … %s", d.YKey, d.XKey,
		formatValue(pts[0].x, true), formatValue(pts[len(pts)-1].x, true))
	return plot([][]float64{ys}, width, caption)
}

func plot(series [][]float64, width int, caption string) string {
	colors := make([]asciigraph.AnsiColor, len(series))
	for i := range series {
		colors[i] = plotColors[i%len(plotColors)].series
	}
	plotWidth := width - 12
	if plotWidth < minBarWidth {
		plotWidth = minBarWidth
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	)
}

func legend(names []string, color func(int) lipgloss.Color) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = lipgloss.NewStyle().Foreground(color(i)).Render(legendGlyph) + " " + n
	}
	return strings.Join(parts, "  ") + "\n"
}

func scaled(v, top float64, width int) int {
	if top <= 0 || v <= 0 {
		return 0
	}
	n := int(math.Round(v / top * float64(width)))
	if n == 0 {
		n = 1
	}
	if n > width {
		n = width
	}
	return n
}

// number reads a numeric field; numeric strings count.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}

func label(v any, i int) string {
	switch x := v.(type) {
	case nil:
		return strconv.Itoa(i + 1)
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func formatValue(v float64, ok bool) string {
	if !ok {
		return mutedStyle.Render("-")
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func pad(s string, n int) string {
	if w := utf8.RuneCountInString(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}
