// view_data.go: dataset overview.
//
// Shows where the current dataset came from, its shape, the column
// list with fill counts, and a preview table that scrolls sideways.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/DachengChen/paiData/data"
	tea "github.com/charmbracelet/bubbletea"
)

const maxPreviewRows = 200

type DataView struct {
	dataset  *data.Dataset
	source   string
	loadedAt time.Time
	rows     int
	viewport *Viewport
	width    int
	height   int
}

func NewDataView(previewRows int) *DataView {
	if previewRows <= 0 {
		previewRows = 5
	}
	return &DataView{
		rows:     previewRows,
		viewport: NewViewport(80, 20),
	}
}

func (v *DataView) Name() string { return "Data" }

func (v *DataView) WantsTextInput() bool { return false }

func (v *DataView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.SetSize(width-2, height-2)
}

func (v *DataView) ShortHelp() []KeyBinding {
	return []KeyBinding{
		{Key: "+/-", Desc: "rows"},
		{Key: "←/→", Desc: "scroll"},
		{Key: "w", Desc: "wrap"},
		{Key: "↑/↓", Desc: "scroll"},
	}
}

func (v *DataView) Init() tea.Cmd {
	v.refresh()
	return nil
}

// SetDataset replaces the dataset shown.
func (v *DataView) SetDataset(ds *data.Dataset, source string, loadedAt time.Time) {
	v.dataset = ds
	v.source = source
	v.loadedAt = loadedAt
	v.viewport.Home()
	v.refresh()
}

func (v *DataView) Update(msg tea.Msg) (View, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *DataView) handleKey(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "+", "=":
		if v.rows < maxPreviewRows {
			v.rows += 5
			v.refresh()
		}
	case "-":
		if v.rows > 5 {
			v.rows -= 5
			v.refresh()
		}
	case "w":
		v.viewport.ToggleWrap()
	case "up", "k":
		v.viewport.ScrollUp(1)
	case "down", "j":
		v.viewport.ScrollDown(1)
	case "left", "h":
		v.viewport.ScrollLeft(8)
	case "right", "l":
		v.viewport.ScrollRight(8)
	case "pgup":
		v.viewport.PageUp()
	case "pgdown":
		v.viewport.PageDown()
	case "g":
		v.viewport.Home()
	case "G":
		v.viewport.End()
	}
	return v, nil
}

func (v *DataView) refresh() {
	v.viewport.SetContentLines(v.render())
}

func (v *DataView) render() []string {
	ds := v.dataset
	if ds == nil {
		return []string{StyleDimmed.Render("No dataset loaded.")}
	}

	var lines []string
	lines = append(lines, StyleTitle.Render(ds.Name))
	lines = append(lines,
		fmt.Sprintf("%s %s   %s   %s %s",
			StyleDimmed.Render("source"), v.source,
			ds.Shape(),
			StyleDimmed.Render("loaded"), data.FormatAge(v.loadedAt, time.Now())))
	if ds.Truncated {
		lines = append(lines, StyleWarning.Render(
			fmt.Sprintf("Row limit reached: only the first %d rows were loaded.", len(ds.Rows))))
	}
	lines = append(lines, "")

	lines = append(lines, StyleBold.Render("Columns"))
	filled := fillCounts(ds)
	for _, col := range ds.Columns {
		lines = append(lines, fmt.Sprintf("  %-24s %s", ellipsize(col, 24),
			StyleDimmed.Render(fmt.Sprintf("%d/%d filled", filled[col], len(ds.Rows)))))
	}
	lines = append(lines, "")

	lines = append(lines, StyleBold.Render(fmt.Sprintf("Preview (%d rows)", min(v.rows, len(ds.Rows)))))
	lines = append(lines, strings.Split(ds.Preview(v.rows), "\n")...)
	return lines
}

// fillCounts counts non-nil values per column.
func fillCounts(ds *data.Dataset) map[string]int {
	counts := make(map[string]int, len(ds.Columns))
	for _, row := range ds.Rows {
		for k, val := range row {
			if val != nil {
				counts[k]++
			}
		}
	}
	return counts
}

func (v *DataView) View() string {
	return v.viewport.Render()
}
