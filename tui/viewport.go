// viewport.go provides a reusable scrollable viewport component
// with both vertical and horizontal scrolling, pagination, and text wrapping.
//
// Content may carry ANSI styling (glamour output, lipgloss charts), so
// every width calculation counts printable cells rather than bytes.
package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Viewport is a scrollable text area with pagination.
type Viewport struct {
	width    int
	height   int
	content  []string // lines of content
	wrapped  []string // content after wrapping, valid when wrapText
	scrollY  int      // vertical scroll offset (line index)
	scrollX  int      // horizontal scroll offset (cell index)
	wrapText bool     // whether to wrap text instead of horizontal scroll
}

// NewViewport creates a viewport with the given dimensions.
func NewViewport(width, height int) *Viewport {
	return &Viewport{
		width:  width,
		height: height,
	}
}

// SetContent replaces the viewport content.
func (v *Viewport) SetContent(content string) {
	v.SetContentLines(strings.Split(content, "\n"))
}

// SetContentLines replaces the viewport content with pre-split lines.
func (v *Viewport) SetContentLines(lines []string) {
	v.content = lines
	v.rewrap()
	v.clampScroll()
}

// SetSize updates viewport dimensions.
func (v *Viewport) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.rewrap()
	v.clampScroll()
}

// SetWrap turns text wrapping on or off.
func (v *Viewport) SetWrap(on bool) {
	if v.wrapText == on {
		return
	}
	v.ToggleWrap()
}

// ToggleWrap toggles text wrapping.
func (v *Viewport) ToggleWrap() {
	v.wrapText = !v.wrapText
	v.scrollX = 0
	v.rewrap()
	v.clampScroll()
}

// Wrapped reports whether wrapping is on.
func (v *Viewport) Wrapped() bool { return v.wrapText }

// ScrollUp moves the viewport up by n lines.
func (v *Viewport) ScrollUp(n int) {
	v.scrollY -= n
	v.clampScroll()
}

// ScrollDown moves the viewport down by n lines.
func (v *Viewport) ScrollDown(n int) {
	v.scrollY += n
	v.clampScroll()
}

// ScrollLeft moves the viewport left.
func (v *Viewport) ScrollLeft(n int) {
	if !v.wrapText {
		v.scrollX -= n
		if v.scrollX < 0 {
			v.scrollX = 0
		}
	}
}

// ScrollRight moves the viewport right.
func (v *Viewport) ScrollRight(n int) {
	if !v.wrapText {
		v.scrollX += n
	}
}

// PageUp scrolls up by one page.
func (v *Viewport) PageUp() {
	v.ScrollUp(v.height)
}

// PageDown scrolls down by one page.
func (v *Viewport) PageDown() {
	v.ScrollDown(v.height)
}

// Home scrolls to the top.
func (v *Viewport) Home() {
	v.scrollY = 0
	v.scrollX = 0
}

// End scrolls to the bottom.
func (v *Viewport) End() {
	v.scrollY = v.maxScrollY()
}

// AtBottom reports whether the last line is visible.
func (v *Viewport) AtBottom() bool {
	return v.scrollY >= v.maxScrollY()
}

// Render returns the visible portion of the content.
func (v *Viewport) Render() string {
	if len(v.content) == 0 {
		return ""
	}

	var visibleLines []string

	if v.wrapText {
		visibleLines = v.renderWrapped()
	} else {
		visibleLines = v.renderScrolled()
	}

	// Pad to fill viewport height
	for len(visibleLines) < v.height {
		visibleLines = append(visibleLines, "")
	}

	indicator := v.scrollIndicator()
	content := strings.Join(visibleLines, "\n")
	if indicator == "" {
		return content
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, indicator)
}

// renderScrolled returns lines with horizontal offset applied.
func (v *Viewport) renderScrolled() []string {
	end := v.scrollY + v.height
	if end > len(v.content) {
		end = len(v.content)
	}

	var lines []string
	for i := v.scrollY; i < end; i++ {
		line := v.content[i]
		if v.scrollX > 0 {
			line = ansi.TruncateLeft(line, v.scrollX, "")
		}
		if v.width > 0 && lipgloss.Width(line) > v.width {
			line = truncate.String(line, uint(v.width))
		}
		lines = append(lines, line)
	}
	return lines
}

// renderWrapped returns the current page of wrapped lines.
func (v *Viewport) renderWrapped() []string {
	end := v.scrollY + v.height
	if v.scrollY >= len(v.wrapped) {
		return nil
	}
	if end > len(v.wrapped) {
		end = len(v.wrapped)
	}
	return v.wrapped[v.scrollY:end]
}

// rewrap word-wraps every line, then hard-wraps words longer than the
// width.
func (v *Viewport) rewrap() {
	v.wrapped = v.wrapped[:0]
	if !v.wrapText {
		return
	}
	for _, line := range v.content {
		if v.width <= 0 || lipgloss.Width(line) <= v.width {
			v.wrapped = append(v.wrapped, line)
			continue
		}
		w := wrap.String(wordwrap.String(line, v.width), v.width)
		v.wrapped = append(v.wrapped, strings.Split(w, "\n")...)
	}
}

func (v *Viewport) clampScroll() {
	maxY := v.maxScrollY()
	if v.scrollY > maxY {
		v.scrollY = maxY
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
}

func (v *Viewport) lineCount() int {
	if v.wrapText {
		return len(v.wrapped)
	}
	return len(v.content)
}

func (v *Viewport) maxScrollY() int {
	n := v.lineCount() - v.height
	if n < 0 {
		return 0
	}
	return n
}

func (v *Viewport) scrollIndicator() string {
	total := v.lineCount()
	if total <= v.height {
		return ""
	}

	pos := v.scrollY
	pct := (pos * 100) / total

	rule := v.width - 20
	if rule < 0 {
		rule = 0
	}
	return StyleDimmed.Render(
		strings.Repeat("─", rule) +
			" " + strconv.Itoa(pct) + "% " +
			"(" + strconv.Itoa(pos+1) + "/" + strconv.Itoa(total) + ")")
}
