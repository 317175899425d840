// view_chat.go: chat view.
//
// Questions are answered by the session on a background goroutine.
// Deltas arrive as StreamDeltaMsg through a channel that is read one
// message per command, so the UI stays responsive while streaming.
// Settled answers are rendered as markdown with their chart on top.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/chart"
	"github.com/DachengChen/paiData/chat"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

type ChatView struct {
	session  *chat.Session
	viewport *Viewport
	input    textinput.Model
	spinner  spinner.Model

	stream  <-chan tea.Msg
	cancel  context.CancelFunc
	pending string // question shown until the transcript catches up
	base    int    // transcript length when pending was asked

	md       *glamour.TermRenderer
	mdWidth  int
	rendered map[uuid.UUID]string // settled turn → rendered block at mdWidth

	err    error
	status string
	width  int
	height int
}

func NewChatView(session *chat.Session) *ChatView {
	ti := textinput.New()
	ti.Prompt = StylePrompt.Render("Ask> ")
	ti.Placeholder = "ask a question about your data"
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StyleDimmed

	return &ChatView{
		session:  session,
		viewport: NewViewport(80, 20),
		input:    ti,
		spinner:  sp,
		rendered: make(map[uuid.UUID]string),
	}
}

func (v *ChatView) Name() string { return "Chat" }

func (v *ChatView) WantsTextInput() bool { return true }

func (v *ChatView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = width - 8
	v.viewport.SetSize(width-2, height-4)
	v.refresh()
}

func (v *ChatView) ShortHelp() []KeyBinding {
	if v.streaming() {
		return []KeyBinding{
			{Key: "Esc", Desc: "cancel"},
			{Key: "PgUp/PgDn", Desc: "scroll"},
		}
	}
	return []KeyBinding{
		{Key: "Enter", Desc: "send"},
		{Key: "Ctrl+Y", Desc: "copy answer"},
		{Key: "Ctrl+G", Desc: "copy chart"},
		{Key: "Ctrl+L", Desc: "clear"},
		{Key: "PgUp/PgDn", Desc: "scroll"},
	}
}

func (v *ChatView) Init() tea.Cmd {
	v.refresh()
	return textinput.Blink
}

// Reset drops rendered state after the conversation was cleared.
func (v *ChatView) Reset() {
	v.rendered = make(map[uuid.UUID]string)
	v.err = nil
	v.status = ""
	v.refresh()
}

func (v *ChatView) streaming() bool { return v.stream != nil }

func (v *ChatView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case StreamDeltaMsg:
		v.pending = ""
		v.refresh()
		return v, waitForStream(v.stream)

	case StreamDoneMsg:
		v.finish(msg.Err)
		return v, nil

	case ClipboardMsg:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.err = nil
			v.status = "Copied " + msg.What + " to clipboard"
		}
		return v, nil

	case spinner.TickMsg:
		if !v.streaming() {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *ChatView) handleKey(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "enter":
		cmd := v.ask(v.input.Value())
		if cmd == nil {
			return v, nil
		}
		v.input.Reset()
		return v, tea.Batch(cmd, v.spinner.Tick)
	case "esc":
		if v.cancel != nil {
			v.cancel()
			v.status = "Cancelling..."
		}
		return v, nil
	case "ctrl+l":
		if err := v.session.Transcript().Reset(); err != nil {
			v.err = err
			return v, nil
		}
		v.Reset()
		return v, nil
	case "ctrl+y":
		return v, v.copyAnswer()
	case "ctrl+g":
		return v, v.copyChart()
	case "ctrl+k", "up":
		v.viewport.ScrollUp(1)
		return v, nil
	case "ctrl+j", "down":
		v.viewport.ScrollDown(1)
		return v, nil
	case "pgup":
		v.viewport.PageUp()
		return v, nil
	case "pgdown":
		v.viewport.PageDown()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask starts streaming an answer and returns the command that reads the
// first message off the stream. It returns nil when nothing was started.
func (v *ChatView) ask(question string) tea.Cmd {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}
	if v.streaming() || v.session.Busy() {
		v.err = chat.ErrBusy
		return nil
	}

	v.base = v.session.Transcript().Len()
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan tea.Msg, 64)
	session := v.session

	go func() {
		defer close(ch)
		turn, err := session.Ask(ctx, question, func(t chat.Turn) {
			select {
			case ch <- StreamDeltaMsg{Turn: t}:
			case <-ctx.Done():
			}
		})
		ch <- StreamDoneMsg{Turn: turn, Err: err}
	}()

	v.stream = ch
	v.cancel = cancel
	v.pending = question
	v.err = nil
	v.status = ""
	v.refresh()
	v.viewport.End()
	return waitForStream(ch)
}

// waitForStream reads the next message from an answer stream.
func waitForStream(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (v *ChatView) finish(err error) {
	if v.cancel != nil {
		v.cancel()
	}
	v.stream = nil
	v.cancel = nil
	v.pending = ""
	v.status = ""
	switch {
	case err == nil:
		v.err = nil
	case errors.Is(err, context.Canceled):
		v.status = "Cancelled"
	default:
		v.err = err
	}
	v.refresh()
	v.viewport.End()
}

func (v *ChatView) copyAnswer() tea.Cmd {
	turn, ok := v.session.Transcript().LastAssistant()
	if !ok || turn.InProgress {
		v.err = errors.New("no answer to copy")
		return nil
	}
	text := v.session.Split(turn).Prose
	return copyCmd("answer", text)
}

func (v *ChatView) copyChart() tea.Cmd {
	turn, ok := v.session.Transcript().LastAssistant()
	if !ok || turn.InProgress {
		v.err = errors.New("no chart to copy")
		return nil
	}
	split := v.session.Split(turn)
	if !split.HasChart() {
		v.err = errors.New("last answer has no chart")
		return nil
	}
	return copyCmd("chart", split.Chart.Raw)
}

func copyCmd(what, text string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardMsg{What: what, Err: clipboard.WriteAll(text)}
	}
}

// ─────────────────────────────────────────────────────────────
// Rendering
// ─────────────────────────────────────────────────────────────

func (v *ChatView) refresh() {
	follow := v.viewport.AtBottom()
	v.viewport.SetContentLines(v.renderChat())
	if follow {
		v.viewport.End()
	}
}

func (v *ChatView) renderChat() []string {
	var lines []string

	header := StyleTitle.Render("Chat") + " " +
		StyleDimmed.Render("("+v.session.Provider().Name()+")")
	lines = append(lines, header)

	turns := v.session.Transcript().Turns()
	if len(turns) == 0 && v.pending == "" {
		lines = append(lines, v.welcome()...)
		return lines
	}

	for _, t := range turns {
		lines = append(lines, strings.Split(v.renderTurn(t), "\n")...)
		lines = append(lines, "")
	}
	if v.pending != "" && len(turns) == v.base {
		lines = append(lines, StyleUser.Render("You"), "  "+v.pending, "")
	}
	if v.streaming() {
		lines = append(lines, v.spinner.View()+StyleDimmed.Render(" streaming..."))
	}
	return lines
}

func (v *ChatView) welcome() []string {
	ds := v.session.Dataset()
	if ds == nil {
		return []string{
			StyleWarning.Render("No dataset loaded."),
			StyleDimmed.Render("Press Esc then :load <file> or go back to the Load screen."),
		}
	}
	return []string{
		fmt.Sprintf("Ask anything about %s (%d rows, %d columns):",
			StyleBold.Render(ds.Name), len(ds.Rows), len(ds.Columns)),
		"  • summaries and totals",
		"  • outliers and trends",
		"  • a chart of any breakdown",
		"",
		StyleDimmed.Render("Type your question and press Enter."),
	}
}

func (v *ChatView) renderTurn(t chat.Turn) string {
	width := v.contentWidth()
	switch {
	case t.Role == ai.RoleUser:
		return StyleUser.Render("You") + "\n" + indent(t.Text)
	case t.Failed:
		return StyleAssistant.Render("AI") + "\n" + StyleError.Render(indent(t.Text))
	case t.InProgress:
		return StyleAssistant.Render("AI") + "\n" + indent(t.Text)
	}

	if out, ok := v.rendered[t.ID]; ok && v.mdWidth == width {
		return out
	}
	out := StyleAssistant.Render("AI") + "\n" + v.renderAnswer(v.session.Split(t), width)
	v.rendered[t.ID] = out
	return out
}

// renderAnswer draws the chart first, then the prose as markdown.
func (v *ChatView) renderAnswer(split chart.Split, width int) string {
	var b strings.Builder
	if split.HasChart() {
		b.WriteString(StyleChart.Render(chart.Render(split.Chart, width-4)))
		b.WriteString("\n")
	}
	if split.Prose != "" {
		b.WriteString(v.markdown(split.Prose, width))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v *ChatView) markdown(text string, width int) string {
	if v.md == nil || v.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return indent(text)
		}
		v.md = r
		v.mdWidth = width
		v.rendered = make(map[uuid.UUID]string)
	}
	out, err := v.md.Render(text)
	if err != nil {
		return indent(text)
	}
	return strings.Trim(out, "\n")
}

func (v *ChatView) contentWidth() int {
	w := v.width - 4
	if w < 30 {
		w = 30
	}
	return w
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}

func (v *ChatView) View() string {
	prompt := v.input.View()
	if v.streaming() {
		prompt = StylePrompt.Render("Ask> ") + StyleDimmed.Render("waiting for response... (esc to cancel)")
	}

	var status string
	switch {
	case v.err != nil:
		status = StyleError.Render("✗ " + v.err.Error())
	case v.status != "":
		status = StyleSuccess.Render("✓ " + v.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left, prompt, status, v.viewport.Render())
}
