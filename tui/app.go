// app.go is the top-level Bubble Tea model that orchestrates all views.
//
// Flow:
//  1. Start with LoadView (data source + AI settings), unless a dataset
//     was given on the command line
//  2. On a successful load → switch to the Chat/Data tabs
//  3. Ctrl+N (or :back) returns to the load screen for another dataset
//
// Key design decisions:
//   - Two phases: "loading" and "chatting"
//   - Tab-based navigation between Chat and Data
//   - Command mode (`:`) for quick actions from the Data tab
//   - Help overlay (`?`) toggled on/off outside text input
//   - Stream messages always go to the chat view, whichever tab is shown
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/applog"
	"github.com/DachengChen/paiData/chat"
	"github.com/DachengChen/paiData/config"
	"github.com/DachengChen/paiData/data"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const appVersion = "0.1.0"

// Tab indices in the chatting phase.
const (
	TabChat = iota
	TabData
)

// AppPhase tracks whether a dataset is loaded yet.
type AppPhase int

const (
	PhaseLoad AppPhase = iota
	PhaseMain
)

// InputMode determines what keystrokes do in main phase.
type InputMode int

const (
	ModeNormal InputMode = iota
	ModeCommand
)

// App is the root Bubble Tea model.
type App struct {
	// Phase management
	phase    AppPhase
	loadView *LoadView
	store    *config.SourceStore

	// Chatting state
	session   *chat.Session
	chatView  *ChatView
	dataView  *DataView
	views     []View
	activeTab int
	appConfig *config.AppConfig
	source    string

	// UI state
	width     int
	height    int
	mode      InputMode
	cmdInput  string
	showHelp  bool
	statusMsg string
}

// NewApp creates the application starting with the load screen.
func NewApp(store *config.SourceStore, session *chat.Session, appCfg *config.AppConfig) *App {
	a := &App{
		phase:     PhaseLoad,
		loadView:  NewLoadView(store, appCfg),
		store:     store,
		session:   session,
		chatView:  NewChatView(session),
		dataView:  NewDataView(appCfg.Data.PreviewRows),
		appConfig: appCfg,
	}
	a.views = []View{a.chatView, a.dataView}
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	if a.phase == PhaseMain {
		return a.views[a.activeTab].Init()
	}
	return a.loadView.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case DatasetLoadedMsg:
		return a, a.enterMain(msg)

	case LoadErrorMsg:
		applog.Warn("load failed: %v", msg.Err)
		if a.phase == PhaseMain {
			a.statusMsg = StyleError.Render("✗ " + msg.Err.Error())
			return a, nil
		}
		updated, cmd := a.loadView.Update(msg)
		a.loadView = updated.(*LoadView)
		return a, cmd

	case StreamDeltaMsg, StreamDoneMsg, ClipboardMsg, spinner.TickMsg:
		_, cmd := a.chatView.Update(msg)
		return a, cmd

	case StatusMsg:
		a.statusMsg = string(msg)
		return a, nil
	}

	if a.phase == PhaseLoad {
		return a.updateLoad(msg)
	}
	return a.updateMain(msg)
}

// resize propagates the terminal size to every view.
func (a *App) resize() {
	// header(1) + border(2) + helpbar(1) = 4 lines of chrome
	contentH := a.height - 4
	contentW := a.width - 2 // border left+right
	a.loadView.SetSize(contentW, contentH)
	// Header(1) + Status(1) + Slack(1) + Borders(2) = 5 lines chrome
	for _, v := range a.views {
		v.SetSize(contentW, contentH-1)
	}
}

// enterMain installs a freshly loaded dataset and switches to chatting.
func (a *App) enterMain(msg DatasetLoadedMsg) tea.Cmd {
	if err := a.session.SetDataset(msg.Dataset); err != nil {
		if errors.Is(err, chat.ErrBusy) {
			a.statusMsg = StyleWarning.Render("Wait for the current answer (or press Esc) before loading.")
			return nil
		}
		a.statusMsg = StyleError.Render("✗ " + err.Error())
		return nil
	}

	// Recreate AI provider from (potentially updated) config
	p, err := ai.NewProvider(a.appConfig.AI)
	if err != nil {
		applog.Warn("ai provider unavailable, using placeholder: %v", err)
		p = ai.NewPlaceholder()
		a.statusMsg = StyleWarning.Render("AI: " + err.Error() + " (using placeholder answers)")
	} else {
		a.statusMsg = ""
	}
	_ = a.session.SetProvider(p)

	a.source = msg.Source
	a.dataView.SetDataset(msg.Dataset, msg.Source, msg.LoadedAt)
	a.chatView.Reset()
	a.loadView.loading = false
	a.phase = PhaseMain
	a.activeTab = TabChat
	a.resize()
	applog.Info("dataset ready: %s (%d rows) via %s", msg.Dataset.Name, len(msg.Dataset.Rows), p.Name())
	return a.views[a.activeTab].Init()
}

func (a *App) updateLoad(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "esc":
			if !a.loadView.editing && a.session.Dataset() != nil {
				a.phase = PhaseMain
				return a, a.views[a.activeTab].Init()
			}
		}
	}

	updated, cmd := a.loadView.Update(msg)
	a.loadView = updated.(*LoadView)
	return a, cmd
}

func (a *App) updateMain(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Forward other messages to active view
	return a, a.forward(msg)
}

func (a *App) forward(msg tea.Msg) tea.Cmd {
	if a.activeTab >= len(a.views) {
		return nil
	}
	updatedView, cmd := a.views[a.activeTab].Update(msg)
	a.views[a.activeTab] = updatedView
	return cmd
}

// handleKey processes keyboard input in main phase.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.mode == ModeCommand {
		return a.handleCommandMode(msg)
	}
	return a.handleNormalMode(msg)
}

func (a *App) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Keys that work everywhere, including while typing a question.
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "tab":
		return a.switchTab((a.activeTab + 1) % len(a.views))
	case "shift+tab":
		return a.switchTab((a.activeTab + len(a.views) - 1) % len(a.views))
	case "f1":
		return a.switchTab(TabChat)
	case "f2":
		return a.switchTab(TabData)
	case "ctrl+n":
		a.phase = PhaseLoad
		return a, nil
	}

	// When the active view is accepting text input (chat),
	// let everything else pass through.
	if a.views[a.activeTab].WantsTextInput() {
		return a, a.forward(msg)
	}

	switch msg.String() {
	case ":":
		a.mode = ModeCommand
		a.cmdInput = ""
		return a, nil

	case "?":
		a.showHelp = !a.showHelp
		return a, nil

	case "q":
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

func (a *App) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		cmd := a.executeCommand(a.cmdInput)
		a.mode = ModeNormal
		a.cmdInput = ""
		return a, cmd

	case tea.KeyEsc:
		a.mode = ModeNormal
		a.cmdInput = ""
		return a, nil

	case tea.KeyBackspace:
		if r := []rune(a.cmdInput); len(r) > 0 {
			a.cmdInput = string(r[:len(r)-1])
		}
		return a, nil

	case tea.KeySpace:
		a.cmdInput += " "
		return a, nil

	case tea.KeyRunes:
		a.cmdInput += string(msg.Runes)
		return a, nil
	}
	return a, nil
}

func (a *App) switchTab(idx int) (tea.Model, tea.Cmd) {
	if idx >= 0 && idx < len(a.views) {
		a.activeTab = idx
		a.showHelp = false
		return a, a.views[a.activeTab].Init()
	}
	return a, nil
}

func (a *App) executeCommand(input string) tea.Cmd {
	input = strings.TrimSpace(input)
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "q", "quit":
		return tea.Quit
	case "back":
		a.phase = PhaseLoad
		return nil
	case "chat":
		_, cmd := a.switchTab(TabChat)
		return cmd
	case "data":
		_, cmd := a.switchTab(TabData)
		return cmd
	case "clear":
		if err := a.session.Transcript().Reset(); err != nil {
			a.statusMsg = StyleError.Render("✗ " + err.Error())
			return nil
		}
		a.chatView.Reset()
		a.statusMsg = "conversation cleared"
		return nil
	case "load":
		if arg == "" {
			a.statusMsg = "usage: :load <file>"
			return nil
		}
		a.statusMsg = "loading " + arg + "..."
		return loadFileCmd(arg)
	case "provider":
		return a.switchProvider(arg)
	default:
		a.statusMsg = "unknown command: " + input
		return nil
	}
}

// switchProvider changes the AI backend for the following questions.
func (a *App) switchProvider(name string) tea.Cmd {
	cfg := a.appConfig.AI
	cfg.Provider = name
	p, err := ai.NewProvider(cfg)
	if err != nil {
		a.statusMsg = StyleError.Render("✗ " + err.Error())
		return nil
	}
	if err := a.session.SetProvider(p); err != nil {
		a.statusMsg = StyleError.Render("✗ " + err.Error())
		return nil
	}
	a.appConfig.AI.Provider = name
	a.statusMsg = "provider: " + p.Name()
	return nil
}

func loadFileCmd(path string) tea.Cmd {
	return func() tea.Msg {
		ds, err := data.LoadFile(path)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}
		return DatasetLoadedMsg{Dataset: ds, Source: path, LoadedAt: time.Now()}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	header := a.renderHeader()

	if a.phase == PhaseLoad {
		frame := StyleBorder.
			Width(a.width - 2).
			Height(a.height - 3). // header + helpbar + border chrome
			Render(a.loadView.View())
		return lipgloss.JoinVertical(lipgloss.Left, header, frame, a.renderLoadHelpBar())
	}

	var inner string
	if a.showHelp {
		inner = a.renderHelp()
	} else {
		inner = lipgloss.JoinVertical(lipgloss.Left, a.renderTabBar(), a.views[a.activeTab].View())
	}

	// Frame height = Total - Header(1) - Status(1) - Slack(2)
	frameHeight := a.height - 4
	if frameHeight < 0 {
		frameHeight = 0
	}

	frame := StyleBorder.
		Width(a.width - 2).
		Height(frameHeight).
		Render(inner)

	return header + "\n" + frame + "\n" + a.renderStatusBar()
}

// renderHeader draws a simple text bar: logo + version + dataset info.
func (a *App) renderHeader() string {
	logo := StyleBold.Render("📊 paiData")
	version := StyleDimmed.Render(" v" + appVersion)

	content := logo + version

	if ds := a.session.Dataset(); ds != nil {
		content += StyleSuccess.Render(fmt.Sprintf("  ⚡ %s (%s rows)",
			ds.Name, data.FormatRowCount(len(ds.Rows))))
	}
	content += StyleDimmed.Render("  " + a.session.Provider().Name())

	// Fill gap to right align dimensions
	right := StyleDimmed.Render(fmt.Sprintf("%d×%d", a.width, a.height))
	gap := a.width - lipgloss.Width(content) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Render(content + strings.Repeat(" ", gap) + right)
}

func (a *App) renderTabBar() string {
	var tabs []string
	for i, v := range a.views {
		label := fmt.Sprintf("F%d %s", i+1, v.Name())
		if i == a.activeTab {
			tabs = append(tabs, StyleTabActive.Render(label))
		} else {
			tabs = append(tabs, StyleTabInactive.Render(label))
		}
	}
	return strings.Join(tabs, StyleDimmed.Render("│"))
}

func (a *App) renderLoadHelpBar() string {
	return lipgloss.NewStyle().
		Width(a.width).
		Padding(0, 1).
		Render(joinHelp(a.loadView.ShortHelp()))
}

func joinHelp(items []KeyBinding) string {
	var parts []string
	for _, h := range items {
		parts = append(parts, StyleHelpKey.Render(h.Key)+" "+StyleHelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, StyleDimmed.Render("  │  "))
}

func (a *App) renderStatusBar() string {
	var content string

	switch {
	case a.mode == ModeCommand:
		content = StylePrompt.Render(":") + a.cmdInput + "█"
	case a.statusMsg != "":
		content = a.statusMsg
	default:
		content = joinHelp(a.getHelpItems())
	}

	return StyleStatusBar.Width(a.width).Render(content)
}

func (a *App) getHelpItems() []KeyBinding {
	global := []KeyBinding{
		{Key: "Tab", Desc: "switch"},
		{Key: "Ctrl+N", Desc: "new data"},
		{Key: "Ctrl+C", Desc: "quit"},
	}
	return append(a.views[a.activeTab].ShortHelp(), global...)
}

func (a *App) renderHelp() string {
	help := []string{
		StyleTitle.Render("⌨ paiData Keyboard Shortcuts"),
		"",
		StyleHelpKey.Render("Tab / Shift+Tab") + "  Switch between Chat and Data",
		StyleHelpKey.Render("F1 / F2") + "          Jump to Chat / Data",
		StyleHelpKey.Render("Ctrl+N") + "           Load another dataset",
		StyleHelpKey.Render("?") + "                Toggle this help (Data tab)",
		StyleHelpKey.Render("Ctrl+C") + "           Quit",
		"",
		StyleTitle.Render("Chat"),
		"",
		StyleHelpKey.Render("Enter") + "            Ask the question",
		StyleHelpKey.Render("Esc") + "              Cancel the answer being streamed",
		StyleHelpKey.Render("Ctrl+Y") + "           Copy the last answer",
		StyleHelpKey.Render("Ctrl+G") + "           Copy the last chart's JSON",
		StyleHelpKey.Render("Ctrl+L") + "           Clear the conversation",
		"",
		StyleTitle.Render("Commands (from the Data tab)"),
		"",
		StyleHelpKey.Render(":load <file>") + "     Load another file",
		StyleHelpKey.Render(":provider <name>") + " Switch AI provider (" + strings.Join(ai.SupportedProviders, ", ") + ")",
		StyleHelpKey.Render(":clear") + "           Clear the conversation",
		StyleHelpKey.Render(":back") + "            Return to the load screen",
		StyleHelpKey.Render(":quit") + "            Quit",
		"",
		StyleDimmed.Render("Press ? to close"),
	}

	return lipgloss.NewStyle().
		Width(a.width-4).
		Height(a.height-3).
		Padding(1, 2).
		Render(strings.Join(help, "\n"))
}
