// view_load.go: data source screen with integrated AI settings.
//
// This is the first screen shown when paidata starts. It has two blocks:
//
//	Block 0: Data source (file path, or a saved Postgres source)
//	Block 1: AI settings (provider, API key, model, base URL)
//
// Press TAB to switch between blocks. Arrow keys navigate within
// the active block. AI config is saved to ~/.paidata/config.yaml
// when a dataset is loaded.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/config"
	"github.com/DachengChen/paiData/data"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ─── Data block fields ──────────────────────────────────────
const (
	fieldFile = iota
	fieldLoadFile
	fieldSaved
	fieldLoadSource
	fieldDeleteSource
	// ─── AI block fields ────────────────────────────────────
	fieldAIProvider
	fieldAIAPIKey
	fieldAIModel
	fieldAIBaseURL
	fieldAISave
	fieldCount // sentinel
)

// Block boundaries
const (
	blockData      = 0
	blockAI        = 1
	dataFieldFirst = fieldFile
	dataFieldLast  = fieldDeleteSource
	aiFieldFirst   = fieldAIProvider
	aiFieldLast    = fieldAISave
)

var fieldLabels = map[int]string{
	fieldFile:         "File",
	fieldLoadFile:     "Load file",
	fieldSaved:        "Source",
	fieldLoadSource:   "Run query",
	fieldDeleteSource: "Delete",
	fieldAIProvider:   "Provider",
	fieldAIAPIKey:     "API Key",
	fieldAIModel:      "Model",
	fieldAIBaseURL:    "Base URL",
	fieldAISave:       "Save AI",
}

// aiProviderDesc maps provider name to a short label.
var aiProviderDesc = map[string]string{
	config.ProviderOpenRouter:  "OpenRouter (hosted models)",
	config.ProviderOpenAI:      "OpenAI",
	config.ProviderOllama:      "Ollama (local)",
	config.ProviderPlaceholder: "Offline demo answers",
}

// LoadView is the data source + AI setup form.
type LoadView struct {
	store      *config.SourceStore
	appCfg     *config.AppConfig
	fields     []string // field values indexed by field ID
	input      textinput.Model
	focusField int
	savedIdx   int
	editing    bool
	err        error
	statusMsg  string
	loading    bool
	width      int
	height     int
	block      int // 0=data, 1=AI
}

func NewLoadView(store *config.SourceStore, appCfg *config.AppConfig) *LoadView {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 1024

	v := &LoadView{
		store:      store,
		appCfg:     appCfg,
		fields:     make([]string, fieldCount),
		input:      ti,
		focusField: fieldFile,
		block:      blockData,
	}
	v.fields[fieldAIProvider] = appCfg.AI.Provider
	if v.fields[fieldAIProvider] == "" {
		v.fields[fieldAIProvider] = config.ProviderOpenRouter
	}
	v.loadAIFieldsFromConfig()
	return v
}

// loadAIFieldsFromConfig populates AI fields from the current provider config.
func (v *LoadView) loadAIFieldsFromConfig() {
	provider := v.fields[fieldAIProvider]
	if provider == config.ProviderPlaceholder {
		v.fields[fieldAIAPIKey] = ""
		v.fields[fieldAIModel] = ""
		v.fields[fieldAIBaseURL] = ""
		return
	}
	probe := v.appCfg.AI
	probe.Provider = provider
	ep := probe.Endpoint()
	v.fields[fieldAIAPIKey] = ep.APIKey
	v.fields[fieldAIModel] = ep.Model
	v.fields[fieldAIBaseURL] = ep.BaseURL
}

func (v *LoadView) Name() string { return "Load" }

func (v *LoadView) WantsTextInput() bool { return v.editing }

func (v *LoadView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *LoadView) ShortHelp() []KeyBinding {
	if v.editing {
		return []KeyBinding{
			{Key: "Enter", Desc: "confirm"},
			{Key: "Esc", Desc: "cancel"},
		}
	}
	blockLabel := "AI"
	if v.block == blockAI {
		blockLabel = "Data"
	}
	return []KeyBinding{
		{Key: "↑/↓", Desc: "navigate"},
		{Key: "Tab", Desc: blockLabel},
		{Key: "Enter", Desc: "edit/action"},
		{Key: "Ctrl+C", Desc: "quit"},
	}
}

func (v *LoadView) Init() tea.Cmd { return nil }

func (v *LoadView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.editing {
			return v.handleEditing(msg)
		}
		return v.handleNavigation(msg)

	case LoadErrorMsg:
		v.loading = false
		v.err = msg.Err
		v.statusMsg = ""
		return v, nil
	}

	if v.editing {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

// ─────────────────────────────────────────────────────────────
// Navigation: TAB switches blocks, arrows within block
// ─────────────────────────────────────────────────────────────

func (v *LoadView) handleNavigation(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "tab":
		v.switchBlock()
	case "up", "k":
		v.moveWithinBlock(-1)
	case "down", "j":
		v.moveWithinBlock(1)
	case "enter":
		return v.handleAction()
	case "left", "h":
		v.cycle(-1)
	case "right", "l":
		v.cycle(1)
	case "q":
		return v, tea.Quit
	}
	return v, nil
}

func (v *LoadView) switchBlock() {
	if v.block == blockData {
		v.block = blockAI
		v.focusField = fieldAIProvider
	} else {
		v.block = blockData
		v.focusField = fieldFile
	}
}

func (v *LoadView) moveWithinBlock(dir int) {
	first, last := v.blockRange()
	for i := 0; i <= last-first; i++ {
		v.focusField += dir
		if v.focusField < first {
			v.focusField = last
		}
		if v.focusField > last {
			v.focusField = first
		}
		if !v.hidden(v.focusField) {
			return
		}
	}
}

func (v *LoadView) blockRange() (int, int) {
	if v.block == blockAI {
		return aiFieldFirst, aiFieldLast
	}
	return dataFieldFirst, dataFieldLast
}

// hidden reports fields that do not apply to the current state.
func (v *LoadView) hidden(f int) bool {
	provider := v.fields[fieldAIProvider]
	switch f {
	case fieldSaved, fieldLoadSource, fieldDeleteSource:
		return len(v.store.Sources) == 0
	case fieldAIAPIKey:
		return provider == config.ProviderOllama || provider == config.ProviderPlaceholder
	case fieldAIModel, fieldAIBaseURL:
		return provider == config.ProviderPlaceholder
	}
	return false
}

func (v *LoadView) cycle(dir int) {
	switch v.focusField {
	case fieldSaved:
		if n := len(v.store.Sources); n > 0 {
			v.savedIdx = (v.savedIdx + dir + n) % n
		}
	case fieldAIProvider:
		v.cycleAIProvider(dir)
	default:
		v.moveWithinBlock(dir)
	}
}

func (v *LoadView) handleEditing(msg tea.KeyMsg) (View, tea.Cmd) {
	switch msg.String() {
	case "enter":
		v.fields[v.focusField] = strings.TrimSpace(v.input.Value())
		v.stopEditing()
		if v.focusField == fieldFile && v.fields[fieldFile] != "" {
			return v, v.loadFile()
		}
		return v, nil
	case "esc":
		v.stopEditing()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *LoadView) startEditing() tea.Cmd {
	v.editing = true
	v.input.SetValue(v.fields[v.focusField])
	v.input.CursorEnd()
	v.input.EchoMode = textinput.EchoNormal
	if v.focusField == fieldAIAPIKey {
		v.input.EchoMode = textinput.EchoPassword
	}
	return v.input.Focus()
}

func (v *LoadView) stopEditing() {
	v.editing = false
	v.input.Blur()
}

func (v *LoadView) handleAction() (View, tea.Cmd) {
	switch v.focusField {
	case fieldLoadFile:
		return v, v.loadFile()
	case fieldSaved, fieldLoadSource:
		return v, v.loadSource()
	case fieldDeleteSource:
		return v, v.deleteSource()
	case fieldAIProvider:
		v.cycleAIProvider(1)
		return v, nil
	case fieldAISave:
		return v, v.saveAIConfig()
	default:
		return v, v.startEditing()
	}
}

// ─────────────────────────────────────────────────────────────
// Loading
// ─────────────────────────────────────────────────────────────

func (v *LoadView) loadFile() tea.Cmd {
	path := strings.TrimSpace(v.fields[fieldFile])
	if path == "" {
		v.err = fmt.Errorf("enter a file path first")
		return nil
	}
	v.beginLoad("Loading " + path + "...")

	return func() tea.Msg {
		ds, err := data.LoadFile(path)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}
		return DatasetLoadedMsg{Dataset: ds, Source: path, LoadedAt: time.Now()}
	}
}

func (v *LoadView) loadSource() tea.Cmd {
	if len(v.store.Sources) == 0 {
		return nil
	}
	src := v.store.Sources[v.savedIdx]
	maxRows := v.appCfg.Data.MaxRows
	v.beginLoad(fmt.Sprintf("Querying %s...", src.Name))

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		ds, err := data.LoadPostgres(ctx, src.Postgres, src.Name, src.Query, maxRows)
		if err != nil {
			return LoadErrorMsg{Err: err}
		}
		return DatasetLoadedMsg{Dataset: ds, Source: "postgres:" + src.Name, LoadedAt: time.Now()}
	}
}

func (v *LoadView) beginLoad(status string) {
	v.loading = true
	v.statusMsg = status
	v.err = nil

	// Save AI config before loading
	v.applyAIConfig()
	_ = config.Save(v.appCfg)
}

func (v *LoadView) deleteSource() tea.Cmd {
	if len(v.store.Sources) == 0 {
		return nil
	}

	name := v.store.Sources[v.savedIdx].Name
	v.store.Delete(name)

	if err := v.store.Save(); err != nil {
		v.err = err
		return nil
	}

	v.statusMsg = fmt.Sprintf("Source '%s' deleted.", name)
	v.err = nil

	if v.savedIdx >= len(v.store.Sources) {
		v.savedIdx = 0
	}
	if len(v.store.Sources) == 0 {
		v.focusField = fieldFile
	}
	return nil
}

// ─────────────────────────────────────────────────────────────
// AI config logic
// ─────────────────────────────────────────────────────────────

func (v *LoadView) cycleAIProvider(dir int) {
	current := v.fields[fieldAIProvider]
	idx := 0
	for i, p := range ai.SupportedProviders {
		if p == current {
			idx = i
			break
		}
	}
	n := len(ai.SupportedProviders)
	idx = (idx + dir + n) % n
	v.fields[fieldAIProvider] = ai.SupportedProviders[idx]
	v.loadAIFieldsFromConfig()
	v.err = nil
}

// applyAIConfig writes the current AI form values back to appConfig.
func (v *LoadView) applyAIConfig() {
	v.appCfg.AI.Provider = v.fields[fieldAIProvider]
	var ep *config.EndpointConfig
	switch v.fields[fieldAIProvider] {
	case config.ProviderOpenRouter:
		ep = &v.appCfg.AI.OpenRouter
	case config.ProviderOpenAI:
		ep = &v.appCfg.AI.OpenAI
	case config.ProviderOllama:
		ep = &v.appCfg.AI.Ollama
	default:
		return
	}
	ep.APIKey = v.fields[fieldAIAPIKey]
	ep.Model = v.fields[fieldAIModel]
	ep.BaseURL = v.fields[fieldAIBaseURL]
}

func (v *LoadView) saveAIConfig() tea.Cmd {
	v.applyAIConfig()
	if err := config.Save(v.appCfg); err != nil {
		v.err = err
		return nil
	}
	v.statusMsg = "AI config saved!"
	v.err = nil
	return nil
}

// ─────────────────────────────────────────────────────────────
// View rendering: two-block layout
// ─────────────────────────────────────────────────────────────

func (v *LoadView) View() string {
	totalWidth := v.width
	if totalWidth < 60 {
		totalWidth = 60
	}
	leftWidth := (totalWidth * 55) / 100
	rightWidth := totalWidth - leftWidth
	leftInputW := leftWidth - 24
	rightInputW := rightWidth - 24
	if leftInputW < 10 {
		leftInputW = 10
	}
	if rightInputW < 10 {
		rightInputW = 10
	}

	// ── Left panel: data source ──
	var leftLines []string
	leftLines = append(leftLines, v.blockHeader("File", leftWidth-8, blockData))
	leftLines = append(leftLines, v.renderField(fieldFile, leftInputW))
	leftLines = append(leftLines, StyleDimmed.Render("  "+strings.Join(formatNames(), ", ")))
	leftLines = append(leftLines, "")
	leftLines = append(leftLines, v.renderButton(fieldLoadFile))
	leftLines = append(leftLines, "")

	leftLines = append(leftLines, v.blockHeader("Saved Postgres sources", leftWidth-8, blockData))
	if len(v.store.Sources) == 0 {
		leftLines = append(leftLines, StyleDimmed.Render("  none, add one with `paidata sources add`"))
	} else {
		leftLines = append(leftLines, v.renderSavedField())
		src := v.store.Sources[v.savedIdx]
		leftLines = append(leftLines, StyleDimmed.Render("  "+ellipsize(src.Query, leftInputW+12)))
		leftLines = append(leftLines, "")
		leftLines = append(leftLines, v.renderButton(fieldLoadSource)+"  "+v.renderButton(fieldDeleteSource))
	}

	leftBorder := StyleBorder.Padding(1, 2).Width(leftWidth - 2)
	if v.block == blockData {
		leftBorder = leftBorder.BorderForeground(ColorAccent)
	}
	leftPanel := leftBorder.Render(strings.Join(leftLines, "\n"))

	// ── Right panel: AI settings ──
	var rightLines []string
	rightLines = append(rightLines, v.blockHeader("AI Settings", rightWidth-8, blockAI))
	rightLines = append(rightLines, v.renderSelectField(fieldAIProvider))
	provider := v.fields[fieldAIProvider]
	if desc, ok := aiProviderDesc[provider]; ok {
		rightLines = append(rightLines, StyleDimmed.Render("  "+desc))
	}
	rightLines = append(rightLines, "")
	if !v.hidden(fieldAIAPIKey) {
		rightLines = append(rightLines, v.renderField(fieldAIAPIKey, rightInputW))
	}
	if !v.hidden(fieldAIModel) {
		rightLines = append(rightLines, v.renderField(fieldAIModel, rightInputW))
		rightLines = append(rightLines, v.renderField(fieldAIBaseURL, rightInputW))
	}
	rightLines = append(rightLines, "")
	rightLines = append(rightLines, v.renderButton(fieldAISave))

	rightBorder := StyleBorder.Padding(1, 2).Width(rightWidth - 2)
	if v.block == blockAI {
		rightBorder = rightBorder.BorderForeground(ColorAccent)
	}
	rightPanel := rightBorder.Render(strings.Join(rightLines, "\n"))

	panels := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	var statusLine string
	if v.loading {
		statusLine = StyleDimmed.Render("⏳ " + v.statusMsg)
	} else if v.err != nil {
		statusLine = StyleError.Render("✗ " + v.err.Error())
	} else if v.statusMsg != "" {
		statusLine = StyleSuccess.Render("✓ " + v.statusMsg)
	}

	content := panels
	if statusLine != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, panels, statusLine)
	}

	return lipgloss.NewStyle().
		Width(v.width).
		Height(v.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// blockHeader renders a section header, highlighted if the block is active.
func (v *LoadView) blockHeader(label string, width int, blk int) string {
	labelStyle := lipgloss.NewStyle().Foreground(ColorDim)
	if v.block == blk {
		labelStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	}

	remaining := width - lipgloss.Width(label) - 4
	if remaining < 4 {
		remaining = 4
	}
	left := 2
	right := remaining - left

	return StyleDimmed.Render(strings.Repeat("─", left)) +
		" " + labelStyle.Render(label) + " " +
		StyleDimmed.Render(strings.Repeat("─", right))
}

func (v *LoadView) label(id int) string {
	if v.focusField == id {
		return StyleFieldLabelFocused.Render("▸ " + fieldLabels[id])
	}
	return StyleFieldLabel.Render(fieldLabels[id])
}

// renderField renders a form input field; the focused field shows the
// live text input while editing.
func (v *LoadView) renderField(id, inputWidth int) string {
	value := v.fields[id]
	if id == fieldAIAPIKey {
		value = strings.Repeat("•", len([]rune(value)))
	}

	if v.focusField == id {
		if v.editing {
			v.input.Width = inputWidth
			return v.label(id) + " " + v.input.View()
		}
		return v.label(id) + " " + lipgloss.NewStyle().Width(inputWidth).Foreground(ColorPrimary).Render(value)
	}
	return v.label(id) + " " + StyleDimmed.Render(value)
}

func (v *LoadView) renderSelectField(id int) string {
	value := v.fields[id]
	if v.focusField == id {
		return v.label(id) + " " + lipgloss.NewStyle().Foreground(ColorAccent).Render(" ◂ "+value+" ▸ ")
	}
	return v.label(id) + " " + StyleDimmed.Render(value)
}

func (v *LoadView) renderSavedField() string {
	var line string
	for i, s := range v.store.Sources {
		switch {
		case i == v.savedIdx && v.focusField == fieldSaved:
			line += StyleListItemActive.Render(" ► " + s.Name + " ")
		case i == v.savedIdx:
			line += lipgloss.NewStyle().Foreground(ColorAccent).Render(" ► " + s.Name + " ")
		default:
			line += StyleDimmed.Render("   " + s.Name + " ")
		}
	}
	return v.label(fieldSaved) + " " + line
}

func (v *LoadView) renderButton(id int) string {
	label := fieldLabels[id]
	if v.focusField == id {
		return lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorAccent).
			Padding(0, 2).
			Render("⏎ " + label)
	}
	return lipgloss.NewStyle().
		Foreground(ColorDim).
		Padding(0, 2).
		Render("  " + label)
}

func formatNames() []string {
	names := make([]string, len(data.SupportedFormats))
	for i, f := range data.SupportedFormats {
		names[i] = "." + string(f)
	}
	return names
}
