package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/config"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	store, err := config.OpenSourceStore(t.TempDir() + "/sources.yaml")
	require.NoError(t, err)
	a := NewApp(store, testSession(t, &ai.Placeholder{}), testConfig())
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return a
}

func TestApp_DatasetLoadedEntersChat(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, PhaseLoad, a.phase)

	ds := testDataset(t)
	a.Update(DatasetLoadedMsg{Dataset: ds, Source: "sales.csv", LoadedAt: time.Now()})

	assert.Equal(t, PhaseMain, a.phase)
	assert.Equal(t, TabChat, a.activeTab)
	assert.Same(t, ds, a.session.Dataset())
	assert.Equal(t, "placeholder", a.session.Provider().Name())
	assert.Contains(t, a.View(), "sales.csv")
}

func TestApp_TabSwitchesToData(t *testing.T) {
	a := newTestApp(t)
	a.Update(DatasetLoadedMsg{Dataset: testDataset(t), Source: "sales.csv", LoadedAt: time.Now()})

	a.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, TabData, a.activeTab)

	out := a.View()
	assert.Contains(t, out, "region")
	assert.Contains(t, out, "2/3 filled")
}

func TestApp_CommandMode(t *testing.T) {
	a := newTestApp(t)
	a.Update(DatasetLoadedMsg{Dataset: testDataset(t), Source: "sales.csv", LoadedAt: time.Now()})
	a.Update(tea.KeyMsg{Type: tea.KeyF2})

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":")})
	require.Equal(t, ModeCommand, a.mode)
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("nope")})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ModeNormal, a.mode)
	assert.Equal(t, "unknown command: nope", a.statusMsg)

	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(":")})
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("back")})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, PhaseLoad, a.phase)

	// Esc returns to the loaded dataset.
	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, PhaseMain, a.phase)
}

func TestApp_LoadErrorStaysOnLoadScreen(t *testing.T) {
	a := newTestApp(t)
	a.Update(LoadErrorMsg{Err: errors.New("unsupported file format: xls")})

	assert.Equal(t, PhaseLoad, a.phase)
	assert.Contains(t, a.View(), "unsupported file format: xls")
}

func TestApp_ProviderCommand(t *testing.T) {
	a := newTestApp(t)
	a.Update(DatasetLoadedMsg{Dataset: testDataset(t), Source: "sales.csv", LoadedAt: time.Now()})

	a.executeCommand("provider openai")
	assert.Contains(t, a.statusMsg, "OpenAI API key not set")
	assert.Equal(t, "placeholder", a.session.Provider().Name())

	a.executeCommand("provider ollama")
	assert.Equal(t, config.ProviderOllama, a.appConfig.AI.Provider)
	assert.Contains(t, a.session.Provider().Name(), "ollama")
}
