package tui

import (
	"fmt"
	"time"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/chart"
	"github.com/DachengChen/paiData/chat"
	"github.com/DachengChen/paiData/config"
	"github.com/DachengChen/paiData/data"
	tea "github.com/charmbracelet/bubbletea"
)

// Options configures Start.
type Options struct {
	Config   *config.AppConfig
	Provider ai.Provider
	Dataset  *data.Dataset // optional; skips the load screen
	Source   string
}

// Start opens the saved sources and launches the TUI.
func Start(opts Options) error {
	store, err := config.NewSourceStore()
	if err != nil {
		return fmt.Errorf("failed to load sources: %w", err)
	}

	session, err := chat.NewSession(opts.Provider, nil, chat.Options{
		Prompt:    ai.PromptOptions{ContextChars: opts.Config.Data.ContextChars},
		CacheSize: chart.DefaultCacheSize,
	})
	if err != nil {
		return err
	}

	app := NewApp(store, session, opts.Config)
	if opts.Dataset != nil {
		app.enterMain(DatasetLoadedMsg{Dataset: opts.Dataset, Source: opts.Source, LoadedAt: time.Now()})
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
