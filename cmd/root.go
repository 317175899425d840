// Package cmd contains all Cobra commands for paiData.
//
// Design decision: the root command launches the TUI directly.
// Data sources and AI settings can be chosen inside the TUI, so
// running `paidata` with no arguments starts on the load screen.
// `paidata sales.csv` skips it and opens the chat straight away.
package cmd

import (
	"fmt"
	"os"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/applog"
	"github.com/DachengChen/paiData/config"
	"github.com/DachengChen/paiData/data"
	"github.com/DachengChen/paiData/tui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagProvider string
	flagModel    string

	appConfig *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "paidata [file]",
	Short: "Chat with your data: ask questions, get answers and charts",
	Long: `paiData loads a CSV, JSON, JSONL or BSON file (or a saved Postgres
query) and lets you ask questions about it in plain language.
Answers stream in as they are generated, and any chart the model
proposes is drawn right in the terminal.

Run 'paidata' to start the TUI on the load screen, or
'paidata <file>' to jump straight into the chat.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg
		applog.SetLevel(cfg.LogLevel)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		applog.Close()
	},
	// Running with no subcommand launches the TUI.
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := tui.Options{
			Config:   appConfig,
			Provider: buildProvider(appConfig.AI),
		}
		if len(args) == 1 {
			ds, err := data.LoadFile(args[0])
			if err != nil {
				return err
			}
			opts.Dataset = ds
			opts.Source = args[0]
		}
		applog.Info("paidata %s starting", version)
		return tui.Start(opts)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default ~/.paidata/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flagProvider, "provider", "p", "", "AI provider: openrouter, openai, ollama, placeholder")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "model for the selected provider")
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗ %v", err))
	}
	return err
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.AppConfig, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, flagProvider, flagModel)
	return cfg, nil
}

func applyFlags(cfg *config.AppConfig, provider, model string) {
	if provider != "" {
		cfg.AI.Provider = provider
	}
	if model == "" {
		return
	}
	switch cfg.AI.Provider {
	case config.ProviderOpenAI:
		cfg.AI.OpenAI.Model = model
	case config.ProviderOllama:
		cfg.AI.Ollama.Model = model
	default:
		cfg.AI.OpenRouter.Model = model
	}
}

// buildProvider falls back to placeholder answers when the configured
// provider cannot be created, so the UI stays usable offline.
func buildProvider(cfg config.AIConfig) ai.Provider {
	p, err := ai.NewProvider(cfg)
	if err != nil {
		applog.Warn("ai provider unavailable: %v", err)
		fmt.Fprintln(os.Stderr, color.YellowString("! %v (using placeholder answers)", err))
		return ai.NewPlaceholder()
	}
	return p
}

// loadDataset loads either a file or a saved source.
func loadDataset(cmd *cobra.Command, path, source string) (*data.Dataset, error) {
	if source == "" {
		if path == "" {
			return nil, fmt.Errorf("a file or --source is required")
		}
		return data.LoadFile(path)
	}
	store, err := config.NewSourceStore()
	if err != nil {
		return nil, err
	}
	src, ok := store.Get(source)
	if !ok {
		return nil, fmt.Errorf("source %q not found (see `paidata sources list`)", source)
	}
	return data.LoadPostgres(cmd.Context(), src.Postgres, src.Name, src.Query, appConfig.Data.MaxRows)
}
