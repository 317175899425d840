package cmd

import (
	"fmt"
	"strings"

	"github.com/DachengChen/paiData/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage saved Postgres sources",
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewSourceStore()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(store.Sources) == 0 {
			fmt.Fprintln(out, "no saved sources")
			return nil
		}
		for _, s := range store.Sources {
			fmt.Fprintf(out, "%s  %s\n", color.New(color.Bold).Sprint(s.Name), describeSource(s))
		}
		return nil
	},
}

var (
	addPG    = config.DefaultPostgres()
	addQuery string
)

var sourcesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Save a Postgres query as a named source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(addQuery) == "" {
			return fmt.Errorf("--query is required")
		}
		store, err := config.NewSourceStore()
		if err != nil {
			return err
		}
		pg := addPG
		pg.SSH.Enabled = pg.SSH.Host != ""
		store.Add(config.Source{Name: args[0], Postgres: pg, Query: addQuery})
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ saved %s", args[0]))
		return nil
	},
}

var sourcesRmCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"remove"},
	Short:   "Delete a saved source",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := config.NewSourceStore()
		if err != nil {
			return err
		}
		if !store.Delete(args[0]) {
			return fmt.Errorf("source %q not found", args[0])
		}
		if err := store.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ deleted %s", args[0]))
		return nil
	},
}

func init() {
	f := sourcesAddCmd.Flags()
	f.StringVar(&addQuery, "query", "", "SQL query whose result becomes the dataset")
	f.StringVar(&addPG.Host, "host", addPG.Host, "Postgres host")
	f.IntVar(&addPG.Port, "port", addPG.Port, "Postgres port")
	f.StringVar(&addPG.User, "user", addPG.User, "Postgres user")
	f.StringVar(&addPG.Password, "password", "", "Postgres password")
	f.StringVar(&addPG.Database, "database", addPG.Database, "database name")
	f.StringVar(&addPG.SSLMode, "sslmode", addPG.SSLMode, "sslmode (disable, require, verify-full)")
	f.StringVar(&addPG.SSH.Host, "ssh-host", "", "tunnel through this SSH host")
	f.IntVar(&addPG.SSH.Port, "ssh-port", 22, "SSH port")
	f.StringVar(&addPG.SSH.User, "ssh-user", "", "SSH user")
	f.StringVar(&addPG.SSH.KeyPath, "ssh-key", "~/.ssh/id_ed25519", "SSH private key")
	f.BoolVar(&addPG.SSH.Insecure, "ssh-insecure", false, "skip SSH host key verification")

	sourcesCmd.AddCommand(sourcesListCmd, sourcesAddCmd, sourcesRmCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func describeSource(s config.Source) string {
	target := fmt.Sprintf("%s@%s:%d/%s", s.Postgres.User, s.Postgres.Host, s.Postgres.Port, s.Postgres.Database)
	if s.Postgres.SSH.Enabled {
		target += " via " + s.Postgres.SSH.Host
	}
	return target + "  " + color.New(color.Faint).Sprint(truncateQuery(s.Query, 60))
}

func truncateQuery(q string, n int) string {
	q = strings.Join(strings.Fields(q), " ")
	if r := []rune(q); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return q
}
