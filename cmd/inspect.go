package cmd

import (
	"fmt"

	"github.com/DachengChen/paiData/ai"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	inspectSource string
	inspectRows   int
	inspectPrompt bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Show a dataset's shape and first rows",
	Long: `Inspect loads a dataset the same way the chat does and prints a
summary and preview. With --prompt it prints the exact system prompt
that would be sent to the model.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		ds, err := loadDataset(cmd, path, inspectSource)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if inspectPrompt {
			fmt.Fprintln(out, ai.BuildSystemPrompt(ds, ai.PromptOptions{ContextChars: appConfig.Data.ContextChars}))
			return nil
		}

		bold := color.New(color.Bold)
		bold.Fprintln(out, ds.Name)
		fmt.Fprintln(out, ds.Shape())
		if ds.Truncated {
			fmt.Fprintln(out, color.YellowString("row limit reached, only the first %d rows were loaded", len(ds.Rows)))
		}
		fmt.Fprintln(out)

		rows := inspectRows
		if rows <= 0 {
			rows = appConfig.Data.PreviewRows
		}
		preview, err := renderMarkdown(ds.Preview(rows), 120)
		if err != nil {
			preview = ds.Preview(rows)
		}
		fmt.Fprint(out, preview)
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectSource, "source", "s", "", "saved Postgres source instead of a file")
	inspectCmd.Flags().IntVarP(&inspectRows, "rows", "n", 0, "preview rows (default from config)")
	inspectCmd.Flags().BoolVar(&inspectPrompt, "prompt", false, "print the system prompt instead of a preview")
	rootCmd.AddCommand(inspectCmd)
}
