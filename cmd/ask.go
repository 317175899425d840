package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/chart"
	"github.com/DachengChen/paiData/chat"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	askSource string
	askPretty bool
	askWidth  int
)

var askCmd = &cobra.Command{
	Use:   "ask <file> <question...>",
	Short: "Ask one question about a dataset and print the answer",
	Long: `Ask streams the answer to stdout as it arrives, coloured, with any
chart block held back. A chart proposed by the model is drawn after
the answer. With --pretty the answer is collected first and rendered
as markdown.

  paidata ask sales.csv which region grew fastest?
  paidata ask --source warehouse "top 5 customers by revenue"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, question := "", strings.Join(args, " ")
		if askSource == "" {
			if len(args) < 2 {
				return fmt.Errorf("usage: paidata ask <file> <question...>")
			}
			path, question = args[0], strings.Join(args[1:], " ")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		ds, err := loadDataset(cmd, path, askSource)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), color.New(color.Faint).Sprintf(
			"%s: %d rows, %d columns", ds.Name, len(ds.Rows), len(ds.Columns)))

		session, err := chat.NewSession(buildProvider(appConfig.AI), ds, chat.Options{
			Prompt:    ai.PromptOptions{ContextChars: appConfig.Data.ContextChars},
			CacheSize: 1,
		})
		if err != nil {
			return err
		}
		return runAsk(ctx, cmd.OutOrStdout(), session, question)
	},
}

func init() {
	askCmd.Flags().StringVarP(&askSource, "source", "s", "", "saved Postgres source instead of a file")
	askCmd.Flags().BoolVar(&askPretty, "pretty", false, "render the finished answer as markdown")
	askCmd.Flags().IntVar(&askWidth, "width", 80, "width for charts and markdown")
	rootCmd.AddCommand(askCmd)
}

func runAsk(ctx context.Context, out io.Writer, session *chat.Session, question string) error {
	var (
		onUpdate func(chat.Turn)
		prose    *proseWriter
	)
	if !askPretty {
		prose = newProseWriter(out, color.New(color.FgCyan))
		written := 0
		onUpdate = func(t chat.Turn) {
			prose.Write(t.Text[written:])
			written = len(t.Text)
		}
	}

	turn, err := session.Ask(ctx, question, onUpdate)
	if prose != nil {
		prose.Flush()
	}
	if err != nil {
		if !askPretty {
			fmt.Fprintln(out)
		}
		return err
	}

	split := session.Split(turn)
	if askPretty {
		prose, rerr := renderMarkdown(split.Prose, askWidth)
		if rerr != nil {
			prose = split.Prose
		}
		fmt.Fprintln(out, strings.TrimRight(prose, "\n"))
	} else {
		fmt.Fprintln(out)
	}
	if split.HasChart() {
		fmt.Fprintln(out)
		fmt.Fprintln(out, chart.Render(split.Chart, askWidth))
	}
	return nil
}

func renderMarkdown(text string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}

const (
	fenceOpen  = "```chart\n"
	fenceClose = "\n```"
)

// proseWriter echoes streamed text while holding back chart fences, which
// are drawn separately once the answer settles.
type proseWriter struct {
	out     io.Writer
	paint   *color.Color
	buf     string
	inFence bool
	skipNL  bool // drop the newline that follows a closed fence
}

func newProseWriter(out io.Writer, paint *color.Color) *proseWriter {
	return &proseWriter{out: out, paint: paint}
}

func (w *proseWriter) Write(delta string) {
	w.buf += delta
	for w.buf != "" {
		if w.inFence {
			i := strings.Index(w.buf[len(fenceOpen):], fenceClose)
			if i < 0 {
				return
			}
			w.buf = w.buf[len(fenceOpen)+i+len(fenceClose):]
			w.inFence = false
			w.skipNL = true
			continue
		}
		if w.skipNL {
			w.buf = strings.TrimPrefix(w.buf, "\n")
			w.skipNL = false
			continue
		}
		if i := strings.Index(w.buf, fenceOpen); i >= 0 {
			w.emit(w.buf[:i])
			w.buf = w.buf[i:]
			w.inFence = true
			continue
		}
		keep := partialSuffix(w.buf, fenceOpen)
		w.emit(w.buf[:len(w.buf)-keep])
		w.buf = w.buf[len(w.buf)-keep:]
		return
	}
}

// Flush writes whatever is held back. An unclosed fence is not a chart,
// so it is printed as-is.
func (w *proseWriter) Flush() {
	w.emit(w.buf)
	w.buf = ""
	w.inFence = false
}

func (w *proseWriter) emit(s string) {
	if s != "" {
		w.paint.Fprint(w.out, s)
	}
}

// partialSuffix returns the length of the longest proper prefix of pattern
// that s ends with.
func partialSuffix(s, pattern string) int {
	for k := len(pattern) - 1; k > 0; k-- {
		if strings.HasSuffix(s, pattern[:k]) {
			return k
		}
	}
	return 0
}
