package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/DachengChen/paiData/data"
)

// DefaultContextChars caps the JSON excerpt of the rows sent to the model.
const DefaultContextChars = 10000

// PromptOptions tunes the dataset context.
type PromptOptions struct {
	ContextChars int // 0 means DefaultContextChars
}

const promptIntro = `You are an AI assistant helping users analyze and understand data.`

const promptGuidelines = `Guidelines for responding:
1. Provide clear, concise answers to questions about the data
2. When asked for visualizations or charts, include a chart block as described below and explain it in markdown
3. Offer insights and patterns you notice in the data
4. Be helpful in suggesting ways to analyze or explore the data
5. If asked something that cannot be answered with the given data, explain why
6. Use markdown formatting for better readability
7. When relevant, provide specific statistics or examples from the data
8. Use the actual dataset provided to answer questions accurately`

const promptCharts = "Charts:\n" +
	"To show a chart, add one fenced block tagged `chart` whose body is a single JSON object:\n" +
	"```chart\n" +
	`{"type": "bar", "title": "Sales by region", "data": [{"name": "North", "value": 120}], "xKey": "name", "yKey": "value"}` + "\n" +
	"```\n" +
	"- type is one of line, bar, pie, scatter, area\n" +
	"- data is an array of objects; xKey names the category field (default \"name\"), yKey the value field (default \"value\")\n" +
	"- keys lists several value fields to plot together; colors optionally lists hex colors\n" +
	"- Only the first chart block in an answer is drawn. Do not describe the JSON to the user."

// BuildSystemPrompt renders the dataset context and instructions sent as the
// first message of every request.
func BuildSystemPrompt(ds *data.Dataset, opts PromptOptions) string {
	limit := opts.ContextChars
	if limit <= 0 {
		limit = DefaultContextChars
	}

	var sb strings.Builder
	sb.WriteString(promptIntro)
	sb.WriteString("\n\n")

	if ds == nil {
		sb.WriteString("The user has not loaded a dataset yet.\n\n")
	} else {
		excerpt, err := ds.JSON()
		if err != nil {
			excerpt = "[]"
		}
		excerpt = truncateRunes(excerpt, limit)

		sb.WriteString("The user has uploaded a dataset with the following characteristics:\n")
		fmt.Fprintf(&sb, "- Number of rows: %d\n", ds.Metadata.RowCount)
		fmt.Fprintf(&sb, "- Number of columns: %d\n", ds.Metadata.ColumnCount)
		fmt.Fprintf(&sb, "- Column names: %s\n\n", strings.Join(ds.Columns, ", "))
		sb.WriteString("Here is the complete dataset:\n```json\n")
		sb.WriteString(excerpt)
		sb.WriteString("\n```\n\n")
	}

	sb.WriteString(promptGuidelines)
	sb.WriteString("\n\n")
	sb.WriteString(promptCharts)
	return sb.String()
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
