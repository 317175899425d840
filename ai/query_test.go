package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/DachengChen/paiData/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingProvider captures the messages it was sent and replays deltas.
type recordingProvider struct {
	got    []Message
	deltas []string
	err    error
}

func (r *recordingProvider) Name() string { return "recording" }

func (r *recordingProvider) StreamChat(ctx context.Context, messages []Message, onDelta func(string)) error {
	r.got = messages
	for _, d := range r.deltas {
		onDelta(d)
	}
	return r.err
}

func sampleDataset(t *testing.T) *data.Dataset {
	t.Helper()
	ds, err := data.New("sales.csv", []data.Row{
		{"region": "North", "sales": 120.0},
		{"region": "South", "sales": 80.0, "note": "late"},
	})
	require.NoError(t, err)
	return ds
}

func TestStreamQueryMessages(t *testing.T) {
	ds := sampleDataset(t)
	p := &recordingProvider{deltas: []string{"It ", "is North."}}
	prior := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}

	var answer strings.Builder
	err := StreamQuery(context.Background(), p, Query{
		Question: "Which region sells most?",
		Dataset:  ds,
		Prior:    prior,
	}, func(s string) { answer.WriteString(s) })
	require.NoError(t, err)

	assert.Equal(t, "It is North.", answer.String())
	require.Len(t, p.got, 4)
	assert.Equal(t, RoleUser, p.got[0].Role)
	assert.Equal(t, BuildSystemPrompt(ds, PromptOptions{}), p.got[0].Content)
	assert.Equal(t, prior, p.got[1:3])
	assert.Equal(t, Message{Role: RoleUser, Content: "Which region sells most?"}, p.got[3])
}

func TestStreamQueryWrapsErrors(t *testing.T) {
	cause := errors.New("boom")
	err := StreamQuery(context.Background(), &recordingProvider{err: cause}, Query{Question: "q"}, nil)

	var qe *QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "boom", qe.Message)
	assert.ErrorIs(t, err, cause)

	orig := &QueryError{Message: "API error: 500 Internal Server Error", StatusCode: 500}
	err = StreamQuery(context.Background(), &recordingProvider{err: orig}, Query{Question: "q"}, nil)
	assert.Same(t, orig, err)
}

func TestBuildSystemPrompt(t *testing.T) {
	ds := sampleDataset(t)
	prompt := BuildSystemPrompt(ds, PromptOptions{})

	assert.Contains(t, prompt, "- Number of rows: 2")
	assert.Contains(t, prompt, "- Number of columns: 3")
	assert.Contains(t, prompt, "- Column names: region, sales, note")
	assert.Contains(t, prompt, `"region":"North"`)
	assert.Contains(t, prompt, "8. Use the actual dataset provided")
	assert.Contains(t, prompt, "```chart\n")
}

func TestBuildSystemPromptCapsExcerpt(t *testing.T) {
	rows := make([]data.Row, 200)
	for i := range rows {
		rows[i] = data.Row{"city": "Zürich", "n": float64(i)}
	}
	ds, err := data.New("big.json", rows)
	require.NoError(t, err)

	prompt := BuildSystemPrompt(ds, PromptOptions{ContextChars: 100})
	start := strings.Index(prompt, "```json\n") + len("```json\n")
	end := strings.Index(prompt[start:], "\n```")
	excerpt := prompt[start : start+end]

	assert.Equal(t, 100, utf8.RuneCountInString(excerpt))
	assert.True(t, utf8.ValidString(excerpt))
}

func TestBuildSystemPromptNoDataset(t *testing.T) {
	prompt := BuildSystemPrompt(nil, PromptOptions{})
	assert.Contains(t, prompt, "has not loaded a dataset")
	assert.NotContains(t, prompt, "```json")
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"日本語", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateRunes(tt.in, tt.n), tt.in)
	}
}
