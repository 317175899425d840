package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/chat"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatView_StreamsPlaceholderAnswer(t *testing.T) {
	sess := testSession(t, &ai.Placeholder{ChunkSize: 7})
	v := NewChatView(sess)
	v.SetSize(100, 40)

	cmd := v.ask("  what sells best?  ")
	require.NotNil(t, cmd)
	assert.True(t, v.streaming())
	assert.Contains(t, v.View(), "what sells best?")

	done := drain(t, v, cmd)
	require.NoError(t, done.Err)
	assert.False(t, done.Turn.InProgress)
	assert.False(t, v.streaming())

	turns := sess.Transcript().Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "what sells best?", turns[0].Text)

	split := sess.Split(turns[1])
	require.True(t, split.HasChart())
	assert.Equal(t, "Example", split.Chart.Title)

	out := v.View()
	assert.Contains(t, out, "Placeholder")
	assert.Contains(t, out, "Example")
	assert.NotContains(t, out, "```chart")
}

func TestChatView_EmptyQuestionIgnored(t *testing.T) {
	v := NewChatView(testSession(t, ai.NewPlaceholder()))
	assert.Nil(t, v.ask("   "))
	assert.False(t, v.streaming())
	assert.Zero(t, v.session.Transcript().Len())
}

func TestChatView_EscCancels(t *testing.T) {
	sess := testSession(t, blockingProvider{})
	v := NewChatView(sess)
	v.SetSize(80, 30)

	cmd := v.ask("slow question")
	require.NotNil(t, cmd)

	first, ok := cmd().(StreamDeltaMsg)
	require.True(t, ok)
	assert.Equal(t, "partial ", first.Turn.Text)
	_, next := v.Update(first)

	// A second question while streaming is refused.
	assert.Nil(t, v.ask("another"))
	assert.ErrorIs(t, v.err, chat.ErrBusy)

	v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	done := drain(t, v, next)

	require.Error(t, done.Err)
	assert.True(t, errors.Is(done.Err, context.Canceled))
	assert.True(t, done.Turn.Failed)
	assert.True(t, strings.HasPrefix(done.Turn.Text, "partial \n\nError: "))
	assert.Equal(t, "Cancelled", v.status)
	assert.False(t, sess.Busy())
}

func TestChatView_ClearResetsTranscript(t *testing.T) {
	sess := testSession(t, &ai.Placeholder{})
	v := NewChatView(sess)
	v.SetSize(80, 30)

	drain(t, v, v.ask("hi"))
	require.Equal(t, 2, sess.Transcript().Len())

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Zero(t, sess.Transcript().Len())
	assert.Empty(t, v.rendered)
	assert.Contains(t, v.View(), "Ask anything about")
}

func TestChatView_CopyNeedsAnswer(t *testing.T) {
	v := NewChatView(testSession(t, &ai.Placeholder{}))

	assert.Nil(t, v.copyAnswer())
	assert.EqualError(t, v.err, "no answer to copy")
	assert.Nil(t, v.copyChart())
	assert.EqualError(t, v.err, "no chart to copy")
}

func TestChatView_FailedTurnShownAsError(t *testing.T) {
	sess := testSession(t, failingProvider{})
	v := NewChatView(sess)
	v.SetSize(80, 30)

	done := drain(t, v, v.ask("anything"))
	require.Error(t, done.Err)
	assert.Equal(t, "Error: API error: 502 Bad Gateway", done.Turn.Text)
	assert.Contains(t, v.View(), "API error: 502 Bad Gateway")
}

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) StreamChat(context.Context, []ai.Message, func(string)) error {
	return &ai.QueryError{Message: "API error: 502 Bad Gateway", StatusCode: 502}
}
