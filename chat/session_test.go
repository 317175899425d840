package chat

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/applog"
	"github.com/DachengChen/paiData/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	applog.SetOutput(io.Discard)
	ai.SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

// scriptedProvider streams fixed deltas, optionally waiting on release
// before finishing.
type scriptedProvider struct {
	deltas  []string
	err     error
	release chan struct{}
	started chan struct{}
	got     [][]ai.Message
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) StreamChat(ctx context.Context, messages []ai.Message, onDelta func(string)) error {
	p.got = append(p.got, messages)
	if p.started != nil {
		close(p.started)
	}
	for _, d := range p.deltas {
		onDelta(d)
	}
	if p.release != nil {
		<-p.release
	}
	return p.err
}

func newDataset(t *testing.T) *data.Dataset {
	t.Helper()
	ds, err := data.New("pets.json", []data.Row{{"name": "Rex", "age": 3.0}})
	require.NoError(t, err)
	return ds
}

func TestSessionAsk(t *testing.T) {
	p := &scriptedProvider{deltas: []string{"Here:\n```chart\n", `{"type":"bar","data":[{"name":"A","value":1}]}`, "\n```\nDone."}}
	s, err := NewSession(p, newDataset(t), Options{})
	require.NoError(t, err)

	var updates []string
	turn, err := s.Ask(context.Background(), "  chart it  ", func(tu Turn) {
		assert.True(t, tu.InProgress)
		updates = append(updates, tu.Text)
	})
	require.NoError(t, err)

	require.Len(t, updates, 3)
	assert.Equal(t, turn.Text, updates[2])
	assert.False(t, turn.InProgress)
	assert.False(t, s.Busy())

	split := s.Split(turn)
	require.True(t, split.HasChart())
	assert.Equal(t, "Here:\nDone.", split.Prose)

	// The second question carries the first exchange.
	_, err = s.Ask(context.Background(), "and now?", nil)
	require.NoError(t, err)
	second := p.got[1]
	require.Len(t, second, 4)
	assert.Equal(t, ai.Message{Role: ai.RoleUser, Content: "chart it"}, second[1])
	assert.Equal(t, ai.RoleAssistant, second[2].Role)
	assert.Equal(t, ai.Message{Role: ai.RoleUser, Content: "and now?"}, second[3])
}

func TestSessionAskFailure(t *testing.T) {
	p := &scriptedProvider{
		deltas: []string{"Par", "tial"},
		err:    &ai.QueryError{Message: "stream interrupted: EOF"},
	}
	s, err := NewSession(p, newDataset(t), Options{})
	require.NoError(t, err)

	turn, err := s.Ask(context.Background(), "q", nil)
	require.Error(t, err)
	var qe *ai.QueryError
	assert.ErrorAs(t, err, &qe)

	assert.True(t, turn.Failed)
	assert.Equal(t, "Partial\n\nError: stream interrupted: EOF", turn.Text)
	assert.Equal(t, turn.Text, s.Split(turn).Prose)
	assert.False(t, s.Split(turn).HasChart())
	assert.Equal(t, 2, s.Transcript().Len())
}

func TestSessionBusy(t *testing.T) {
	p := &scriptedProvider{
		deltas:  []string{"slow"},
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	s, err := NewSession(p, newDataset(t), Options{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Ask(context.Background(), "first", nil)
		done <- err
	}()

	select {
	case <-p.started:
	case <-time.After(5 * time.Second):
		t.Fatal("provider never started")
	}

	_, err = s.Ask(context.Background(), "second", nil)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, s.SetDataset(nil), ErrBusy)
	assert.ErrorIs(t, s.SetProvider(p), ErrBusy)

	close(p.release)
	require.NoError(t, <-done)
	assert.False(t, s.Busy())
	assert.Equal(t, 2, s.Transcript().Len())
}

func TestSessionEmptyQuestion(t *testing.T) {
	s, err := NewSession(&scriptedProvider{}, nil, Options{})
	require.NoError(t, err)
	_, err = s.Ask(context.Background(), " \n", nil)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Zero(t, s.Transcript().Len())
}

func TestSessionSetDatasetResets(t *testing.T) {
	s, err := NewSession(&scriptedProvider{deltas: []string{"ok"}}, newDataset(t), Options{})
	require.NoError(t, err)
	_, err = s.Ask(context.Background(), "q", nil)
	require.NoError(t, err)

	other := newDataset(t)
	require.NoError(t, s.SetDataset(other))
	assert.Same(t, other, s.Dataset())
	assert.Zero(t, s.Transcript().Len())
}

func TestSessionWithPlaceholder(t *testing.T) {
	s, err := NewSession(&ai.Placeholder{ChunkSize: 16}, newDataset(t), Options{})
	require.NoError(t, err)

	turn, err := s.Ask(context.Background(), "show me a chart", nil)
	require.NoError(t, err)
	split := s.Split(turn)
	require.True(t, split.HasChart())
	assert.True(t, strings.HasPrefix(split.Prose, "**[Placeholder AI]**"))
	assert.NotContains(t, split.Prose, "```chart")
}

func TestNewSessionRequiresProvider(t *testing.T) {
	_, err := NewSession(nil, nil, Options{})
	assert.Error(t, err)
}

func TestSessionSetDatasetDuringAsk(t *testing.T) {
	s, err := NewSession(&scriptedProvider{deltas: []string{"a", "b"}}, newDataset(t), Options{})
	require.NoError(t, err)
	ds := newDataset(t)

	var wg sync.WaitGroup
	askErrs := make(chan error, 200)
	setErrs := make(chan error, 200)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := s.Ask(context.Background(), "q", nil); err != nil && !errors.Is(err, ErrBusy) {
				askErrs <- err
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if err := s.SetDataset(ds); err != nil && !errors.Is(err, ErrBusy) {
				setErrs <- err
			}
		}
	}()
	wg.Wait()
	close(askErrs)
	close(setErrs)

	for err := range askErrs {
		t.Errorf("ask: %v", err)
	}
	for err := range setErrs {
		t.Errorf("set dataset: %v", err)
	}

	turns := s.Transcript().Turns()
	require.Equal(t, 0, len(turns)%2)
	for i, turn := range turns {
		want := ai.RoleUser
		if i%2 == 1 {
			want = ai.RoleAssistant
		}
		assert.Equal(t, want, turn.Role, "turn %d", i)
		assert.False(t, turn.InProgress)
	}
}
