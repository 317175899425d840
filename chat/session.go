package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/DachengChen/paiData/ai"
	"github.com/DachengChen/paiData/applog"
	"github.com/DachengChen/paiData/chart"
	"github.com/DachengChen/paiData/data"
)

var (
	// ErrBusy is returned when a question is asked while another is streaming.
	ErrBusy = errors.New("a question is already being answered")
	// ErrEmptyQuestion is returned for blank questions.
	ErrEmptyQuestion = errors.New("question is empty")
)

// Options tunes a Session.
type Options struct {
	Prompt    ai.PromptOptions
	CacheSize int // chart split cache entries
}

// Session ties a dataset, a provider and a transcript together and allows
// one in-flight question at a time.
type Session struct {
	mu       sync.RWMutex
	provider ai.Provider
	dataset  *data.Dataset
	opts     Options

	transcript *Transcript
	splitter   *chart.Splitter
	busy       atomic.Bool
}

// NewSession creates a session. ds may be nil until a dataset is loaded.
func NewSession(p ai.Provider, ds *data.Dataset, opts Options) (*Session, error) {
	if p == nil {
		return nil, errors.New("provider is required")
	}
	splitter, err := chart.NewSplitter(opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Session{
		provider:   p,
		dataset:    ds,
		opts:       opts,
		transcript: NewTranscript(),
		splitter:   splitter,
	}, nil
}

// Transcript returns the session's transcript.
func (s *Session) Transcript() *Transcript {
	return s.transcript
}

// Dataset returns the current dataset.
func (s *Session) Dataset() *data.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Provider returns the current provider.
func (s *Session) Provider() ai.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider
}

// SetDataset replaces the dataset and starts a fresh conversation.
func (s *Session) SetDataset(ds *data.Dataset) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)
	if err := s.transcript.Reset(); err != nil {
		return err
	}
	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()
	return nil
}

// SetProvider switches the backend for the next question.
func (s *Session) SetProvider(p ai.Provider) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)
	s.mu.Lock()
	s.provider = p
	s.mu.Unlock()
	return nil
}

// Busy reports whether a question is being answered.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Ask appends the question, streams the answer into a new assistant turn
// and returns that turn once settled. onUpdate, if set, receives a snapshot
// of the growing turn after every delta. On failure the turn holds
// "Error: <message>" and the *ai.QueryError is returned as well.
func (s *Session) Ask(ctx context.Context, question string, onUpdate func(Turn)) (Turn, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Turn{}, ErrEmptyQuestion
	}
	if !s.busy.CompareAndSwap(false, true) {
		return Turn{}, ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.RLock()
	p, ds := s.provider, s.dataset
	s.mu.RUnlock()

	prior := s.transcript.History()
	if _, err := s.transcript.AppendUser(question); err != nil {
		return Turn{}, err
	}
	h, err := s.transcript.BeginAssistant()
	if err != nil {
		return Turn{}, err
	}

	err = ai.StreamQuery(ctx, p, ai.Query{
		Question: question,
		Dataset:  ds,
		Prior:    prior,
		Prompt:   s.opts.Prompt,
	}, func(delta string) {
		turn, err := s.transcript.ApplyDelta(h, delta)
		if err == nil && onUpdate != nil {
			onUpdate(turn)
		}
	})
	if err != nil {
		applog.Error("ask failed: %v", err)
		turn, ferr := s.transcript.Fail(h, err.Error())
		if ferr != nil {
			return Turn{}, ferr
		}
		return turn, err
	}
	return s.transcript.Settle(h)
}

// Split separates a settled turn into chart and prose. Failed and
// in-progress turns are returned as prose only.
func (s *Session) Split(turn Turn) chart.Split {
	if turn.Failed || turn.InProgress || turn.Role != ai.RoleAssistant {
		return chart.Split{Prose: turn.Text}
	}
	return s.splitter.Split(turn.Text)
}
