// Package chat keeps the conversation about a dataset: an ordered list of
// turns, of which at most one (the last) is still being streamed into.
package chat

import (
	"errors"
	"sync"
	"time"

	"github.com/DachengChen/paiData/ai"
	"github.com/google/uuid"
)

var (
	// ErrNoActiveTurn is returned when a handle does not name the turn
	// currently being streamed.
	ErrNoActiveTurn = errors.New("no active assistant turn")
	// ErrTurnInProgress is returned when a turn is added while another
	// one is still streaming.
	ErrTurnInProgress = errors.New("an assistant turn is still in progress")
)

// Turn is one message of the conversation.
type Turn struct {
	ID         uuid.UUID
	Role       string // ai.RoleUser or ai.RoleAssistant
	Text       string
	CreatedAt  time.Time
	InProgress bool
	Failed     bool
}

// Handle names the assistant turn being streamed. It is only valid until
// the turn is settled or failed.
type Handle int

// Transcript is safe for concurrent use: the streaming goroutine applies
// deltas while the view reads snapshots.
type Transcript struct {
	mu     sync.RWMutex
	turns  []Turn
	active int // index of the in-progress turn, -1 when none
	now    func() time.Time
}

// NewTranscript returns an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{active: -1, now: time.Now}
}

// AppendUser adds a user turn.
func (t *Transcript) AppendUser(text string) (Turn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active >= 0 {
		return Turn{}, ErrTurnInProgress
	}
	turn := t.newTurn(ai.RoleUser, text)
	t.turns = append(t.turns, turn)
	return turn, nil
}

// BeginAssistant appends an empty assistant turn and returns its handle.
func (t *Transcript) BeginAssistant() (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active >= 0 {
		return -1, ErrTurnInProgress
	}
	turn := t.newTurn(ai.RoleAssistant, "")
	turn.InProgress = true
	t.turns = append(t.turns, turn)
	t.active = len(t.turns) - 1
	return Handle(t.active), nil
}

// ApplyDelta appends streamed text to the active turn and returns a copy.
func (t *Transcript) ApplyDelta(h Handle, delta string) (Turn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isActive(h) {
		return Turn{}, ErrNoActiveTurn
	}
	t.turns[h].Text += delta
	return t.turns[h], nil
}

// Fail ends the active turn with an error message. Text already streamed
// is kept above the message.
func (t *Transcript) Fail(h Handle, msg string) (Turn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isActive(h) {
		return Turn{}, ErrNoActiveTurn
	}
	turn := &t.turns[h]
	if turn.Text != "" {
		turn.Text += "\n\n"
	}
	turn.Text += "Error: " + msg
	turn.Failed = true
	turn.InProgress = false
	t.active = -1
	return *turn, nil
}

// Settle marks the active turn complete and returns it.
func (t *Transcript) Settle(h Handle) (Turn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isActive(h) {
		return Turn{}, ErrNoActiveTurn
	}
	t.turns[h].InProgress = false
	t.active = -1
	return t.turns[h], nil
}

// Active reports whether a turn is being streamed.
func (t *Transcript) Active() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active >= 0
}

// Turns returns a copy of all turns in order.
func (t *Transcript) Turns() []Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// LastAssistant returns the most recent settled assistant turn.
func (t *Transcript) LastAssistant() (Turn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.turns) - 1; i >= 0; i-- {
		turn := t.turns[i]
		if turn.Role == ai.RoleAssistant && !turn.InProgress && !turn.Failed {
			return turn, true
		}
	}
	return Turn{}, false
}

// History returns the settled turns as role/text pairs for the next request.
// Failed and empty assistant turns are left out.
func (t *Transcript) History() []ai.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	msgs := make([]ai.Message, 0, len(t.turns))
	for _, turn := range t.turns {
		if turn.InProgress || turn.Failed {
			continue
		}
		if turn.Role == ai.RoleAssistant && turn.Text == "" {
			continue
		}
		msgs = append(msgs, ai.Message{Role: turn.Role, Content: turn.Text})
	}
	return msgs
}

// Reset drops every turn. It fails while a turn is streaming.
func (t *Transcript) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active >= 0 {
		return ErrTurnInProgress
	}
	t.turns = nil
	return nil
}

func (t *Transcript) isActive(h Handle) bool {
	return t.active >= 0 && int(h) == t.active
}

func (t *Transcript) newTurn(role, text string) Turn {
	return Turn{
		ID:        uuid.New(),
		Role:      role,
		Text:      text,
		CreatedAt: t.now(),
	}
}
