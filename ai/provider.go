// Package ai talks to hosted language models about a loaded dataset.
//
// Design decisions:
//   - Provider is an interface so we can swap backends (OpenRouter, OpenAI,
//     Ollama, placeholder) without changing TUI code.
//   - Every backend streams: text arrives as deltas through a callback that
//     runs synchronously inside the read loop.
//   - All methods accept context for cancellation (async-friendly).
//   - The placeholder provider replays a canned SSE stream for development.
package ai

import (
	"context"
)

// Roles used in chat messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message as sent to the model.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Provider is the interface all AI backends must implement.
type Provider interface {
	// StreamChat sends the conversation and calls onDelta with each
	// non-empty text fragment, in arrival order, before returning.
	StreamChat(ctx context.Context, messages []Message, onDelta func(string)) error

	// Name returns the provider name for display.
	Name() string
}
