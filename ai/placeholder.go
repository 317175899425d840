package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Placeholder is an offline provider for development. It renders a canned
// answer as an SSE byte stream and replays it through the real Decoder.
type Placeholder struct {
	Delay     time.Duration // pause between chunks
	ChunkSize int           // bytes per simulated network read
}

var _ Provider = (*Placeholder)(nil)

func NewPlaceholder() *Placeholder {
	return &Placeholder{Delay: 15 * time.Millisecond, ChunkSize: 24}
}

func (p *Placeholder) Name() string {
	return "placeholder"
}

func (p *Placeholder) StreamChat(ctx context.Context, messages []Message, onDelta func(string)) error {
	question := ""
	if len(messages) > 0 {
		question = messages[len(messages)-1].Content
	}
	stream := placeholderStream(placeholderAnswer(question))

	size := p.ChunkSize
	if size <= 0 {
		size = len(stream)
	}
	dec := NewDecoder(onDelta)
	for start := 0; start < len(stream); start += size {
		if p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return &QueryError{Message: fmt.Sprintf("stream interrupted: %v", ctx.Err()), Err: ctx.Err()}
			}
		}
		end := start + size
		if end > len(stream) {
			end = len(stream)
		}
		if dec.Write(stream[start:end]) {
			return nil
		}
	}
	dec.Flush()
	return nil
}

func placeholderAnswer(question string) string {
	return fmt.Sprintf("**[Placeholder AI]**\n\nYou asked: _%s_\n\n"+
		"This is a canned response. Configure a real AI provider "+
		"(set `OPENROUTER_API_KEY`, or pick `openai` / `ollama` in `~/.paidata/config.yaml`) "+
		"to get answers about your data.\n\n"+
		"Here is what a chart looks like:\n\n"+
		"```chart\n"+
		`{"type":"bar","title":"Example","data":[{"name":"A","value":3},{"name":"B","value":5},{"name":"C","value":2}]}`+
		"\n```\n", strings.TrimSpace(question))
}

// placeholderStream encodes text as OpenAI-style SSE frames, a few words per
// frame, followed by the end sentinel.
func placeholderStream(text string) []byte {
	var sb strings.Builder
	sb.WriteString(": placeholder stream\n\n")
	for _, piece := range splitKeepSpace(text, 3) {
		frame, _ := json.Marshal(map[string]any{
			"choices": []any{map[string]any{"delta": map[string]string{"content": piece}}},
		})
		sb.WriteString("data: ")
		sb.Write(frame)
		sb.WriteString("\n\n")
	}
	sb.WriteString("data: [DONE]\n")
	return []byte(sb.String())
}

// splitKeepSpace cuts s into pieces of about n words each, keeping every byte.
func splitKeepSpace(s string, n int) []string {
	var out []string
	words := 0
	start := 0
	for i, r := range s {
		if r == ' ' || r == '\n' {
			words++
			if words == n {
				out = append(out, s[start:i+1])
				start = i + 1
				words = 0
			}
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
