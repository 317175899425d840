// messages.go defines Bubble Tea messages used for async communication.
//
// Dataset loads and streaming answers send results back to the
// TUI via these message types, ensuring the UI never blocks.
package tui

import (
	"time"

	"github.com/DachengChen/paiData/chat"
	"github.com/DachengChen/paiData/data"
)

// DatasetLoadedMsg is sent when a file or saved query finishes loading.
type DatasetLoadedMsg struct {
	Dataset  *data.Dataset
	Source   string // file path or "postgres:<name>"
	LoadedAt time.Time
}

// LoadErrorMsg is sent when loading a dataset fails.
type LoadErrorMsg struct {
	Err error
}

// StreamDeltaMsg carries the assistant turn after a delta was applied.
type StreamDeltaMsg struct {
	Turn chat.Turn
}

// StreamDoneMsg is sent once an ask completes, successfully or not.
type StreamDoneMsg struct {
	Turn chat.Turn
	Err  error
}

// ClipboardMsg reports the outcome of a copy.
type ClipboardMsg struct {
	What string
	Err  error
}

// StatusMsg is a transient status message for the status bar.
type StatusMsg string
