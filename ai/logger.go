// logger.go provides file-based logging for ALL AI interactions.
//
// Logs are written to ~/.paidata/logs/ai.log as zerolog JSON lines.
// Covers: StreamQuery requests and answers, skipped stream frames,
// and messages from the HTTP client.
package ai

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/DachengChen/paiData/applog"
	"github.com/rs/zerolog"
)

var (
	logMu     sync.Mutex
	logOpened bool
	aiLog     = zerolog.Nop()
)

// aiLogger returns the AI logger, opening ai.log on first use.
func aiLogger() zerolog.Logger {
	logMu.Lock()
	defer logMu.Unlock()
	if !logOpened {
		logOpened = true
		if f, err := applog.OpenFile("ai.log"); err == nil {
			aiLog = zerolog.New(f).With().Timestamp().Logger()
		}
	}
	return aiLog
}

// SetLogOutput redirects the AI log, mainly for tests.
func SetLogOutput(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	logOpened = true
	aiLog = zerolog.New(w).With().Timestamp().Logger()
}

// LogAIRequest logs any AI request with the given operation name and input details.
func LogAIRequest(operation string, provider string, details map[string]string) {
	l := aiLogger()
	ev := l.Info().Str("kind", "request").Str("op", operation).Str("provider", provider)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev = ev.Str(strings.ToLower(strings.ReplaceAll(k, " ", "_")), details[k])
	}
	ev.Send()
}

// LogAIResponse logs any AI response with the given operation name.
func LogAIResponse(operation string, response string, err error) {
	l := aiLogger()
	ev := l.Info()
	if err != nil {
		ev = l.Error().Err(err)
	}
	ev.Str("kind", "response").Str("op", operation).Str("response", response).Send()
}

// logSkippedFrame records a stream frame that did not parse.
func logSkippedFrame(payload []byte, err error) {
	l := aiLogger()
	l.Debug().Str("kind", "skip").Bytes("payload", payload).Err(err).Msg("malformed stream frame")
}

// restyLogger routes the HTTP client's own messages to ai.log instead of
// stderr, which the TUI owns.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	l := aiLogger()
	l.Error().Str("kind", "http").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	l := aiLogger()
	l.Warn().Str("kind", "http").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	l := aiLogger()
	l.Debug().Str("kind", "http").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
