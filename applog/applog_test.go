package applog

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want zerolog.Level
	}{
		{"Empty defaults to Info", "", zerolog.InfoLevel},
		{"Debug level", "debug", zerolog.DebugLevel},
		{"Case insensitive", "WARN", zerolog.WarnLevel},
		{"Invalid defaults to Info", "loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.raw))
		})
	}
}

func TestEventWritesCategory(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(Close)

	Event("DATASET", "loaded %d rows", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DATASET", entry["category"])
	assert.Equal(t, "loaded 42 rows", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestSetLevelFiltersInfo(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetLevel("info")
		Close()
	})

	SetLevel("error")
	Info("hidden")
	assert.Empty(t, buf.String())

	Error("shown %s", "now")
	assert.Contains(t, buf.String(), "shown now")
}
