package ai

import (
	"bytes"
	"encoding/json"
)

var (
	dataPrefix = []byte("data: ")
	doneMarker = []byte("[DONE]")
)

// Stats counts what a Decoder has seen.
type Stats struct {
	Frames    int // data frames, including the end sentinel
	Deltas    int // frames that produced text
	Malformed int // frames skipped because the payload did not parse
}

// streamEvent is the subset of an OpenAI-style chunk we read.
type streamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Decoder turns a server-sent-event byte stream into text deltas.
//
// Bytes are buffered until a '\n' completes a frame; the unterminated tail
// stays in the buffer for the next Write. Frames are split on raw bytes and
// only complete frames are decoded, so a multi-byte character split across
// writes is reassembled before it is parsed.
type Decoder struct {
	onDelta func(string)
	buf     []byte
	done    bool
	stats   Stats

	// OnSkip, when set, is called for every payload that failed to parse.
	OnSkip func(payload []byte, err error)
}

// NewDecoder returns a decoder that calls onDelta for each text fragment.
func NewDecoder(onDelta func(string)) *Decoder {
	return &Decoder{onDelta: onDelta}
}

// Write feeds the next chunk of the stream. It reports true once the end
// sentinel has been seen; anything after the sentinel is discarded.
func (d *Decoder) Write(p []byte) bool {
	if d.done {
		return true
	}
	d.buf = append(d.buf, p...)

	for {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			return false
		}
		frame := d.buf[:i]
		if d.frame(frame) {
			d.finish()
			return true
		}
		n := copy(d.buf, d.buf[i+1:])
		d.buf = d.buf[:n]
	}
}

// Flush processes a trailing frame that was never newline-terminated.
// It is processed at most once; the decoder is finished afterwards.
func (d *Decoder) Flush() bool {
	if d.done {
		return true
	}
	if len(bytes.TrimSpace(d.buf)) > 0 {
		d.frame(d.buf)
	}
	d.finish()
	return true
}

// Done reports whether the decoder has finished.
func (d *Decoder) Done() bool {
	return d.done
}

// Stats returns the frame counters.
func (d *Decoder) Stats() Stats {
	return d.stats
}

func (d *Decoder) finish() {
	d.done = true
	d.buf = nil
}

// frame handles one complete frame and reports whether it was the sentinel.
func (d *Decoder) frame(line []byte) bool {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(bytes.TrimSpace(line)) == 0 {
		return false
	}
	if !bytes.HasPrefix(line, dataPrefix) {
		return false
	}
	payload := line[len(dataPrefix):]
	d.stats.Frames++

	if bytes.Equal(payload, doneMarker) {
		return true
	}

	var ev streamEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		d.stats.Malformed++
		if d.OnSkip != nil {
			d.OnSkip(payload, err)
		}
		return false
	}

	if len(ev.Choices) == 0 || ev.Choices[0].Delta.Content == "" {
		return false
	}
	d.stats.Deltas++
	if d.onDelta != nil {
		d.onDelta(ev.Choices[0].Delta.Content)
	}
	return false
}
