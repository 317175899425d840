package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

const (
	defaultMaxTokens = 2048
	readChunkSize    = 4096
	maxErrorBody     = 64 << 10
)

// ClientConfig configures an OpenAI-compatible streaming client.
type ClientConfig struct {
	Name       string // provider name for display, e.g. "openrouter"
	BaseURL    string // e.g. https://openrouter.ai/api/v1
	APIKey     string // sent as a bearer token when set
	Model      string
	MaxTokens  int
	HTTPClient *http.Client // optional, mainly for tests
}

// Client streams chat completions from any endpoint that speaks the
// OpenAI /chat/completions SSE protocol (OpenRouter, OpenAI, Ollama).
type Client struct {
	name      string
	model     string
	maxTokens int
	apiKey    string
	http      *resty.Client
}

var _ Provider = (*Client)(nil)

// NewClient creates a streaming client.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "text/event-stream").
		SetLogger(restyLogger{})

	name := cfg.Name
	if name == "" {
		name = "openai-compatible"
	}

	return &Client{
		name:      name,
		model:     cfg.Model,
		maxTokens: maxTokens,
		apiKey:    cfg.APIKey,
		http:      rc,
	}, nil
}

func (c *Client) Name() string {
	return fmt.Sprintf("%s (%s)", c.name, c.model)
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

type chatRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
	Stream    bool      `json:"stream"`
}

// StreamChat issues one streaming request and feeds the body through a
// Decoder. onDelta runs on the calling goroutine; the next chunk is not
// read until it returns. Every failure is a *QueryError.
func (c *Client) StreamChat(ctx context.Context, messages []Message, onDelta func(string)) error {
	req := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			Messages:  messages,
			Stream:    true,
		}).
		SetDoNotParseResponse(true)
	if c.apiKey != "" {
		req.SetAuthToken(c.apiKey)
	}

	resp, err := req.Post("/chat/completions")
	if err != nil {
		return &QueryError{Message: fmt.Sprintf("request failed: %v", err), Err: err}
	}

	body := resp.RawBody()
	if !resp.IsSuccess() {
		var raw []byte
		if body != nil {
			raw, _ = io.ReadAll(io.LimitReader(body, maxErrorBody))
			body.Close()
		}
		return statusError(resp.Status(), resp.StatusCode(), raw)
	}
	if !readable(resp.RawResponse) {
		return &QueryError{Message: errStreamNotReadable, StatusCode: resp.StatusCode()}
	}
	defer body.Close()

	dec := NewDecoder(onDelta)
	dec.OnSkip = logSkippedFrame

	buf := make([]byte, readChunkSize)
	for {
		n, err := body.Read(buf)
		if n > 0 && dec.Write(buf[:n]) {
			return nil
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			return &QueryError{
				Message:    fmt.Sprintf("stream interrupted: %v", err),
				StatusCode: resp.StatusCode(),
				Err:        err,
			}
		}
	}
	dec.Flush()
	return nil
}

// readable reports whether a successful response can carry a stream.
// http.Client replaces a missing body with an empty reader, so a declared
// length of zero counts as no body. Chunked streams report -1.
func readable(r *http.Response) bool {
	if r == nil || r.Body == nil || r.Body == http.NoBody {
		return false
	}
	return r.ContentLength != 0
}
