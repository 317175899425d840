package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// QueryError is the only error type returned by the streaming engine.
// Message is meant to be shown to the user as-is.
type QueryError struct {
	Message    string
	StatusCode int   // HTTP status, 0 when the request never got a response
	Err        error // underlying transport error, if any
}

func (e *QueryError) Error() string {
	return e.Message
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// errStreamNotReadable is the message used when a response carries no body.
const errStreamNotReadable = "stream not readable"

// asQueryError converts any error into a *QueryError, keeping the cause.
func asQueryError(err error) *QueryError {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe
	}
	return &QueryError{Message: err.Error(), Err: err}
}

// statusError builds the error for a non-success response. The server's
// {"error":{"message":...}} body wins; otherwise the status line is used.
func statusError(status string, code int, body []byte) *QueryError {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg := strings.TrimSpace(parsed.Error.Message); msg != "" {
			return &QueryError{Message: msg, StatusCode: code}
		}
	}
	if status == "" {
		status = fmt.Sprintf("%d", code)
	}
	return &QueryError{Message: "API error: " + status, StatusCode: code}
}
