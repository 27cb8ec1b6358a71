package llm

import (
	"errors"
	"fmt"
)

// Kind tags why a provider call failed.
type Kind string

const (
	// KindConfig means the call could not be attempted (no credentials).
	KindConfig Kind = "config"
	// KindTransport covers network errors, timeouts and non-2xx statuses.
	KindTransport Kind = "transport"
	// KindParse means the envelope or the message content was not valid JSON.
	KindParse Kind = "parse"
)

// ErrMissingAPIKey is wrapped by every KindConfig error raised for an empty key.
var ErrMissingAPIKey = errors.New("api key required")

// Error is the tagged failure returned by provider calls.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int // set for HTTP status failures
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s error: http %d: %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the failure tag carried by err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	return ""
}

func configError(op string) error {
	return &Error{Kind: KindConfig, Op: op, Err: ErrMissingAPIKey}
}

func transportError(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

func parseError(op string, err error) error {
	return &Error{Kind: KindParse, Op: op, Err: err}
}

// NewParseError tags err as a KindParse failure for callers that parse
// provider content outside this package.
func NewParseError(op string, err error) error {
	return parseError(op, err)
}
