package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Client abstracts completion providers.
type Client interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// ChatRequest is a single-turn completion: one system instruction and one
// user message.
type ChatRequest struct {
	System      string
	User        string
	Temperature float64
	// JSON asks the provider for a JSON object response where supported.
	JSON bool
}

// ErrEmptyCompletion is returned when the provider answers without content.
var ErrEmptyCompletion = errors.New("completion has no content")

// UpstreamError reports a failed call to the completion provider: either the
// request never got an answer (StatusCode 0) or the answer was not 2xx.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
	// Body holds the provider's JSON error payload when it sent one.
	Body json.RawMessage
	Err  error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s http status %d: %s", e.Provider, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s http status %d", e.Provider, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("%s request failed", e.Provider)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the same request may succeed.
func (e *UpstreamError) Transient() bool {
	if e.StatusCode == 0 {
		return !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded)
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
