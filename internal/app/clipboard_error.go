package app

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// clipboardError records which tool and operation failed and how long the
// call ran before it gave up.
type clipboardError struct {
	Tool    string
	Op      string
	Kind    string
	Elapsed time.Duration
	Err     error
}

func (e *clipboardError) Error() string {
	switch e.Kind {
	case "timeout":
		return fmt.Sprintf("clipboard.%s timed out after %s (%s): %v", e.Op, e.Elapsed, e.Tool, e.Err)
	case "canceled":
		return fmt.Sprintf("clipboard.%s canceled (%s): %v", e.Op, e.Tool, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *clipboardError) Unwrap() error { return e.Err }

func clipboardFailure(tool, op string, started time.Time, err error) error {
	if err == nil {
		return nil
	}
	kind := "failed"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = "timeout"
	case errors.Is(err, context.Canceled):
		kind = "canceled"
	}
	return &clipboardError{
		Tool:    tool,
		Op:      op,
		Kind:    kind,
		Elapsed: time.Since(started).Round(100 * time.Millisecond),
		Err:     err,
	}
}

// clipboardErrorMeta is attached to envelopes under --verbose.
func clipboardErrorMeta(err error) map[string]any {
	var ce *clipboardError
	if !errors.As(err, &ce) {
		return nil
	}
	return map[string]any{
		"tool":       ce.Tool,
		"op":         ce.Op,
		"kind":       ce.Kind,
		"elapsed_ms": ce.Elapsed.Milliseconds(),
	}
}
