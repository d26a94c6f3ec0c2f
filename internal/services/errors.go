package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrVerbFailed marks failures that abort a single verb. Callers may skip
	// to the next backlog entry.
	ErrVerbFailed = errors.New("verb failed")
	// ErrRunAborted marks failures that abort the whole invocation.
	ErrRunAborted = errors.New("run aborted")
	// ErrUserQuit is returned when the operator answers "quit" at an
	// interactive gate. It is always fatal to the run.
	ErrUserQuit      = errors.New("quit requested")
	ErrConfiguration = errors.New("configuration error")
	ErrExternal      = errors.New("external service error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrVerbFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatalToRun reports whether err must stop the run loop instead of only
// skipping the current verb.
func IsFatalToRun(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrRunAborted), errors.Is(err, ErrUserQuit):
		return true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.Is(err, ErrVerbFailed):
		return false
	default:
		return true
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
