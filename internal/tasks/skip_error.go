package tasks

import (
	"errors"
	"fmt"

	"submate/internal/skip"
)

// SkipError signals that a task's work was intentionally not done. It is
// control flow, not a failure: Execute returns it as a Go error so callers
// can render "nothing to do" differently from "broke", and it is never
// converted into an unsuccessful TaskResult.
type SkipError struct {
	Path   string
	Reason skip.Reason
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skipped %s: %s", e.Path, e.Reason.Message())
}

// AsSkip extracts a SkipError from an error chain.
func AsSkip(err error) (*SkipError, bool) {
	var skipErr *SkipError
	if errors.As(err, &skipErr) {
		return skipErr, true
	}
	return nil, false
}
