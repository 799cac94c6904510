package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks bad or missing task input. Surfaced synchronously
	// before queueing and never retried.
	ErrValidation = errors.New("validation error")
	// ErrNotLoaded marks use of the inference engine before Load.
	ErrNotLoaded = errors.New("model not loaded")
	// ErrLoadFailure marks a fatal inference engine load failure.
	ErrLoadFailure = errors.New("model load failure")
	// ErrExternalTool marks a failure in an external binary (ffmpeg, ffprobe, whisper).
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks an unusable configuration discovered at run time.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransient marks failures that are safe to retry.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether the durable queue should re-attempt a failed
// execution. Validation and configuration problems never heal on retry.
func Retryable(err error) bool {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, ErrNotLoaded):
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
