package logging

import (
	"context"
	"log/slog"
)

// Standardized structured logging keys shared across components.
const (
	FieldComponent = "component"
	FieldJobID     = "job_id"
	FieldTask      = "task"
	FieldFile      = "file"
	FieldLanguage  = "language"
	FieldReason    = "reason"
)

// Error wraps an error value in the conventional "error" attribute.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (noopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h noopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h noopHandler) WithGroup(string) slog.Handler           { return h }

// NewNop returns a logger that discards everything. Used by tests and by
// wiring code that cannot fail.
func NewNop() *slog.Logger {
	return slog.New(noopHandler{})
}

// WithComponent creates a logger tagged with a standardized component
// attribute. A nil base falls back to the no-op logger.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(slog.String(FieldComponent, component))
}
