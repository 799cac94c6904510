// Package logging assembles the structured slog loggers used across
// submate components.
//
// It owns the console/JSON handler selection, level and output plumbing,
// and the standardized attribute keys, and provides a no-op logger for
// tests and wiring code that cannot fail. Prefer these constructors over
// hand-rolled slog setup so every component emits data with the same shape.
package logging
