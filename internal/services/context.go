package services

import "context"

type contextKey string

const (
	jobIDKey    contextKey = "job_id"
	taskNameKey contextKey = "task"
)

// WithJobID annotates context with the queue job identifier.
func WithJobID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext extracts the queue job identifier if present.
func JobIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTaskName annotates context with the executing task name.
func WithTaskName(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, taskNameKey, name)
}

// TaskNameFromContext returns the task name if present.
func TaskNameFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(taskNameKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
