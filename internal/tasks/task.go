package tasks

import (
	"context"
	"fmt"
)

// Stable task names; queue payloads are dispatched by these.
const (
	TaskTranscription       = "transcription"
	TaskBazarrTranscription = "bazarr_transcription"
	TaskLanguageDetection   = "language_detection"
)

// Task is one unit of work. Implementations are stateless beyond their
// injected dependencies and are constructed per invocation.
//
// Execute never returns a Go error for expected failures; those become an
// unsuccessful Outcome. The one exception is SkipError, which propagates so
// callers can distinguish "nothing to do" from "failed". Execute must
// tolerate being invoked more than once for the same submission, since the
// queue retries failed attempts.
type Task interface {
	Name() string
	ValidateInput(params Params) error
	Identity(params Params) string
	Execute(ctx context.Context, params Params) (*Outcome, error)
}

// Factory constructs a task by name with dependencies already bound.
type Factory func() (Task, error)

// Registry maps stable task names to factories.
type Registry map[string]Factory

// NewRegistry binds every known task to a shared transcription service.
func NewRegistry(service *TranscriptionService) Registry {
	return Registry{
		TaskTranscription:       func() (Task, error) { return NewTranscriptionTask(service), nil },
		TaskBazarrTranscription: func() (Task, error) { return NewBazarrTranscriptionTask(service), nil },
		TaskLanguageDetection:   func() (Task, error) { return NewLanguageDetectionTask(service), nil },
	}
}

// New constructs the named task.
func (r Registry) New(name string) (Task, error) {
	factory, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("unknown task %q", name)
	}
	return factory()
}

// Names lists the registered task names.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	return names
}
