package tasks

import (
	"encoding/json"
	"fmt"

	"submate/internal/language"
)

// TaskResult is the uniform outcome of executing a task. Success carries
// data; failure carries an error message. Expected failures never surface
// as Go errors from Execute, so queue workers and immediate callers share
// one handling path.
type TaskResult[T any] struct {
	Success  bool           `json:"success"`
	Data     T              `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Outcome is the result shape tasks return through the uniform interface.
type Outcome = TaskResult[any]

// Succeeded builds a successful outcome wrapping the given data.
func Succeeded(data any) *Outcome {
	return &Outcome{Success: true, Data: data}
}

// Failed converts an execution error into an unsuccessful outcome.
func Failed(err error) *Outcome {
	return &Outcome{Success: false, Error: err.Error()}
}

// WithMetadata attaches a metadata entry and returns the result.
func (r *TaskResult[T]) WithMetadata(key string, value any) *TaskResult[T] {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any, 1)
	}
	r.Metadata[key] = value
	return r
}

// Encode serializes the result for queue storage.
func (r *TaskResult[T]) Encode() (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("encode outcome: %w", err)
	}
	return string(data), nil
}

// TranscriptionResult is the terminal artifact of a successful
// transcription task.
type TranscriptionResult struct {
	SubtitlePath string        `json:"subtitle_path"`
	Language     language.Code `json:"language"`
	SegmentCount int           `json:"segment_count"`
	Text         string        `json:"text"`
}

// LanguageDetectionResult is the artifact of a detection task.
type LanguageDetectionResult struct {
	Language language.Code `json:"language"`
}

// ASRResult is the artifact of an on-the-fly transcription for an external
// caller, rendered in the requested output format.
type ASRResult struct {
	Language language.Code `json:"language"`
	Format   string        `json:"format"`
	Content  string        `json:"content"`
}
