package tasks

import (
	"context"
	"errors"
	"os"

	"submate/internal/services"
)

// TranscriptionTask generates a subtitle for one media file on disk.
type TranscriptionTask struct {
	service *TranscriptionService
}

// NewTranscriptionTask binds a task to its owning service.
func NewTranscriptionTask(service *TranscriptionService) *TranscriptionTask {
	return &TranscriptionTask{service: service}
}

func (t *TranscriptionTask) Name() string { return TaskTranscription }

func (t *TranscriptionTask) ValidateInput(params Params) error {
	path := params.String(ParamFilePath)
	if path == "" {
		return services.Wrap(services.ErrValidation, TaskTranscription, "validate", "file_path is required", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return services.Wrap(services.ErrValidation, TaskTranscription, "validate", "file_path does not exist", err)
	}
	return nil
}

func (t *TranscriptionTask) Identity(params Params) string {
	return Identity(TaskTranscription, params)
}

func (t *TranscriptionTask) Execute(ctx context.Context, params Params) (*Outcome, error) {
	result, err := t.service.TranscribeFile(ctx, TranscribeFileRequest{
		Path:          params.String(ParamFilePath),
		AudioLanguage: params.Language(ParamAudioLanguage),
		TranslateTo:   params.Language(ParamTranslateTo),
		Force:         params.Bool(ParamForce),
	})
	if err != nil {
		var skipErr *SkipError
		if errors.As(err, &skipErr) {
			return nil, err
		}
		return Failed(err), nil
	}
	return Succeeded(result), nil
}
