package tasks

import (
	"context"
	"os"

	"submate/internal/services"
)

// LanguageDetectionTask identifies the spoken language of a media file,
// or of raw audio bytes pushed by an external caller.
type LanguageDetectionTask struct {
	service *TranscriptionService
}

// NewLanguageDetectionTask binds a task to its owning service.
func NewLanguageDetectionTask(service *TranscriptionService) *LanguageDetectionTask {
	return &LanguageDetectionTask{service: service}
}

func (t *LanguageDetectionTask) Name() string { return TaskLanguageDetection }

func (t *LanguageDetectionTask) ValidateInput(params Params) error {
	path := params.String(ParamFilePath)
	if path == "" {
		if len(params.Bytes(ParamAudioBytes)) == 0 {
			return services.Wrap(services.ErrValidation, TaskLanguageDetection, "validate", "file_path or audio_bytes is required", nil)
		}
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return services.Wrap(services.ErrValidation, TaskLanguageDetection, "validate", "file_path does not exist", err)
	}
	return nil
}

func (t *LanguageDetectionTask) Identity(params Params) string {
	return Identity(TaskLanguageDetection, params)
}

func (t *LanguageDetectionTask) Execute(ctx context.Context, params Params) (*Outcome, error) {
	var (
		result *LanguageDetectionResult
		err    error
	)
	if path := params.String(ParamFilePath); path != "" {
		result, err = t.service.DetectLanguage(ctx, path)
	} else {
		result, err = t.service.DetectLanguageBytes(ctx, params.Bytes(ParamAudioBytes))
	}
	if err != nil {
		return Failed(err), nil
	}
	return Succeeded(result), nil
}
