package tasks

import (
	"context"

	"submate/internal/services"
)

// BazarrTranscriptionTask transcribes raw audio bytes pushed by Bazarr,
// returning the transcript inline instead of writing a sidecar file.
type BazarrTranscriptionTask struct {
	service *TranscriptionService
}

// NewBazarrTranscriptionTask binds a task to its owning service.
func NewBazarrTranscriptionTask(service *TranscriptionService) *BazarrTranscriptionTask {
	return &BazarrTranscriptionTask{service: service}
}

func (t *BazarrTranscriptionTask) Name() string { return TaskBazarrTranscription }

func (t *BazarrTranscriptionTask) ValidateInput(params Params) error {
	if len(params.Bytes(ParamAudioBytes)) == 0 {
		return services.Wrap(services.ErrValidation, TaskBazarrTranscription, "validate", "audio_bytes is required", nil)
	}
	switch task := params.String(ParamTask); task {
	case "", "transcribe", "translate":
	default:
		return services.Wrap(services.ErrValidation, TaskBazarrTranscription, "validate", "task must be transcribe or translate", nil)
	}
	switch format := params.String(ParamOutputFormat); format {
	case "", "srt", "vtt", "txt", "json", "lrc":
	default:
		return services.Wrap(services.ErrValidation, TaskBazarrTranscription, "validate", "unknown output_format", nil)
	}
	return nil
}

func (t *BazarrTranscriptionTask) Identity(params Params) string {
	return Identity(TaskBazarrTranscription, params)
}

func (t *BazarrTranscriptionTask) Execute(ctx context.Context, params Params) (*Outcome, error) {
	result, err := t.service.Transcribe(ctx, ASRRequest{
		AudioBytes:     params.Bytes(ParamAudioBytes),
		Language:       params.Language(ParamLanguage),
		Translate:      params.String(ParamTask) == "translate",
		OutputFormat:   params.String(ParamOutputFormat),
		WordTimestamps: params.Bool(ParamWordTimestamps),
		TargetLanguage: params.Language(ParamTargetLanguage),
	})
	if err != nil {
		return Failed(err), nil
	}
	return Succeeded(result), nil
}
