package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"submate/internal/config"
	"submate/internal/language"
	"submate/internal/logging"
	"submate/internal/services"
	"submate/internal/skip"
	"submate/internal/subtitles"
	"submate/internal/translation"
	"submate/internal/whisper"
)

// AudioPreparer turns a media file into a single WAV suitable for the
// inference engine. *audio.Extractor is the production implementation.
type AudioPreparer interface {
	PrepareInput(ctx context.Context, source string, preferred language.Code, workDir string) (string, bool, error)
}

// TranscriptionService owns the full transcribe-one-file flow: skip
// decision, audio preparation, inference, optional translation, and
// subtitle output. Tasks are thin shells over this service.
type TranscriptionService struct {
	cfg        *config.Config
	manager    *whisper.Manager
	engine     *skip.Engine
	inspector  skip.Inspector
	preparer   AudioPreparer
	translator translation.Translator
	settings   skip.Settings
	logger     *slog.Logger
}

// NewTranscriptionService wires the service. translator may be nil when
// translation is disabled.
func NewTranscriptionService(
	cfg *config.Config,
	manager *whisper.Manager,
	inspector skip.Inspector,
	preparer AudioPreparer,
	translator translation.Translator,
	logger *slog.Logger,
) *TranscriptionService {
	return &TranscriptionService{
		cfg:        cfg,
		manager:    manager,
		engine:     skip.NewEngine(inspector, logger),
		inspector:  inspector,
		preparer:   preparer,
		translator: translator,
		settings:   skip.SettingsFromConfig(cfg.Subtitles),
		logger:     logging.WithComponent(logger, "transcription"),
	}
}

// TranscribeFileRequest describes one file transcription.
type TranscribeFileRequest struct {
	Path          string
	AudioLanguage language.Code
	TranslateTo   language.Code
	// Force bypasses the skip decision entirely.
	Force bool
}

// TranscribeFile runs the transcription flow for one media file. A skip
// decision surfaces as *SkipError; everything else is a hard error.
func (s *TranscriptionService) TranscribeFile(ctx context.Context, req TranscribeFileRequest) (*TranscriptionResult, error) {
	if _, err := os.Stat(req.Path); err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcription", "transcribe", "media file not accessible", err)
	}

	target := s.resolveTarget(ctx, req)
	file := slog.String(logging.FieldFile, filepath.Base(req.Path))

	if !req.Force {
		if skipped, reason := s.engine.Decide(ctx, req.Path, target, s.settings); skipped {
			s.logger.Info("skipping file", file, slog.String(logging.FieldReason, reason.String()))
			return nil, &SkipError{Path: req.Path, Reason: reason}
		}
	}

	// Whisper's built-in translate task only targets English; other target
	// languages go through the translation collaborator afterwards.
	translateToEnglish := req.TranslateTo == language.English && target != language.English

	var transcript *whisper.Result
	err := s.manager.With(ctx, func(ctx context.Context) error {
		wavPath, temporary, err := s.preparer.PrepareInput(ctx, req.Path, target, s.cfg.Paths.DataDir)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "transcription", "prepare", "prepare audio input", err)
		}
		if temporary {
			defer os.Remove(wavPath)
		}

		transcript, err = s.manager.Transcribe(ctx, whisper.Input{Path: wavPath}, whisper.Options{
			Language:  target,
			Translate: translateToEnglish,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	outputLanguage := transcript.Language
	if forced := language.Parse(s.cfg.Subtitles.ForceDetectedLanguage); forced != language.None {
		outputLanguage = forced
	}
	if translateToEnglish {
		outputLanguage = language.English
	}

	cues := transcript.Cues()
	if req.TranslateTo != language.None && req.TranslateTo != language.English && req.TranslateTo != outputLanguage {
		if s.translator == nil {
			return nil, services.Wrap(services.ErrConfiguration, "transcription", "translate",
				fmt.Sprintf("translation to %s requested but translation is not configured", req.TranslateTo), nil)
		}
		translated, err := s.translator.TranslateCues(ctx, cues, req.TranslateTo)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "transcription", "translate", "translate subtitles", err)
		}
		cues = translated
		outputLanguage = req.TranslateTo
	}

	outputPath, err := s.writeOutput(req.Path, outputLanguage, transcript, cues)
	if err != nil {
		return nil, err
	}

	s.logger.Info("subtitle written", file,
		slog.String(logging.FieldLanguage, outputLanguage.String()),
		slog.Int("segments", len(cues)),
		slog.String("output", filepath.Base(outputPath)))

	return &TranscriptionResult{
		SubtitlePath: outputPath,
		Language:     outputLanguage,
		SegmentCount: len(cues),
		Text:         transcript.Text(),
	}, nil
}

// DetectLanguage transcribes enough of the file for the engine to identify
// the spoken language.
func (s *TranscriptionService) DetectLanguage(ctx context.Context, path string) (*LanguageDetectionResult, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, services.Wrap(services.ErrValidation, "transcription", "detect", "media file not accessible", err)
	}

	var transcript *whisper.Result
	err := s.manager.With(ctx, func(ctx context.Context) error {
		wavPath, temporary, err := s.preparer.PrepareInput(ctx, path, language.None, s.cfg.Paths.DataDir)
		if err != nil {
			return services.Wrap(services.ErrExternalTool, "transcription", "prepare", "prepare audio input", err)
		}
		if temporary {
			defer os.Remove(wavPath)
		}
		transcript, err = s.manager.Transcribe(ctx, whisper.Input{Path: wavPath}, whisper.Options{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &LanguageDetectionResult{Language: transcript.Language}, nil
}

// DetectLanguageBytes identifies the spoken language of raw audio pushed
// by an external caller, without touching the filesystem.
func (s *TranscriptionService) DetectLanguageBytes(ctx context.Context, audio []byte) (*LanguageDetectionResult, error) {
	if len(audio) == 0 {
		return nil, services.Wrap(services.ErrValidation, "transcription", "detect", "audio bytes required", nil)
	}

	var transcript *whisper.Result
	err := s.manager.With(ctx, func(ctx context.Context) error {
		var innerErr error
		transcript, innerErr = s.manager.Transcribe(ctx, whisper.Input{Bytes: audio}, whisper.Options{})
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return &LanguageDetectionResult{Language: transcript.Language}, nil
}

// ASRRequest is an on-the-fly transcription of raw audio bytes, as sent by
// an external subtitle manager.
type ASRRequest struct {
	AudioBytes   []byte
	Language     language.Code
	Translate    bool
	OutputFormat string
	// WordTimestamps renders one SRT/VTT cue per word instead of per
	// segment, when the engine produced word timing.
	WordTimestamps bool
	TargetLanguage language.Code
}

// Transcribe runs raw audio through the engine and renders the transcript
// in the requested format.
func (s *TranscriptionService) Transcribe(ctx context.Context, req ASRRequest) (*ASRResult, error) {
	if len(req.AudioBytes) == 0 {
		return nil, services.Wrap(services.ErrValidation, "transcription", "asr", "audio bytes required", nil)
	}
	format := req.OutputFormat
	if format == "" {
		format = "srt"
	}

	var transcript *whisper.Result
	err := s.manager.With(ctx, func(ctx context.Context) error {
		var innerErr error
		transcript, innerErr = s.manager.Transcribe(ctx, whisper.Input{Bytes: req.AudioBytes}, whisper.Options{
			Language:  req.Language,
			Translate: req.Translate,
		})
		return innerErr
	})
	if err != nil {
		return nil, err
	}

	resultLanguage := transcript.Language
	if req.Translate {
		resultLanguage = language.English
	}

	if req.TargetLanguage != language.None && req.TargetLanguage != resultLanguage && s.translator != nil {
		translated, err := s.translator.TranslateCues(ctx, transcript.Cues(), req.TargetLanguage)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "transcription", "translate", "translate transcript", err)
		}
		transcript = &whisper.Result{Language: req.TargetLanguage, Segments: cuesToSegments(translated)}
		resultLanguage = req.TargetLanguage
	}

	content, err := renderFormat(transcript, format, req.WordTimestamps)
	if err != nil {
		return nil, err
	}
	return &ASRResult{Language: resultLanguage, Format: format, Content: content}, nil
}

func (s *TranscriptionService) resolveTarget(ctx context.Context, req TranscribeFileRequest) language.Code {
	if forced := language.Parse(s.cfg.Subtitles.ForceDetectedLanguage); forced != language.None {
		return forced
	}
	if req.AudioLanguage != language.None {
		return req.AudioLanguage
	}

	audioLangs := s.inspector.AudioLanguages(ctx, req.Path)
	for _, code := range audioLangs {
		if _, ok := s.settings.PreferredAudioLanguages[code]; ok {
			return code
		}
	}
	for _, code := range audioLangs {
		if code != language.None {
			return code
		}
	}
	return language.None
}

func (s *TranscriptionService) writeOutput(mediaPath string, code language.Code, transcript *whisper.Result, cues []subtitles.Cue) (string, error) {
	var (
		outputPath string
		content    string
	)
	if subtitles.IsAudioFile(mediaPath) && s.cfg.Subtitles.LRCForAudioFiles {
		outputPath = subtitles.LRCPath(mediaPath)
		content = (&whisper.Result{Language: code, Segments: cuesToSegments(cues)}).ToLRC()
	} else {
		outputPath = subtitles.BuildSubtitlePath(mediaPath, code, subtitles.NamingOptions{
			Style:         language.ParseNamingStyle(s.cfg.Subtitles.LanguageNaming),
			IncludeMarker: s.cfg.Subtitles.IncludeGeneratorMarker,
			IncludeModel:  s.cfg.Subtitles.IncludeModelInFilename,
			ModelName:     s.cfg.Whisper.Model,
		})
		content = subtitles.RenderSRT(cues)
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "transcription", "write", "write subtitle file", err)
	}
	return outputPath, nil
}

func renderFormat(transcript *whisper.Result, format string, wordLevel bool) (string, error) {
	switch format {
	case "srt":
		if wordLevel {
			return transcript.ToSRTWords(), nil
		}
		return transcript.ToSRT(), nil
	case "vtt":
		if wordLevel {
			return transcript.ToVTTWords(), nil
		}
		return transcript.ToVTT(), nil
	case "txt":
		return transcript.Text(), nil
	case "lrc":
		return transcript.ToLRC(), nil
	case "json":
		return transcript.ToJSON()
	default:
		return "", services.Wrap(services.ErrValidation, "transcription", "render",
			fmt.Sprintf("unknown output format %q", format), nil)
	}
}

func cuesToSegments(cues []subtitles.Cue) []whisper.Segment {
	segments := make([]whisper.Segment, 0, len(cues))
	for _, cue := range cues {
		segments = append(segments, whisper.Segment{Text: cue.Text, Start: cue.Start, End: cue.End})
	}
	return segments
}
