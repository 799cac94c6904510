package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"submate/internal/language"
	"submate/internal/logging"
)

// Extraction parameters expected by the speech-to-text engine.
const (
	sampleRate = "16000"
	channels   = "1"
)

// CommandRunner executes an external command. Injected by tests.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Extractor prepares transcription input from media files with ffmpeg.
type Extractor struct {
	inspector Inspector
	binary    string
	runner    CommandRunner
	logger    *slog.Logger
}

// NewExtractor builds an extractor around the given inspector and ffmpeg binary.
func NewExtractor(inspector Inspector, ffmpegBinary string, logger *slog.Logger) *Extractor {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &Extractor{
		inspector: inspector,
		binary:    ffmpegBinary,
		logger:    logging.WithComponent(logger, "audio"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Extractor) WithCommandRunner(runner CommandRunner) {
	e.runner = runner
}

// ExtractTrack demuxes one audio track to a 16 kHz mono WAV at dest.
func (e *Extractor) ExtractTrack(ctx context.Context, source string, trackIndex int, dest string) error {
	args := []string{
		"-y", "-v", "error",
		"-i", source,
		"-map", fmt.Sprintf("0:a:%d", trackIndex),
		"-ac", channels,
		"-ar", sampleRate,
		"-f", "wav",
		dest,
	}
	if err := e.run(ctx, e.binary, args...); err != nil {
		return fmt.Errorf("extract audio track %d: %w", trackIndex, err)
	}
	return nil
}

// PrepareInput decides what the inference engine should read. Files with at
// most one audio track pass through untouched; multi-track files get the
// selected track extracted into workDir. The second return reports whether a
// temporary file was created (callers own its removal).
func (e *Extractor) PrepareInput(ctx context.Context, source string, preferred language.Code, workDir string) (string, bool, error) {
	tracks, err := e.inspector.Tracks(ctx, source)
	if err != nil {
		// Inspection problems fall back to handing the engine the raw file.
		e.logger.Warn("audio track inspection failed, using source directly", logging.Error(err))
		return source, false, nil
	}
	if len(tracks) <= 1 {
		return source, false, nil
	}

	index := SelectTrack(tracks, preferred, e.logger)
	dest, err := os.CreateTemp(workDir, "submate-audio-*.wav")
	if err != nil {
		return "", false, fmt.Errorf("create temp audio file: %w", err)
	}
	destPath := dest.Name()
	if err := dest.Close(); err != nil {
		_ = os.Remove(destPath)
		return "", false, fmt.Errorf("close temp audio file: %w", err)
	}

	if err := e.ExtractTrack(ctx, source, index, destPath); err != nil {
		_ = os.Remove(destPath)
		return "", false, err
	}
	return destPath, true, nil
}

func (e *Extractor) run(ctx context.Context, name string, args ...string) error {
	if e.runner != nil {
		return e.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
