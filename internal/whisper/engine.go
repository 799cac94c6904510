package whisper

import (
	"context"

	"submate/internal/language"
)

// Options tunes a single transcription call.
type Options struct {
	// Language pins the transcription language. None lets the engine detect it.
	Language language.Code
	// Translate asks the engine to translate speech to English instead of
	// transcribing it verbatim.
	Translate bool
}

// Word carries word-level timing when the engine produced it.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment is one timed span of transcribed speech.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words,omitempty"`
}

// Result is the transcript of one media file.
type Result struct {
	Language language.Code `json:"language"`
	Segments []Segment     `json:"segments"`
}

// Engine is a loaded speech-to-text backend. Engines are not safe for
// concurrent use; the Manager serializes access.
type Engine interface {
	// Load prepares the engine for transcription (binary checks, model
	// download). Called once by the Manager before the first Transcribe.
	Load(ctx context.Context) error
	// Transcribe converts a mono 16kHz WAV file to a transcript.
	Transcribe(ctx context.Context, wavPath string, opts Options) (*Result, error)
	// Close releases the engine's resources, including device memory.
	Close() error
}
