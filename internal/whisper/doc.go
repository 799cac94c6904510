// Package whisper manages the speech-to-text engine lifecycle.
//
// The Manager holds at most one loaded engine and serializes every
// transcription through a single mutex so one model never serves two
// requests at once. Byte and stream inputs are staged to temporary WAV
// files (raw PCM gets a RIFF header) and cleaned up on all exit paths.
// The production engine shells out to WhisperX via uvx.
package whisper
