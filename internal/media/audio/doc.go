// Package audio inspects audio tracks and prepares transcription input.
//
// Track listing goes through ffprobe; extraction of a specific track to the
// 16 kHz mono WAV the inference engine expects goes through ffmpeg. Files
// with a single audio track are handed to the engine untouched.
package audio
