// Package translation converts subtitle cues to other languages through an
// OpenRouter-compatible chat completion API. Cue timing never changes; the
// model only sees and returns text lines, batch by batch.
package translation
