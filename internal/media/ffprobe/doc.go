// Package ffprobe shells out to ffprobe and parses its JSON output into
// typed stream and format records, including normalized per-stream language
// tags used by the skip engine.
package ffprobe
