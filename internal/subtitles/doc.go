// Package subtitles discovers existing subtitles for media files and builds
// output sidecar paths.
//
// Embedded subtitle and audio languages come from ffprobe; sidecar files are
// matched by stem prefix and their language parsed from filename tokens. The
// generator marker distinguishes files submate wrote from ones obtained
// elsewhere, which the skip engine can be told to honor exclusively.
package subtitles
