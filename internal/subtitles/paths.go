package subtitles

import (
	"path/filepath"
	"strings"

	"submate/internal/language"
)

// GeneratorMarker is embedded in filenames of subtitles submate produced so
// they can be told apart from files obtained elsewhere.
const GeneratorMarker = "submate"

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mkv": {}, ".avi": {}, ".mov": {}, ".wmv": {}, ".flv": {},
	".webm": {}, ".m4v": {}, ".mpg": {}, ".mpeg": {}, ".3gp": {}, ".ogv": {},
}

var audioExtensions = map[string]struct{}{
	".mp3": {}, ".flac": {}, ".aac": {}, ".m4a": {}, ".wav": {}, ".ogg": {},
	".opus": {}, ".wma": {}, ".alac": {}, ".ape": {},
}

var subtitleExtensions = map[string]struct{}{
	".srt": {}, ".vtt": {}, ".sub": {}, ".ass": {}, ".ssa": {}, ".idx": {},
	".sbv": {}, ".pgs": {}, ".ttml": {}, ".lrc": {},
}

// IsVideoFile reports whether the path has a recognized video extension.
func IsVideoFile(path string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsAudioFile reports whether the path has a recognized audio extension.
func IsAudioFile(path string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsSubtitleFile reports whether the path has a recognized subtitle extension.
func IsSubtitleFile(path string) bool {
	_, ok := subtitleExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// NamingOptions controls how generated subtitle filenames are assembled.
type NamingOptions struct {
	Style         language.NamingStyle
	IncludeMarker bool
	IncludeModel  bool
	ModelName     string
	Extension     string // defaults to ".srt"
}

// BuildSubtitlePath derives the sidecar path for a media file:
// movie.mkv -> movie.submate.eng.srt (depending on options).
func BuildSubtitlePath(mediaPath string, code language.Code, opts NamingOptions) string {
	stem := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath))
	parent := filepath.Dir(mediaPath)

	parts := []string{stem}
	if opts.IncludeMarker {
		parts = append(parts, GeneratorMarker)
	}
	if opts.IncludeModel && opts.ModelName != "" {
		parts = append(parts, opts.ModelName)
	}
	if formatted := opts.Style.Format(code); formatted != "" {
		parts = append(parts, formatted)
	}

	extension := opts.Extension
	if extension == "" {
		extension = ".srt"
	}
	if !strings.HasPrefix(extension, ".") {
		extension = "." + extension
	}

	return filepath.Join(parent, strings.Join(parts, ".")+extension)
}

// LRCPath returns the lyrics sidecar path for an audio file.
func LRCPath(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + ".lrc"
}
