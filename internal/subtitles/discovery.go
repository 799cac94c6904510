package subtitles

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"submate/internal/language"
	"submate/internal/logging"
	"submate/internal/media/ffprobe"
)

// Library answers read-only questions about existing subtitles for media
// files. It is the production backend for the skip engine's state lookups.
type Library struct {
	ffprobeBinary string
	logger        *slog.Logger
}

// NewLibrary builds a Library using the given ffprobe binary.
func NewLibrary(ffprobeBinary string, logger *slog.Logger) *Library {
	if ffprobeBinary == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Library{
		ffprobeBinary: ffprobeBinary,
		logger:        logging.WithComponent(logger, "subtitles"),
	}
}

// InternalSubtitleLanguages lists the languages of embedded subtitle
// streams, including language.None for untagged streams. Unreadable files
// yield an empty list rather than an error; the skip engine treats missing
// information as "no subtitles".
func (l *Library) InternalSubtitleLanguages(ctx context.Context, path string) []language.Code {
	result, err := ffprobe.Inspect(ctx, l.ffprobeBinary, path)
	if err != nil {
		l.logger.Debug("failed to read embedded subtitles", slog.String(logging.FieldFile, filepath.Base(path)), logging.Error(err))
		return nil
	}
	streams := result.SubtitleStreams()
	codes := make([]language.Code, 0, len(streams))
	for _, stream := range streams {
		codes = append(codes, stream.Language())
	}
	return codes
}

// AudioLanguages lists the languages of the file's audio tracks.
func (l *Library) AudioLanguages(ctx context.Context, path string) []language.Code {
	result, err := ffprobe.Inspect(ctx, l.ffprobeBinary, path)
	if err != nil {
		l.logger.Debug("failed to read audio languages", slog.String(logging.FieldFile, filepath.Base(path)), logging.Error(err))
		return nil
	}
	streams := result.AudioStreams()
	codes := make([]language.Code, 0, len(streams))
	for _, stream := range streams {
		codes = append(codes, stream.Language())
	}
	return codes
}

// ExternalSubtitlePaths finds sidecar subtitle files whose name starts with
// the media file's stem (movie.en.srt, movie.submate.medium.en.srt, ...).
func (l *Library) ExternalSubtitlePaths(path string) []string {
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	entries, err := os.ReadDir(dir)
	if err != nil {
		l.logger.Debug("failed to scan directory", slog.String("dir", dir), logging.Error(err))
		return nil
	}

	var found []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == filepath.Base(path) {
			continue
		}
		if !IsSubtitleFile(name) {
			continue
		}
		entryStem := strings.TrimSuffix(name, filepath.Ext(name))
		if strings.HasPrefix(entryStem, stem) {
			found = append(found, filepath.Join(dir, name))
		}
	}
	return found
}

// HasAnyExternalSubtitle reports whether any sidecar subtitle exists.
func (l *Library) HasAnyExternalSubtitle(path string) bool {
	return len(l.ExternalSubtitlePaths(path)) > 0
}

// HasLRC reports whether a lyrics sidecar exists for an audio file.
func (l *Library) HasLRC(path string) bool {
	info, err := os.Stat(LRCPath(path))
	return err == nil && !info.IsDir()
}

// HasSubtitleLanguage reports whether a subtitle in the given language
// exists, embedded or sidecar. With onlyGenerated set, only sidecars
// carrying the generator marker count; embedded streams never do.
func (l *Library) HasSubtitleLanguage(ctx context.Context, path string, code language.Code, onlyGenerated bool) bool {
	if code == language.None {
		return false
	}
	if !onlyGenerated {
		for _, internal := range l.InternalSubtitleLanguages(ctx, path) {
			if internal == code {
				return true
			}
		}
	}
	return l.hasExternalSubtitleLanguage(path, code, onlyGenerated)
}

// HasInternalSubtitleLanguage reports whether an embedded subtitle stream in
// the given language exists.
func (l *Library) HasInternalSubtitleLanguage(ctx context.Context, path string, code language.Code) bool {
	if code == language.None {
		return false
	}
	for _, internal := range l.InternalSubtitleLanguages(ctx, path) {
		if internal == code {
			return true
		}
	}
	return false
}

func (l *Library) hasExternalSubtitleLanguage(path string, code language.Code, onlyGenerated bool) bool {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, subPath := range l.ExternalSubtitlePaths(path) {
		base := filepath.Base(subPath)
		if onlyGenerated && !strings.Contains(strings.ToLower(base), GeneratorMarker) {
			continue
		}
		if ParseSidecarLanguage(base, stem) == code {
			return true
		}
	}
	return false
}

// ParseSidecarLanguage extracts the language from a sidecar filename. Each
// dot-separated token after the media stem is tried in turn; the first one
// that parses as a language wins.
func ParseSidecarLanguage(sidecarName, mediaStem string) language.Code {
	stem := strings.TrimSuffix(sidecarName, filepath.Ext(sidecarName))
	if !strings.HasPrefix(stem, mediaStem) {
		return language.None
	}
	suffix := strings.TrimPrefix(strings.TrimPrefix(stem, mediaStem), ".")
	if suffix == "" {
		return language.None
	}
	for _, part := range strings.Split(suffix, ".") {
		if code := language.Parse(part); code != language.None {
			return code
		}
	}
	return language.None
}
