package audio

import (
	"context"
	"log/slog"

	"submate/internal/language"
	"submate/internal/logging"
	"submate/internal/media/ffprobe"
)

// Track describes one demuxed audio stream.
type Track struct {
	Index    int // position among audio streams, not container stream index
	Language language.Code
	Codec    string
}

// Inspector lists audio tracks for a media file. The production
// implementation shells out to ffprobe; tests substitute fakes.
type Inspector interface {
	Tracks(ctx context.Context, path string) ([]Track, error)
}

// FFprobeInspector inspects files with the ffprobe binary.
type FFprobeInspector struct {
	Binary string
}

// Tracks returns the audio tracks of the file at path.
func (f FFprobeInspector) Tracks(ctx context.Context, path string) ([]Track, error) {
	result, err := ffprobe.Inspect(ctx, f.Binary, path)
	if err != nil {
		return nil, err
	}
	streams := result.AudioStreams()
	tracks := make([]Track, 0, len(streams))
	for i, stream := range streams {
		tracks = append(tracks, Track{
			Index:    i,
			Language: stream.Language(),
			Codec:    stream.CodecName,
		})
	}
	return tracks, nil
}

// TrackByLanguage finds the first track matching the canonical language.
// Returns nil when no track matches or the code is None.
func TrackByLanguage(tracks []Track, code language.Code) *Track {
	if code == language.None {
		return nil
	}
	for i := range tracks {
		if tracks[i].Language == code {
			return &tracks[i]
		}
	}
	return nil
}

// Languages lists the track languages in container order, including None for
// untagged tracks.
func Languages(tracks []Track) []language.Code {
	codes := make([]language.Code, 0, len(tracks))
	for _, track := range tracks {
		codes = append(codes, track.Language)
	}
	return codes
}

// SelectTrack picks the audio track to transcribe: the requested language
// when present, otherwise the first track. Returns -1 when there are no
// audio tracks.
func SelectTrack(tracks []Track, preferred language.Code, logger *slog.Logger) int {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(tracks) == 0 {
		return -1
	}
	if track := TrackByLanguage(tracks, preferred); track != nil {
		logger.Debug("selected audio track by language",
			slog.String(logging.FieldLanguage, preferred.ISO1()),
			slog.Int("track", track.Index))
		return track.Index
	}
	logger.Debug("using first audio track", slog.Int("track", tracks[0].Index))
	return tracks[0].Index
}
