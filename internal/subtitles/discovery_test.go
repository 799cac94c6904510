package subtitles

import (
	"os"
	"path/filepath"
	"testing"

	"submate/internal/logging"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestExternalSubtitlePaths(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "movie.mkv")
	writeFile(t, media)
	writeFile(t, filepath.Join(dir, "movie.en.srt"))
	writeFile(t, filepath.Join(dir, "movie.submate.medium.de.srt"))
	writeFile(t, filepath.Join(dir, "other.en.srt"))
	writeFile(t, filepath.Join(dir, "movie.nfo"))

	lib := NewLibrary("", logging.NewNop())
	found := lib.ExternalSubtitlePaths(media)
	if len(found) != 2 {
		t.Fatalf("expected 2 sidecars, got %d: %v", len(found), found)
	}
	for _, path := range found {
		base := filepath.Base(path)
		if base != "movie.en.srt" && base != "movie.submate.medium.de.srt" {
			t.Errorf("unexpected sidecar %s", base)
		}
	}
}

func TestExternalSubtitlePathsMissingDir(t *testing.T) {
	lib := NewLibrary("", logging.NewNop())
	if found := lib.ExternalSubtitlePaths("/does/not/exist/movie.mkv"); found != nil {
		t.Errorf("expected nil for missing directory, got %v", found)
	}
}

func TestHasLRC(t *testing.T) {
	dir := t.TempDir()
	song := filepath.Join(dir, "song.mp3")
	writeFile(t, song)

	lib := NewLibrary("", logging.NewNop())
	if lib.HasLRC(song) {
		t.Error("no lyrics sidecar yet")
	}
	writeFile(t, filepath.Join(dir, "song.lrc"))
	if !lib.HasLRC(song) {
		t.Error("expected lyrics sidecar to be found")
	}
}

func TestHasExternalSubtitleLanguage(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "movie.mkv")
	writeFile(t, media)
	writeFile(t, filepath.Join(dir, "movie.en.srt"))
	writeFile(t, filepath.Join(dir, "movie.submate.de.srt"))

	lib := NewLibrary("", logging.NewNop())

	if !lib.hasExternalSubtitleLanguage(media, "en", false) {
		t.Error("expected en sidecar")
	}
	if lib.hasExternalSubtitleLanguage(media, "en", true) {
		t.Error("en sidecar has no generator marker")
	}
	if !lib.hasExternalSubtitleLanguage(media, "de", true) {
		t.Error("expected generated de sidecar")
	}
	if lib.hasExternalSubtitleLanguage(media, "fr", false) {
		t.Error("no fr sidecar exists")
	}
}
