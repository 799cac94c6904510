package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"submate/internal/language"
	"submate/internal/logging"
)

type fakeInspector struct {
	tracks []Track
	err    error
}

func (f fakeInspector) Tracks(context.Context, string) ([]Track, error) {
	return f.tracks, f.err
}

func TestTrackByLanguage(t *testing.T) {
	tracks := []Track{
		{Index: 0, Language: "ja", Codec: "aac"},
		{Index: 1, Language: "en", Codec: "ac3"},
	}
	if got := TrackByLanguage(tracks, "en"); got == nil || got.Index != 1 {
		t.Errorf("TrackByLanguage(en) = %v", got)
	}
	if got := TrackByLanguage(tracks, "fr"); got != nil {
		t.Errorf("expected nil for missing language, got %v", got)
	}
	if got := TrackByLanguage(tracks, language.None); got != nil {
		t.Errorf("expected nil for None, got %v", got)
	}
}

func TestSelectTrackFallsBackToFirst(t *testing.T) {
	tracks := []Track{
		{Index: 0, Language: "ja"},
		{Index: 1, Language: "en"},
	}
	if got := SelectTrack(tracks, "de", logging.NewNop()); got != 0 {
		t.Errorf("SelectTrack fallback = %d, want 0", got)
	}
	if got := SelectTrack(tracks, "en", logging.NewNop()); got != 1 {
		t.Errorf("SelectTrack match = %d, want 1", got)
	}
	if got := SelectTrack(nil, "en", logging.NewNop()); got != -1 {
		t.Errorf("SelectTrack empty = %d, want -1", got)
	}
}

func TestPrepareInputSingleTrackPassesThrough(t *testing.T) {
	extractor := NewExtractor(fakeInspector{tracks: []Track{{Index: 0, Language: "en"}}}, "ffmpeg", logging.NewNop())
	extractor.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("ffmpeg must not run for single-track input")
		return nil
	})

	path, temp, err := extractor.PrepareInput(t.Context(), "/media/movie.mkv", "en", t.TempDir())
	if err != nil {
		t.Fatalf("PrepareInput: %v", err)
	}
	if temp {
		t.Error("expected no temp file")
	}
	if path != "/media/movie.mkv" {
		t.Errorf("path = %q", path)
	}
}

func TestPrepareInputExtractsSelectedTrack(t *testing.T) {
	inspector := fakeInspector{tracks: []Track{
		{Index: 0, Language: "ja"},
		{Index: 1, Language: "en"},
	}}
	extractor := NewExtractor(inspector, "ffmpeg", logging.NewNop())

	var gotArgs []string
	extractor.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotArgs = args
		return nil
	})

	workDir := t.TempDir()
	path, temp, err := extractor.PrepareInput(t.Context(), "/media/movie.mkv", "en", workDir)
	if err != nil {
		t.Fatalf("PrepareInput: %v", err)
	}
	if !temp {
		t.Error("expected temp file")
	}
	if filepath.Dir(path) != workDir {
		t.Errorf("temp file %q not in workDir", path)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "0:a:1") {
		t.Errorf("ffmpeg args missing track map: %v", gotArgs)
	}
	if !strings.Contains(joined, "16000") {
		t.Errorf("ffmpeg args missing sample rate: %v", gotArgs)
	}
	_ = os.Remove(path)
}

func TestPrepareInputExtractionFailureCleansUp(t *testing.T) {
	inspector := fakeInspector{tracks: []Track{{Index: 0}, {Index: 1}}}
	extractor := NewExtractor(inspector, "ffmpeg", logging.NewNop())
	extractor.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("boom")
	})

	workDir := t.TempDir()
	if _, _, err := extractor.PrepareInput(t.Context(), "/media/movie.mkv", "en", workDir); err == nil {
		t.Fatal("expected extraction error")
	}
	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("read workDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestPrepareInputInspectionFailureFallsBack(t *testing.T) {
	extractor := NewExtractor(fakeInspector{err: errors.New("no ffprobe")}, "ffmpeg", logging.NewNop())
	path, temp, err := extractor.PrepareInput(t.Context(), "/media/movie.mkv", "en", t.TempDir())
	if err != nil {
		t.Fatalf("PrepareInput: %v", err)
	}
	if temp || path != "/media/movie.mkv" {
		t.Errorf("fallback path = %q temp=%v", path, temp)
	}
}
