package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"submate/internal/config"
	"submate/internal/language"
	"submate/internal/logging"
	"submate/internal/services"
	"submate/internal/subtitles"
	"submate/internal/testsupport"
	"submate/internal/whisper"
)

type stubInspector struct {
	internal      []language.Code
	audio         []language.Code
	external      bool
	lrc           bool
	subtitleLangs map[language.Code]bool
}

func (f *stubInspector) InternalSubtitleLanguages(context.Context, string) []language.Code {
	return f.internal
}

func (f *stubInspector) AudioLanguages(context.Context, string) []language.Code { return f.audio }

func (f *stubInspector) HasAnyExternalSubtitle(string) bool { return f.external }

func (f *stubInspector) HasLRC(string) bool { return f.lrc }

func (f *stubInspector) HasSubtitleLanguage(_ context.Context, _ string, code language.Code, _ bool) bool {
	return f.subtitleLangs[code]
}

func (f *stubInspector) HasInternalSubtitleLanguage(_ context.Context, _ string, code language.Code) bool {
	for _, internal := range f.internal {
		if internal == code {
			return true
		}
	}
	return false
}

type stubPreparer struct {
	err error
}

func (p *stubPreparer) PrepareInput(_ context.Context, source string, _ language.Code, _ string) (string, bool, error) {
	if p.err != nil {
		return "", false, p.err
	}
	return source, false, nil
}

type stubEngine struct {
	result       *whisper.Result
	err          error
	lastOptions  whisper.Options
	calls        int
	loadFailures int
}

func (e *stubEngine) Load(context.Context) error {
	if e.loadFailures > 0 {
		e.loadFailures--
		return errors.New("out of memory")
	}
	return nil
}

func (e *stubEngine) Transcribe(_ context.Context, _ string, opts whisper.Options) (*whisper.Result, error) {
	e.calls++
	e.lastOptions = opts
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

func (e *stubEngine) Close() error { return nil }

type fixture struct {
	cfg       *config.Config
	inspector *stubInspector
	engine    *stubEngine
	service   *TranscriptionService
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	if mutate != nil {
		mutate(cfg)
	}

	engine := &stubEngine{result: &whisper.Result{
		Language: "en",
		Segments: []whisper.Segment{
			{Text: "Hello.", Start: 0, End: 1.5},
			{Text: "World.", Start: 2, End: 3},
		},
	}}
	manager := whisper.NewManager(func() (whisper.Engine, error) { return engine, nil },
		logging.NewNop(), whisper.WithWorkDir(cfg.Paths.DataDir))

	inspector := &stubInspector{subtitleLangs: map[language.Code]bool{}}
	service := NewTranscriptionService(cfg, manager, inspector, &stubPreparer{}, nil, logging.NewNop())

	return &fixture{cfg: cfg, inspector: inspector, engine: engine, service: service}
}

func mediaFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscriptionTaskValidateInput(t *testing.T) {
	fx := newFixture(t, nil)
	task := NewTranscriptionTask(fx.service)

	if err := task.ValidateInput(Params{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("missing path: %v", err)
	}
	if err := task.ValidateInput(Params{ParamFilePath: "/missing.mp4"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("nonexistent path: %v", err)
	}
	if err := task.ValidateInput(Params{ParamFilePath: mediaFile(t, "movie.mkv")}); err != nil {
		t.Fatalf("valid input: %v", err)
	}
}

func TestTranscriptionTaskWritesSubtitle(t *testing.T) {
	fx := newFixture(t, nil)
	task := NewTranscriptionTask(fx.service)
	media := mediaFile(t, "movie.mkv")

	outcome, err := task.Execute(context.Background(), Params{
		ParamFilePath:      media,
		ParamAudioLanguage: "en",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("outcome = %+v", outcome)
	}

	result, ok := outcome.Data.(*TranscriptionResult)
	if !ok {
		t.Fatalf("data type %T", outcome.Data)
	}
	if result.Language != "en" || result.SegmentCount != 2 {
		t.Errorf("result = %+v", result)
	}
	// Default naming: marker + bibliographic code.
	want := strings.TrimSuffix(media, ".mkv") + ".submate.eng.srt"
	if result.SubtitlePath != want {
		t.Errorf("subtitle path = %s, want %s", result.SubtitlePath, want)
	}
	content, err := os.ReadFile(result.SubtitlePath)
	if err != nil {
		t.Fatalf("subtitle not written: %v", err)
	}
	if !strings.Contains(string(content), "Hello.") {
		t.Errorf("subtitle content:\n%s", content)
	}
}

func TestTranscriptionTaskSkipPropagates(t *testing.T) {
	fx := newFixture(t, func(cfg *config.Config) {
		cfg.Subtitles.SkipIfExternalSubtitlesExist = true
	})
	fx.inspector.external = true
	task := NewTranscriptionTask(fx.service)

	outcome, err := task.Execute(context.Background(), Params{
		ParamFilePath:      mediaFile(t, "movie.mkv"),
		ParamAudioLanguage: "en",
	})
	if outcome != nil {
		t.Fatalf("skip must not produce an outcome, got %+v", outcome)
	}
	skipErr, ok := AsSkip(err)
	if !ok {
		t.Fatalf("expected SkipError, got %v", err)
	}
	if skipErr.Reason.String() != "external_subtitle_exists" {
		t.Errorf("reason = %s", skipErr.Reason)
	}
	if fx.engine.calls != 0 {
		t.Error("engine must not run for a skipped file")
	}
}

func TestTranscriptionTaskForceBypassesSkip(t *testing.T) {
	fx := newFixture(t, func(cfg *config.Config) {
		cfg.Subtitles.SkipIfExternalSubtitlesExist = true
	})
	fx.inspector.external = true
	task := NewTranscriptionTask(fx.service)

	outcome, err := task.Execute(context.Background(), Params{
		ParamFilePath:      mediaFile(t, "movie.mkv"),
		ParamAudioLanguage: "en",
		ParamForce:         true,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("outcome = %+v", outcome)
	}
	if fx.engine.calls != 1 {
		t.Errorf("engine calls = %d", fx.engine.calls)
	}
}

func TestTranscriptionTaskExecutionErrorBecomesOutcome(t *testing.T) {
	fx := newFixture(t, nil)
	fx.engine.err = errors.New("inference blew up")
	task := NewTranscriptionTask(fx.service)

	outcome, err := task.Execute(context.Background(), Params{
		ParamFilePath:      mediaFile(t, "movie.mkv"),
		ParamAudioLanguage: "en",
	})
	if err != nil {
		t.Fatalf("execution errors must convert, got %v", err)
	}
	if outcome.Success {
		t.Fatal("outcome should be unsuccessful")
	}
	if !strings.Contains(outcome.Error, "inference blew up") {
		t.Errorf("error = %q", outcome.Error)
	}
}

func TestTranscriptionTaskLoadFailureBecomesOutcome(t *testing.T) {
	fx := newFixture(t, nil)
	fx.engine.loadFailures = 1
	task := NewTranscriptionTask(fx.service)

	outcome, err := task.Execute(context.Background(), Params{
		ParamFilePath:      mediaFile(t, "movie.mkv"),
		ParamAudioLanguage: "en",
	})
	if err != nil {
		t.Fatalf("load failure must convert, got %v", err)
	}
	if outcome.Success {
		t.Fatal("outcome should be unsuccessful")
	}
}

func TestTranscriptionTaskTranslateToEnglish(t *testing.T) {
	fx := newFixture(t, nil)
	fx.engine.result = &whisper.Result{
		Language: "de",
		Segments: []whisper.Segment{{Text: "Hello.", Start: 0, End: 1}},
	}
	task := NewTranscriptionTask(fx.service)

	outcome, err := task.Execute(context.Background(), Params{
		ParamFilePath:      mediaFile(t, "movie.mkv"),
		ParamAudioLanguage: "de",
		ParamTranslateTo:   "en",
	})
	if err != nil {
		t.Fatal(err)
	}
	result := outcome.Data.(*TranscriptionResult)
	if result.Language != "en" {
		t.Errorf("language = %s", result.Language)
	}
	if !fx.engine.lastOptions.Translate {
		t.Error("engine should run its translate task")
	}
}

func TestTranscriptionTaskAudioFileWritesLRC(t *testing.T) {
	fx := newFixture(t, nil)
	task := NewTranscriptionTask(fx.service)
	media := mediaFile(t, "song.mp3")

	outcome, err := task.Execute(context.Background(), Params{
		ParamFilePath:      media,
		ParamAudioLanguage: "en",
	})
	if err != nil {
		t.Fatal(err)
	}
	result := outcome.Data.(*TranscriptionResult)
	if result.SubtitlePath != subtitles.LRCPath(media) {
		t.Errorf("output = %s", result.SubtitlePath)
	}
	content, err := os.ReadFile(result.SubtitlePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(content), "[00:00.00]Hello.") {
		t.Errorf("lrc content:\n%s", content)
	}
}

func TestLanguageDetectionTask(t *testing.T) {
	fx := newFixture(t, nil)
	task := NewLanguageDetectionTask(fx.service)

	outcome, err := task.Execute(context.Background(), Params{
		ParamFilePath: mediaFile(t, "movie.mkv"),
	})
	if err != nil {
		t.Fatal(err)
	}
	result := outcome.Data.(*LanguageDetectionResult)
	if result.Language != "en" {
		t.Errorf("language = %s", result.Language)
	}
}

func TestLanguageDetectionTaskFromBytes(t *testing.T) {
	fx := newFixture(t, nil)
	task := NewLanguageDetectionTask(fx.service)

	if err := task.ValidateInput(Params{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("missing input: %v", err)
	}
	if err := task.ValidateInput(Params{ParamAudioBytes: []byte("wav")}); err != nil {
		t.Fatalf("bytes-only input: %v", err)
	}

	outcome, err := task.Execute(context.Background(), Params{
		ParamAudioBytes: []byte("RIFFfake"),
	})
	if err != nil {
		t.Fatal(err)
	}
	result := outcome.Data.(*LanguageDetectionResult)
	if result.Language != "en" {
		t.Errorf("language = %s", result.Language)
	}
	if fx.engine.calls != 1 {
		t.Errorf("engine calls = %d", fx.engine.calls)
	}
}

func TestBazarrTaskValidatesAndRenders(t *testing.T) {
	fx := newFixture(t, nil)
	task := NewBazarrTranscriptionTask(fx.service)

	if err := task.ValidateInput(Params{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("missing bytes: %v", err)
	}
	if err := task.ValidateInput(Params{ParamAudioBytes: []byte("wav"), ParamTask: "summarize"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("bad task: %v", err)
	}
	if err := task.ValidateInput(Params{ParamAudioBytes: []byte("wav"), ParamOutputFormat: "docx"}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("bad format: %v", err)
	}

	outcome, err := task.Execute(context.Background(), Params{
		ParamAudioBytes:   []byte("RIFFfake"),
		ParamLanguage:     "en",
		ParamOutputFormat: "vtt",
	})
	if err != nil {
		t.Fatal(err)
	}
	result := outcome.Data.(*ASRResult)
	if result.Format != "vtt" || !strings.HasPrefix(result.Content, "WEBVTT") {
		t.Errorf("result = %+v", result)
	}
}

func TestBazarrTaskWordTimestamps(t *testing.T) {
	fx := newFixture(t, nil)
	fx.engine.result = &whisper.Result{
		Language: "en",
		Segments: []whisper.Segment{{
			Text:  "Hello world.",
			Start: 0,
			End:   2,
			Words: []whisper.Word{
				{Word: "Hello", Start: 0, End: 0.8},
				{Word: "world.", Start: 0.9, End: 2},
			},
		}},
	}
	task := NewBazarrTranscriptionTask(fx.service)

	outcome, err := task.Execute(context.Background(), Params{
		ParamAudioBytes:     []byte("RIFFfake"),
		ParamLanguage:       "en",
		ParamOutputFormat:   "srt",
		ParamWordTimestamps: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	result := outcome.Data.(*ASRResult)
	if got := strings.Count(result.Content, "-->"); got != 2 {
		t.Fatalf("cue count = %d, content:\n%s", got, result.Content)
	}
	if !strings.Contains(result.Content, "Hello\n") || !strings.Contains(result.Content, "world.\n") {
		t.Errorf("content:\n%s", result.Content)
	}

	// Without the flag the same transcript renders per segment.
	outcome, err = task.Execute(context.Background(), Params{
		ParamAudioBytes:   []byte("RIFFfake"),
		ParamLanguage:     "en",
		ParamOutputFormat: "srt",
	})
	if err != nil {
		t.Fatal(err)
	}
	result = outcome.Data.(*ASRResult)
	if got := strings.Count(result.Content, "-->"); got != 1 {
		t.Errorf("cue count = %d, content:\n%s", got, result.Content)
	}
}

func TestOutcomeMetadataEncodeRoundTrip(t *testing.T) {
	outcome := Succeeded(map[string]any{"subtitle_path": "/out.srt"}).
		WithMetadata("duration_ms", 1200).
		WithMetadata("model", "small")

	encoded, err := outcome.Encode()
	if err != nil {
		t.Fatal(err)
	}
	var decoded Outcome
	if err := json.Unmarshal([]byte(encoded), &decoded); err != nil {
		t.Fatal(err)
	}
	if !decoded.Success {
		t.Error("success lost in round trip")
	}
	if decoded.Metadata["model"] != "small" {
		t.Errorf("metadata = %v", decoded.Metadata)
	}

	failed, err := Failed(errors.New("engine crashed")).Encode()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(failed, "engine crashed") {
		t.Errorf("encoded = %s", failed)
	}
}

func TestIdentityStableAndOrderIndependent(t *testing.T) {
	a := Identity("transcription", Params{"file_path": "/a.mkv", "force": true})
	b := Identity("transcription", Params{"force": true, "file_path": "/a.mkv"})
	if a != b {
		t.Error("identity must not depend on param order")
	}
	if a == Identity("transcription", Params{"file_path": "/b.mkv", "force": true}) {
		t.Error("different params must hash differently")
	}
	if a == Identity("language_detection", Params{"file_path": "/a.mkv", "force": true}) {
		t.Error("different task names must hash differently")
	}
	if len(a) != 64 {
		t.Errorf("identity length = %d", len(a))
	}
}

func TestParamsEncodeDecodeBytes(t *testing.T) {
	params := Params{
		ParamAudioBytes: []byte{0x00, 0x01, 0xFF},
		ParamLanguage:   "en",
	}
	encoded, err := params.Encode()
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeParams(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if got := decoded.Bytes(ParamAudioBytes); len(got) != 3 || got[2] != 0xFF {
		t.Errorf("bytes = %v", got)
	}
	if decoded.String(ParamLanguage) != "en" {
		t.Errorf("language = %q", decoded.String(ParamLanguage))
	}
}

func TestRegistry(t *testing.T) {
	fx := newFixture(t, nil)
	registry := Registry{
		TaskTranscription: func() (Task, error) { return NewTranscriptionTask(fx.service), nil },
	}
	task, err := registry.New(TaskTranscription)
	if err != nil {
		t.Fatal(err)
	}
	if task.Name() != TaskTranscription {
		t.Errorf("name = %s", task.Name())
	}
	if _, err := registry.New("nope"); err == nil {
		t.Fatal("unknown task must error")
	}
}
