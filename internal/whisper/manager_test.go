package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"submate/internal/logging"
	"submate/internal/services"
)

type fakeEngine struct {
	loadErr       error
	transcribed   []string
	closed        int
	lastTranslate bool
}

func (f *fakeEngine) Load(context.Context) error { return f.loadErr }

func (f *fakeEngine) Transcribe(_ context.Context, wavPath string, opts Options) (*Result, error) {
	f.transcribed = append(f.transcribed, wavPath)
	f.lastTranslate = opts.Translate
	return &Result{Language: "en", Segments: []Segment{{Text: "hello", Start: 0, End: 1}}}, nil
}

func (f *fakeEngine) Close() error {
	f.closed++
	return nil
}

func newTestManager(t *testing.T, engine *fakeEngine, opts ...ManagerOption) (*Manager, *int) {
	t.Helper()
	constructed := 0
	factory := func() (Engine, error) {
		constructed++
		return engine, nil
	}
	opts = append(opts, WithWorkDir(t.TempDir()))
	return NewManager(factory, logging.NewNop(), opts...), &constructed
}

func TestLoadIsIdempotent(t *testing.T) {
	engine := &fakeEngine{}
	manager, constructed := newTestManager(t, engine)

	ctx := context.Background()
	if err := manager.Load(ctx); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := manager.Load(ctx); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if *constructed != 1 {
		t.Errorf("engine constructed %d times, want 1", *constructed)
	}
	if !manager.Loaded() {
		t.Error("manager should be loaded")
	}
}

func TestUnloadIsIdempotent(t *testing.T) {
	engine := &fakeEngine{}
	manager, _ := newTestManager(t, engine)

	manager.Unload()
	if engine.closed != 0 {
		t.Error("nothing to close before load")
	}

	if err := manager.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	manager.Unload()
	manager.Unload()
	if engine.closed != 1 {
		t.Errorf("engine closed %d times, want 1", engine.closed)
	}
	if manager.Loaded() {
		t.Error("manager should be unloaded")
	}
}

func TestTranscribeRequiresLoad(t *testing.T) {
	manager, _ := newTestManager(t, &fakeEngine{})
	_, err := manager.Transcribe(context.Background(), Input{Bytes: []byte("data")}, Options{})
	if !errors.Is(err, services.ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestLoadFailureLeavesUnloaded(t *testing.T) {
	engine := &fakeEngine{loadErr: errors.New("no device")}
	manager, _ := newTestManager(t, engine)

	err := manager.Load(context.Background())
	if !errors.Is(err, services.ErrLoadFailure) {
		t.Fatalf("expected ErrLoadFailure, got %v", err)
	}
	if manager.Loaded() {
		t.Error("failed load must leave the manager unloaded")
	}
	if engine.closed != 1 {
		t.Errorf("engine closed %d times after failed load, want 1", engine.closed)
	}
}

func TestTranscribeStagesBytesAndCleansUp(t *testing.T) {
	engine := &fakeEngine{}
	workDir := t.TempDir()
	constructed := 0
	manager := NewManager(func() (Engine, error) {
		constructed++
		return engine, nil
	}, logging.NewNop(), WithWorkDir(workDir))

	ctx := context.Background()
	if err := manager.Load(ctx); err != nil {
		t.Fatal(err)
	}

	result, err := manager.Transcribe(ctx, Input{Bytes: []byte("RIFFfake"), RawPCM: false}, Options{})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if result.Language != "en" {
		t.Errorf("language = %s", result.Language)
	}
	if len(engine.transcribed) != 1 {
		t.Fatalf("engine saw %d files", len(engine.transcribed))
	}
	staged := engine.transcribed[0]
	if filepath.Dir(staged) != workDir {
		t.Errorf("staged outside work dir: %s", staged)
	}
	if _, err := os.Stat(staged); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("staged file not cleaned up: %s", staged)
	}
}

func TestTranscribePathInputPassesThrough(t *testing.T) {
	engine := &fakeEngine{}
	manager, _ := newTestManager(t, engine)

	source := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(source, []byte("RIFFfake"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := manager.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := manager.Transcribe(ctx, Input{Path: source}, Options{}); err != nil {
		t.Fatal(err)
	}
	if engine.transcribed[0] != source {
		t.Errorf("path input should pass through, engine saw %s", engine.transcribed[0])
	}
	if _, err := os.Stat(source); err != nil {
		t.Errorf("path input must not be removed: %v", err)
	}
}

func TestTranscribeRejectsAmbiguousInput(t *testing.T) {
	manager, _ := newTestManager(t, &fakeEngine{})
	ctx := context.Background()
	if err := manager.Load(ctx); err != nil {
		t.Fatal(err)
	}
	_, err := manager.Transcribe(ctx, Input{Path: "a.wav", Bytes: []byte("x")}, Options{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	_, err = manager.Transcribe(ctx, Input{}, Options{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty input, got %v", err)
	}
}

func TestWithReleaseAfterUse(t *testing.T) {
	engine := &fakeEngine{}
	manager, _ := newTestManager(t, engine, WithReleaseAfterUse(true))

	err := manager.With(context.Background(), func(ctx context.Context) error {
		if !manager.Loaded() {
			t.Error("engine should be loaded inside the scope")
		}
		return errors.New("job failed")
	})
	if err == nil {
		t.Fatal("expected fn error to propagate")
	}
	if manager.Loaded() {
		t.Error("engine should be unloaded after the scope, even on failure")
	}
	if engine.closed != 1 {
		t.Errorf("engine closed %d times, want 1", engine.closed)
	}
}

func TestWithKeepsEngineByDefault(t *testing.T) {
	engine := &fakeEngine{}
	manager, _ := newTestManager(t, engine)

	if err := manager.With(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if !manager.Loaded() {
		t.Error("engine should stay loaded without release-after-use")
	}
}
