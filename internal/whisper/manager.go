package whisper

import (
	"context"
	"log/slog"
	"sync"

	"submate/internal/logging"
	"submate/internal/services"
)

// EngineFactory constructs a fresh engine. Called once per load.
type EngineFactory func() (Engine, error)

// Manager owns the lifecycle of the speech-to-text engine and serializes
// every transcription through one mutex. Loading is idempotent: repeated
// Load calls reuse the live engine, repeated Unload calls are no-ops.
type Manager struct {
	factory EngineFactory
	logger  *slog.Logger
	workDir string

	// releaseAfterUse unloads the engine when a With scope exits so device
	// memory is returned between jobs.
	releaseAfterUse bool

	mu     sync.Mutex
	engine Engine
}

// ManagerOption adjusts Manager construction.
type ManagerOption func(*Manager)

// WithWorkDir sets the staging directory for temporary WAV files.
func WithWorkDir(dir string) ManagerOption {
	return func(m *Manager) { m.workDir = dir }
}

// WithReleaseAfterUse makes With unload the engine when its scope exits.
func WithReleaseAfterUse(release bool) ManagerOption {
	return func(m *Manager) { m.releaseAfterUse = release }
}

// NewManager builds a Manager around the given engine factory.
func NewManager(factory EngineFactory, logger *slog.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		factory: factory,
		logger:  logging.WithComponent(logger, "whisper"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load constructs and prepares the engine if none is live. A failed load
// leaves the manager unloaded.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(ctx)
}

func (m *Manager) loadLocked(ctx context.Context) error {
	if m.engine != nil {
		return nil
	}

	engine, err := m.factory()
	if err != nil {
		return services.Wrap(services.ErrLoadFailure, "whisper", "load", "construct engine", err)
	}
	if err := engine.Load(ctx); err != nil {
		if closeErr := engine.Close(); closeErr != nil {
			m.logger.Warn("close engine after failed load", logging.Error(closeErr))
		}
		return services.Wrap(services.ErrLoadFailure, "whisper", "load", "prepare engine", err)
	}

	m.engine = engine
	m.logger.Info("engine loaded")
	return nil
}

// Unload releases the engine. Close failures are logged, not propagated;
// the manager is unloaded either way.
func (m *Manager) Unload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloadLocked()
}

func (m *Manager) unloadLocked() {
	if m.engine == nil {
		return
	}
	if err := m.engine.Close(); err != nil {
		m.logger.Warn("release engine", logging.Error(err))
	}
	m.engine = nil
	m.logger.Info("engine unloaded")
}

// Loaded reports whether an engine is live.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.engine != nil
}

// Transcribe stages the input and runs it through the loaded engine. The
// whole call holds the manager lock, so concurrent callers queue up rather
// than sharing the engine. Staged temporary files are removed on every
// exit path.
func (m *Manager) Transcribe(ctx context.Context, input Input, opts Options) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.engine == nil {
		return nil, services.Wrap(services.ErrNotLoaded, "whisper", "transcribe", "engine not loaded", nil)
	}

	wavPath, cleanup, err := input.stage(tempWorkDir(m.workDir))
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return m.engine.Transcribe(ctx, wavPath, opts)
}

// With runs fn with the engine guaranteed loaded, loading it on demand. When
// release-after-use is configured the engine is unloaded as the scope exits,
// even if fn fails.
func (m *Manager) With(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := m.Load(ctx); err != nil {
		return err
	}
	if m.releaseAfterUse {
		defer m.Unload()
	}
	return fn(ctx)
}
