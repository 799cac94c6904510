package main

import (
	"log/slog"

	"submate/internal/config"
	"submate/internal/dispatch"
	"submate/internal/logging"
	"submate/internal/media/audio"
	"submate/internal/queue"
	"submate/internal/subtitles"
	"submate/internal/tasks"
	"submate/internal/translation"
	"submate/internal/whisper"
)

// app holds the wired object graph every command operates on.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *queue.Store
	manager    *whisper.Manager
	registry   tasks.Registry
	dispatcher *dispatch.Dispatcher
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	store, err := queue.Open(cfg)
	if err != nil {
		return nil, err
	}

	manager := whisper.NewManager(
		func() (whisper.Engine, error) { return whisper.NewCLIEngine(cfg.Whisper), nil },
		logger,
		whisper.WithWorkDir(cfg.Paths.DataDir),
		whisper.WithReleaseAfterUse(cfg.Whisper.ReleaseDeviceMemory),
	)

	library := subtitles.NewLibrary(cfg.FFprobeBinary(), logger)
	inspector := audio.FFprobeInspector{Binary: cfg.FFprobeBinary()}
	extractor := audio.NewExtractor(inspector, cfg.FFmpegBinary(), logger)

	var translator translation.Translator
	if cfg.Translation.Enabled {
		client := translation.NewClient(cfg.Translation)
		translator = translation.NewLLMTranslator(client, cfg.Translation, logger)
	}

	service := tasks.NewTranscriptionService(cfg, manager, library, extractor, translator, logger)
	registry := tasks.NewRegistry(service)

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		manager:    manager,
		registry:   registry,
		dispatcher: dispatch.NewDispatcher(registry, store, cfg.Queue, logger),
	}, nil
}

func (a *app) Close() {
	a.manager.Unload()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close queue store", logging.Error(err))
	}
}
