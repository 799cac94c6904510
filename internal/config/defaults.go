package config

const (
	defaultDataDir              = "~/.local/share/submate"
	defaultLogDir               = "~/.local/share/submate/logs"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultWhisperModel         = "medium"
	defaultWhisperDevice        = "auto"
	defaultWhisperComputeType   = "auto"
	defaultWhisperVADMethod     = "silero"
	defaultWhisperBatchSize     = 4
	defaultTranscriptionTimeout = 3600
	defaultModelDownloadTimeout = 1800
	defaultQueueWorkers         = 1
	defaultQueueMaxAttempts     = 3
	defaultQueueRetryDelay      = 60
	defaultQueuePollIntervalMS  = 250
	defaultTranslationBaseURL   = "https://openrouter.ai/api/v1/chat/completions"
	defaultTranslationModel     = "google/gemini-3-flash-preview"
	defaultTranslationTimeout   = 120
	defaultTranslationBatch     = 20
	defaultLanguageNaming       = "iso_639_2_b"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Whisper: Whisper{
			Model:                defaultWhisperModel,
			Device:               defaultWhisperDevice,
			ComputeType:          defaultWhisperComputeType,
			ReleaseDeviceMemory:  true,
			TranscriptionTimeout: defaultTranscriptionTimeout,
			ModelDownloadTimeout: defaultModelDownloadTimeout,
			BatchSize:            defaultWhisperBatchSize,
			VADMethod:            defaultWhisperVADMethod,
		},
		Subtitles: Subtitles{
			LRCForAudioFiles:           true,
			SkipUnknownLanguage:        false,
			SkipIfTargetSubtitleExists: true,
			LanguageNaming:             defaultLanguageNaming,
			IncludeGeneratorMarker:     true,
		},
		Queue: Queue{
			Workers:           defaultQueueWorkers,
			MaxAttempts:       defaultQueueMaxAttempts,
			RetryDelaySeconds: defaultQueueRetryDelay,
			PollIntervalMS:    defaultQueuePollIntervalMS,
		},
		Translation: Translation{
			BaseURL:        defaultTranslationBaseURL,
			Model:          defaultTranslationModel,
			TimeoutSeconds: defaultTranslationTimeout,
			BatchSize:      defaultTranslationBatch,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
