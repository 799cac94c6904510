package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWhisper()
	c.normalizeQueue()
	c.normalizeTranslation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeWhisper() {
	if strings.TrimSpace(c.Whisper.Model) == "" {
		c.Whisper.Model = defaultWhisperModel
	}
	if strings.TrimSpace(c.Whisper.Device) == "" {
		c.Whisper.Device = defaultWhisperDevice
	}
	if strings.TrimSpace(c.Whisper.ComputeType) == "" {
		c.Whisper.ComputeType = defaultWhisperComputeType
	}
	if strings.TrimSpace(c.Whisper.VADMethod) == "" {
		c.Whisper.VADMethod = defaultWhisperVADMethod
	}
	if c.Whisper.BatchSize <= 0 {
		c.Whisper.BatchSize = defaultWhisperBatchSize
	}
	if c.Whisper.TranscriptionTimeout <= 0 {
		c.Whisper.TranscriptionTimeout = defaultTranscriptionTimeout
	}
	if c.Whisper.ModelDownloadTimeout <= 0 {
		c.Whisper.ModelDownloadTimeout = defaultModelDownloadTimeout
	}
}

func (c *Config) normalizeQueue() {
	if c.Queue.Workers <= 0 {
		c.Queue.Workers = defaultQueueWorkers
	}
	if c.Queue.MaxAttempts <= 0 {
		c.Queue.MaxAttempts = defaultQueueMaxAttempts
	}
	if c.Queue.RetryDelaySeconds < 0 {
		c.Queue.RetryDelaySeconds = defaultQueueRetryDelay
	}
	if c.Queue.PollIntervalMS <= 0 {
		c.Queue.PollIntervalMS = defaultQueuePollIntervalMS
	}
}

func (c *Config) normalizeTranslation() {
	if strings.TrimSpace(c.Translation.BaseURL) == "" {
		c.Translation.BaseURL = defaultTranslationBaseURL
	}
	if strings.TrimSpace(c.Translation.Model) == "" {
		c.Translation.Model = defaultTranslationModel
	}
	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = defaultTranslationTimeout
	}
	if c.Translation.BatchSize <= 0 {
		c.Translation.BatchSize = defaultTranslationBatch
	}
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
}
