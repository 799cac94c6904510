package config

import (
	"errors"
	"fmt"
	"strings"

	"submate/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateWhisper(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	return c.validateLogging()
}

var validWhisperModels = map[string]struct{}{
	"tiny": {}, "tiny.en": {}, "base": {}, "base.en": {},
	"small": {}, "small.en": {}, "medium": {}, "medium.en": {},
	"large": {}, "large-v1": {}, "large-v2": {}, "large-v3": {}, "large-v3-turbo": {},
}

func (c *Config) validateWhisper() error {
	if _, ok := validWhisperModels[c.Whisper.Model]; !ok {
		return fmt.Errorf("whisper.model: unknown model %q", c.Whisper.Model)
	}
	switch c.Whisper.Device {
	case "auto", "cpu", "cuda":
	default:
		return fmt.Errorf("whisper.device: must be auto, cpu, or cuda (got %q)", c.Whisper.Device)
	}
	switch c.Whisper.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("whisper.vad_method: must be silero or pyannote (got %q)", c.Whisper.VADMethod)
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if v := strings.TrimSpace(c.Subtitles.SkipIfInternalSubtitleLanguage); v != "" {
		if language.Parse(v) == language.None {
			return fmt.Errorf("subtitles.skip_if_internal_subtitle_language: unrecognized language %q", v)
		}
	}
	if v := strings.TrimSpace(c.Subtitles.ForceDetectedLanguage); v != "" {
		if language.Parse(v) == language.None {
			return fmt.Errorf("subtitles.force_detected_language_to: unrecognized language %q", v)
		}
	}
	if c.Subtitles.LimitToPreferredAudioLanguages && len(c.Subtitles.PreferredAudioLanguages) == 0 {
		return errors.New("subtitles.limit_to_preferred_audio_languages requires subtitles.preferred_audio_languages")
	}
	return nil
}

func (c *Config) validateQueue() error {
	if c.Queue.Workers > 16 {
		return fmt.Errorf("queue.workers: %d exceeds the supported maximum of 16", c.Queue.Workers)
	}
	return nil
}

func (c *Config) validateTranslation() error {
	if !c.Translation.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Translation.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/submate/config.toml"
		}
		return fmt.Errorf("translation.api_key is required when translation is enabled. Edit %s (create with 'submate config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: must be console or json (got %q)", c.Logging.Format)
	}
	return nil
}
