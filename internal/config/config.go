package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Whisper contains configuration for the speech-to-text engine.
type Whisper struct {
	Model                 string `toml:"model"`
	Device                string `toml:"device"`
	ComputeType           string `toml:"compute_type"`
	CUDAEnabled           bool   `toml:"cuda_enabled"`
	ReleaseDeviceMemory   bool   `toml:"release_device_memory"`
	TranscriptionTimeout  int    `toml:"transcription_timeout"`
	ModelDownloadTimeout  int    `toml:"model_download_timeout"`
	BatchSize             int    `toml:"batch_size"`
	WordLevelTimestamps   bool   `toml:"word_level_timestamps"`
	VADMethod             string `toml:"vad_method"`
	InitialPromptOverride string `toml:"initial_prompt"`
}

// Subtitles contains subtitle generation and skip-rule configuration.
type Subtitles struct {
	// Skip rules, evaluated in the documented order.
	LRCForAudioFiles                  bool     `toml:"lrc_for_audio_files"`
	SkipUnknownLanguage               bool     `toml:"skip_unknown_language"`
	SkipIfTargetSubtitleExists        bool     `toml:"skip_if_target_subtitle_exists"`
	OnlySkipIfGeneratedSubtitle       bool     `toml:"only_skip_if_generated_subtitle"`
	SkipIfInternalSubtitleLanguage    string   `toml:"skip_if_internal_subtitle_language"`
	SkipIfExternalSubtitlesExist      bool     `toml:"skip_if_external_subtitles_exist"`
	SkipSubtitleLanguages             []string `toml:"skip_subtitle_languages"`
	SkipIfAudioLanguages              []string `toml:"skip_if_audio_languages"`
	PreferredAudioLanguages           []string `toml:"preferred_audio_languages"`
	LimitToPreferredAudioLanguages    bool     `toml:"limit_to_preferred_audio_languages"`
	SkipIfNoLanguageButSubtitlesExist bool     `toml:"skip_if_no_language_but_subtitles_exist"`

	// Output naming.
	LanguageNaming         string `toml:"language_naming"`
	IncludeGeneratorMarker bool   `toml:"include_generator_marker"`
	IncludeModelInFilename bool   `toml:"include_model_in_filename"`
	ForceDetectedLanguage  string `toml:"force_detected_language_to"`
}

// Queue contains durable queue and worker configuration.
type Queue struct {
	Workers           int `toml:"workers"`
	MaxAttempts       int `toml:"max_attempts"`
	RetryDelaySeconds int `toml:"retry_delay_seconds"`
	PollIntervalMS    int `toml:"poll_interval_ms"`
}

// Translation contains LLM translation backend settings.
type Translation struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	BatchSize      int    `toml:"batch_size"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for submate.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories (queue database lives under data)
//   - Whisper: speech-to-text model, device, and memory behavior
//   - Subtitles: skip rules and output naming
//   - Queue: worker count and retry policy for the durable queue
//   - Translation: LLM backend for non-English targets
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Whisper     Whisper     `toml:"whisper"`
	Subtitles   Subtitles   `toml:"subtitles"`
	Queue       Queue       `toml:"queue"`
	Translation Translation `toml:"translation"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/submate/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return is
// the resolved path, the third reports whether a file was actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("submate.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories required for operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// QueueDBPath returns the location of the durable queue database.
func (c *Config) QueueDBPath() string {
	return filepath.Join(c.Paths.DataDir, "queue.db")
}

// WorkerLockPath returns the lock file guarding single-worker execution.
func (c *Config) WorkerLockPath() string {
	return filepath.Join(c.Paths.DataDir, "worker.lock")
}

// FFmpegBinary returns the ffmpeg executable name used for audio extraction.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

// WriteSample writes the sample configuration to the target path, refusing
// to clobber an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
