package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"submate/internal/config"
	"submate/internal/language"
	"submate/internal/services"
)

// Tooling constants for the uvx-managed WhisperX installation.
const (
	uvxCommand   = "uvx"
	cudaIndexURL = "https://download.pytorch.org/whl/cu128"
	pypiIndexURL = "https://pypi.org/simple"

	cpuComputeType = "float32"
)

// CommandRunner executes an external command. The default implementation
// shells out; tests inject their own.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// CLIEngine runs WhisperX through uvx and reads its JSON output.
type CLIEngine struct {
	cfg    config.Whisper
	runner CommandRunner
}

// NewCLIEngine builds an engine from whisper configuration.
func NewCLIEngine(cfg config.Whisper) *CLIEngine {
	return &CLIEngine{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *CLIEngine) WithCommandRunner(runner CommandRunner) {
	e.runner = runner
}

// Model returns the configured model name.
func (e *CLIEngine) Model() string {
	return e.cfg.Model
}

// Load verifies the uvx launcher is available. Model weights are fetched
// lazily by WhisperX on the first run.
func (e *CLIEngine) Load(ctx context.Context) error {
	if e.runner != nil {
		return nil
	}
	if _, err := exec.LookPath(uvxCommand); err != nil {
		return services.Wrap(services.ErrLoadFailure, "whisper", "load", "uvx launcher not found on PATH", err)
	}
	return nil
}

// Transcribe runs WhisperX over a prepared WAV file and parses its JSON
// output. The output directory is temporary and removed before returning.
func (e *CLIEngine) Transcribe(ctx context.Context, wavPath string, opts Options) (*Result, error) {
	outputDir, err := os.MkdirTemp("", "submate-whisperx-*")
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "create output directory", err)
	}
	defer os.RemoveAll(outputDir)

	args := e.buildArgs(wavPath, outputDir, opts)
	if err := e.run(ctx, uvxCommand, args...); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "whisperx failed", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	result, err := loadResult(jsonPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "whisper", "transcribe", "read whisperx output", err)
	}
	return result, nil
}

// Close releases nothing for the CLI engine; each run is its own process.
func (e *CLIEngine) Close() error {
	return nil
}

func (e *CLIEngine) run(ctx context.Context, name string, args ...string) error {
	if e.runner != nil {
		return e.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (e *CLIEngine) buildArgs(source, outputDir string, opts Options) []string {
	args := make([]string, 0, 24)

	if e.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", cudaIndexURL,
			"--extra-index-url", pypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", pypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", e.cfg.Model,
		"--batch_size", strconv.Itoa(e.cfg.BatchSize),
		"--output_dir", outputDir,
		"--output_format", "json",
		"--vad_method", e.cfg.VADMethod,
	)

	if opts.Translate {
		args = append(args, "--task", "translate")
	}
	if lang := opts.Language.ISO1(); lang != "" {
		args = append(args, "--language", lang)
	}
	if e.cfg.InitialPromptOverride != "" {
		args = append(args, "--initial_prompt", e.cfg.InitialPromptOverride)
	}

	if e.cfg.CUDAEnabled {
		args = append(args, "--device", "cuda")
		if e.cfg.ComputeType != "" {
			args = append(args, "--compute_type", e.cfg.ComputeType)
		}
	} else {
		computeType := e.cfg.ComputeType
		if computeType == "" {
			computeType = cpuComputeType
		}
		args = append(args, "--device", "cpu", "--compute_type", computeType)
	}

	return args
}

type whisperXPayload struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

func loadResult(jsonPath string) (*Result, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return &Result{
		Language: language.Parse(payload.Language),
		Segments: payload.Segments,
	}, nil
}
