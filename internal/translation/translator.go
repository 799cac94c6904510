package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"submate/internal/config"
	"submate/internal/language"
	"submate/internal/logging"
	"submate/internal/subtitles"
)

const defaultBatchSize = 30

// Translator converts subtitle cues to a target language, preserving their
// timing and count.
type Translator interface {
	TranslateCues(ctx context.Context, cues []subtitles.Cue, target language.Code) ([]subtitles.Cue, error)
}

// LLMTranslator translates cue batches through a chat completion model.
type LLMTranslator struct {
	client    *Client
	batchSize int
	logger    *slog.Logger
}

// NewLLMTranslator builds a translator over the given client.
func NewLLMTranslator(client *Client, cfg config.Translation, logger *slog.Logger) *LLMTranslator {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &LLMTranslator{
		client:    client,
		batchSize: batchSize,
		logger:    logging.WithComponent(logger, "translation"),
	}
}

const systemPrompt = `You translate subtitle lines. Respond with a JSON object
{"lines": ["..."]} containing exactly one translated line per input line, in
order. Preserve line breaks inside a line as \n. Do not merge, split, or
reorder lines. Translate naturally; keep names and numbers as they are.`

type translationPayload struct {
	Lines []string `json:"lines"`
}

// TranslateCues translates the cues in batches. Timing is copied from the
// input; only text changes. A batch whose response line count does not match
// its input is an error, not a silent misalignment.
func (t *LLMTranslator) TranslateCues(ctx context.Context, cues []subtitles.Cue, target language.Code) ([]subtitles.Cue, error) {
	if len(cues) == 0 {
		return nil, nil
	}

	translated := make([]subtitles.Cue, len(cues))
	copy(translated, cues)

	for start := 0; start < len(cues); start += t.batchSize {
		end := start + t.batchSize
		if end > len(cues) {
			end = len(cues)
		}
		batch := cues[start:end]

		lines, err := t.translateBatch(ctx, batch, target)
		if err != nil {
			return nil, fmt.Errorf("translate batch %d-%d: %w", start, end, err)
		}
		for i, line := range lines {
			translated[start+i].Text = line
		}
		t.logger.Debug("translated batch",
			slog.Int("from", start),
			slog.Int("to", end),
			slog.String(logging.FieldLanguage, target.String()))
	}
	return translated, nil
}

func (t *LLMTranslator) translateBatch(ctx context.Context, batch []subtitles.Cue, target language.Code) ([]string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Target language: %s (%s)\n\nLines:\n", target.Name(), target.ISO1())
	for i, cue := range batch {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.ReplaceAll(cue.Text, "\n", "\\n"))
	}

	content, err := t.client.CompleteJSON(ctx, systemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	var payload translationPayload
	if err := decodeJSON(content, &payload); err != nil {
		return nil, err
	}
	if len(payload.Lines) != len(batch) {
		return nil, fmt.Errorf("model returned %d lines for %d cues", len(payload.Lines), len(batch))
	}

	lines := make([]string, len(payload.Lines))
	for i, line := range payload.Lines {
		lines[i] = strings.ReplaceAll(strings.TrimSpace(line), "\\n", "\n")
	}
	return lines, nil
}
