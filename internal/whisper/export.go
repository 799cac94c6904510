package whisper

import (
	"encoding/json"
	"fmt"
	"strings"

	"submate/internal/subtitles"
)

// Cues converts the transcript segments to subtitle cues.
func (r *Result) Cues() []subtitles.Cue {
	cues := make([]subtitles.Cue, 0, len(r.Segments))
	for i, seg := range r.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		cues = append(cues, subtitles.Cue{
			Index: i + 1,
			Start: seg.Start,
			End:   seg.End,
			Text:  text,
		})
	}
	return cues
}

// WordCues expands word-level timing into one cue per word. Segments
// without word data contribute their segment cue instead.
func (r *Result) WordCues() []subtitles.Cue {
	var cues []subtitles.Cue
	for _, seg := range r.Segments {
		if len(seg.Words) == 0 {
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}
			cues = append(cues, subtitles.Cue{
				Index: len(cues) + 1,
				Start: seg.Start,
				End:   seg.End,
				Text:  text,
			})
			continue
		}
		for _, word := range seg.Words {
			text := strings.TrimSpace(word.Word)
			if text == "" {
				continue
			}
			cues = append(cues, subtitles.Cue{
				Index: len(cues) + 1,
				Start: word.Start,
				End:   word.End,
				Text:  text,
			})
		}
	}
	return cues
}

// Text returns the plain transcript with segments joined by spaces.
func (r *Result) Text() string {
	parts := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// ToSRT renders the transcript as an SRT document.
func (r *Result) ToSRT() string {
	return subtitles.RenderSRT(r.Cues())
}

// ToSRTWords renders an SRT document with one cue per word.
func (r *Result) ToSRTWords() string {
	return subtitles.RenderSRT(r.WordCues())
}

// ToVTT renders the transcript as a WebVTT document.
func (r *Result) ToVTT() string {
	return renderVTT(r.Cues())
}

// ToVTTWords renders a WebVTT document with one cue per word.
func (r *Result) ToVTTWords() string {
	return renderVTT(r.WordCues())
}

func renderVTT(cues []subtitles.Cue) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, cue := range cues {
		start := strings.ReplaceAll(subtitles.FormatTimestamp(cue.Start), ",", ".")
		end := strings.ReplaceAll(subtitles.FormatTimestamp(cue.End), ",", ".")
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n", start, end, cue.Text)
	}
	return b.String()
}

// ToLRC renders the transcript as timestamped lyrics lines.
func (r *Result) ToLRC() string {
	var b strings.Builder
	for _, cue := range r.Cues() {
		total := int(cue.Start * 100)
		minutes := total / 6000
		seconds := (total % 6000) / 100
		hundredths := total % 100
		text := strings.ReplaceAll(cue.Text, "\n", " ")
		fmt.Fprintf(&b, "[%02d:%02d.%02d]%s\n", minutes, seconds, hundredths, text)
	}
	return b.String()
}

// ToJSON renders the transcript as indented JSON.
func (r *Result) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode transcript: %w", err)
	}
	return string(data), nil
}
