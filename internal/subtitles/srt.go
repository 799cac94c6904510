package subtitles

import (
	"fmt"
	"strconv"
	"strings"
)

// Cue is one subtitle entry with timing in seconds.
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// ParseSRT decodes SRT content into cues. Blocks without a valid timing line
// are skipped rather than failing the whole document; badly encoded files
// from other tools are common.
func ParseSRT(content string) []Cue {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	blocks := strings.Split(strings.TrimSpace(content), "\n\n")

	cues := make([]Cue, 0, len(blocks))
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}

		timingLine := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				timingLine = i
				break
			}
		}
		if timingLine < 0 || timingLine+1 > len(lines) {
			continue
		}

		parts := strings.Split(lines[timingLine], "-->")
		if len(parts) != 2 {
			continue
		}
		start, errStart := ParseTimestamp(parts[0])
		end, errEnd := ParseTimestamp(parts[1])
		if errStart != nil || errEnd != nil {
			continue
		}

		index := len(cues) + 1
		if timingLine > 0 {
			if parsed, err := strconv.Atoi(strings.TrimSpace(lines[timingLine-1])); err == nil {
				index = parsed
			}
		}

		cues = append(cues, Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.TrimSpace(strings.Join(lines[timingLine+1:], "\n")),
		})
	}
	return cues
}

// RenderSRT encodes cues as an SRT document, renumbering sequentially.
func RenderSRT(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, FormatTimestamp(cue.Start), FormatTimestamp(cue.End), cue.Text)
	}
	return b.String()
}

// ParseTimestamp converts "00:01:02,345" (or with a period) to seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// FormatTimestamp converts seconds to the SRT "00:01:02,345" form.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int(seconds*1000 + 0.5)
	h := millis / 3600000
	m := (millis % 3600000) / 60000
	s := (millis % 60000) / 1000
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
