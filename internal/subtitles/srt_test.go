package subtitles

import (
	"strings"
	"testing"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:03,500
Hello there.

2
00:00:04,000 --> 00:00:06,250
Two lines
of text.

garbage block without timing

3
bad --> timing
skipped
`

func TestParseSRT(t *testing.T) {
	cues := ParseSRT(sampleSRT)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Start != 1.0 || cues[0].End != 3.5 {
		t.Errorf("cue 0 timing = %v..%v", cues[0].Start, cues[0].End)
	}
	if cues[0].Text != "Hello there." {
		t.Errorf("cue 0 text = %q", cues[0].Text)
	}
	if cues[1].Text != "Two lines\nof text." {
		t.Errorf("cue 1 text = %q", cues[1].Text)
	}
}

func TestRenderSRTRoundTrip(t *testing.T) {
	cues := []Cue{
		{Start: 0.5, End: 2.0, Text: "First"},
		{Index: 99, Start: 3.25, End: 4.75, Text: "Second"},
	}
	rendered := RenderSRT(cues)
	if !strings.HasPrefix(rendered, "1\n00:00:00,500 --> 00:00:02,000\nFirst\n") {
		t.Errorf("unexpected render:\n%s", rendered)
	}
	parsed := ParseSRT(rendered)
	if len(parsed) != 2 {
		t.Fatalf("round trip lost cues: %d", len(parsed))
	}
	if parsed[1].Index != 2 {
		t.Errorf("expected renumbered index 2, got %d", parsed[1].Index)
	}
	if parsed[1].Start != 3.25 {
		t.Errorf("cue 1 start = %v", parsed[1].Start)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		value   string
		want    float64
		wantErr bool
	}{
		{"00:00:01,000", 1.0, false},
		{"00:01:02,345", 62.345, false},
		{"01:00:00.500", 3600.5, false},
		{"", 0, true},
		{"1:02,345", 0, true},
		{"aa:bb:cc,ddd", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.value)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimestamp(%q) expected error", tt.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	if got := FormatTimestamp(62.345); got != "00:01:02,345" {
		t.Errorf("FormatTimestamp = %q", got)
	}
	if got := FormatTimestamp(-5); got != "00:00:00,000" {
		t.Errorf("negative seconds clamp: %q", got)
	}
}
