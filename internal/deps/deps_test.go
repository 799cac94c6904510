package deps

import (
	"os"
	"path/filepath"
	"testing"

	"submate/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected result for unset command: %#v", results[2])
	}
}

func TestRequirements(t *testing.T) {
	cfg := config.Default()

	names := make(map[string]bool)
	for _, req := range Requirements(&cfg) {
		names[req.Name] = true
	}
	for _, want := range []string{"FFmpeg", "FFprobe", "uvx"} {
		if !names[want] {
			t.Errorf("missing requirement %q", want)
		}
	}
	if names["nvidia-smi"] {
		t.Error("nvidia-smi should only appear for cuda device")
	}

	cfg.Whisper.Device = "cuda"
	found := false
	for _, req := range Requirements(&cfg) {
		if req.Name == "nvidia-smi" {
			found = true
			if !req.Optional {
				t.Error("nvidia-smi check should be optional")
			}
		}
	}
	if !found {
		t.Error("expected nvidia-smi requirement for cuda device")
	}
}
