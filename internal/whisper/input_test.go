package whisper

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"
)

func TestStageRawPCMWritesHeader(t *testing.T) {
	samples := make([]byte, 320) // 10ms of s16le mono 16kHz
	input := Input{Bytes: samples, RawPCM: true}

	path, cleanup, err := input.stage(t.TempDir())
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	defer cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 44+len(samples) {
		t.Fatalf("staged file is %d bytes, want %d", len(data), 44+len(samples))
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Error("missing RIFF/WAVE markers")
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 16000 {
		t.Errorf("sample rate = %d", rate)
	}
	if channels := binary.LittleEndian.Uint16(data[22:24]); channels != 1 {
		t.Errorf("channels = %d", channels)
	}
	if dataLen := binary.LittleEndian.Uint32(data[40:44]); dataLen != uint32(len(samples)) {
		t.Errorf("data chunk length = %d", dataLen)
	}
}

func TestStageContainerBytesVerbatim(t *testing.T) {
	payload := []byte("RIFFalready-a-wav")
	input := Input{Bytes: payload}

	path, cleanup, err := input.stage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("container bytes must be staged without modification")
	}
}

func TestStageReader(t *testing.T) {
	input := Input{Reader: bytes.NewReader([]byte("streamed")), RawPCM: true}

	path, cleanup, err := input.stage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 44+8 {
		t.Errorf("staged size = %d", info.Size())
	}

	cleanup()
	if _, err := os.Stat(path); err == nil {
		t.Error("cleanup left the staged file behind")
	}
}

func TestStageMissingPath(t *testing.T) {
	input := Input{Path: "/does/not/exist.wav"}
	if _, _, err := input.stage(t.TempDir()); err == nil {
		t.Fatal("expected error for missing input file")
	}
}
