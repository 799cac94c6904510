package whisper

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"submate/internal/services"
)

// PCM format WhisperX input files are staged as.
const (
	pcmSampleRate = 16000
	pcmChannels   = 1
	pcmBitDepth   = 16
)

// Input identifies the audio to transcribe. Exactly one of Path, Bytes, or
// Reader must be set. Bytes and Reader are staged to a temporary WAV file;
// RawPCM marks them as headerless s16le mono 16kHz samples that need a RIFF
// header prepended.
type Input struct {
	Path   string
	Bytes  []byte
	Reader io.Reader
	RawPCM bool
}

// Validate checks that the input names exactly one source.
func (in Input) Validate() error {
	sources := 0
	if in.Path != "" {
		sources++
	}
	if in.Bytes != nil {
		sources++
	}
	if in.Reader != nil {
		sources++
	}
	if sources != 1 {
		return services.Wrap(services.ErrValidation, "whisper", "stage",
			fmt.Sprintf("input must have exactly one source, got %d", sources), nil)
	}
	return nil
}

// stage materializes the input as a file on disk. The returned cleanup
// removes any temporary file and must be called on every exit path; for
// path inputs it is a no-op.
func (in Input) stage(workDir string) (path string, cleanup func(), err error) {
	if err := in.Validate(); err != nil {
		return "", nil, err
	}

	if in.Path != "" {
		if _, err := os.Stat(in.Path); err != nil {
			return "", nil, services.Wrap(services.ErrValidation, "whisper", "stage", "input file not accessible", err)
		}
		return in.Path, func() {}, nil
	}

	data := in.Bytes
	if in.Reader != nil {
		data, err = io.ReadAll(in.Reader)
		if err != nil {
			return "", nil, services.Wrap(services.ErrValidation, "whisper", "stage", "read input stream", err)
		}
	}

	file, err := os.CreateTemp(workDir, "submate-input-*.wav")
	if err != nil {
		return "", nil, services.Wrap(services.ErrExternalTool, "whisper", "stage", "create staging file", err)
	}
	cleanup = func() {
		file.Close()
		os.Remove(file.Name())
	}

	if in.RawPCM {
		if err := writeWAVHeader(file, len(data)); err != nil {
			cleanup()
			return "", nil, services.Wrap(services.ErrExternalTool, "whisper", "stage", "write wav header", err)
		}
	}
	if _, err := file.Write(data); err != nil {
		cleanup()
		return "", nil, services.Wrap(services.ErrExternalTool, "whisper", "stage", "write staging file", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", nil, services.Wrap(services.ErrExternalTool, "whisper", "stage", "close staging file", err)
	}

	name := file.Name()
	return name, func() { os.Remove(name) }, nil
}

// writeWAVHeader writes a canonical 44-byte RIFF header for s16le mono
// 16kHz PCM data of the given length.
func writeWAVHeader(w io.Writer, dataLen int) error {
	byteRate := pcmSampleRate * pcmChannels * pcmBitDepth / 8
	blockAlign := pcmChannels * pcmBitDepth / 8

	var buf [44]byte
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], pcmChannels)
	binary.LittleEndian.PutUint32(buf[24:28], pcmSampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], pcmBitDepth)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	_, err := w.Write(buf[:])
	return err
}

// tempWorkDir returns a directory for staging files, preferring the given
// one when set.
func tempWorkDir(preferred string) string {
	if preferred != "" {
		return preferred
	}
	return filepath.Clean(os.TempDir())
}
