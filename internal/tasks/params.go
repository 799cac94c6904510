package tasks

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"submate/internal/language"
)

// Params carries a task's keyword arguments. Values must be JSON-encodable
// so params can travel through the durable queue.
type Params map[string]any

// Common parameter keys.
const (
	ParamFilePath       = "file_path"
	ParamAudioLanguage  = "audio_language"
	ParamTranslateTo    = "translate_to"
	ParamForce          = "force"
	ParamAudioBytes     = "audio_bytes"
	ParamLanguage       = "language"
	ParamTask           = "task"
	ParamOutputFormat   = "output_format"
	ParamWordTimestamps = "word_timestamps"
	ParamTargetLanguage = "target_language"
)

// String returns the parameter as a string, or "" when absent.
func (p Params) String(key string) string {
	if value, ok := p[key].(string); ok {
		return value
	}
	return ""
}

// Bool returns the parameter as a bool, or false when absent.
func (p Params) Bool(key string) bool {
	if value, ok := p[key].(bool); ok {
		return value
	}
	return false
}

// Language parses the parameter as a language code.
func (p Params) Language(key string) language.Code {
	return language.Parse(p.String(key))
}

// Bytes returns the parameter as raw bytes. Byte slices survive in-process
// calls directly; after a round trip through JSON they arrive base64-encoded.
func (p Params) Bytes(key string) []byte {
	switch value := p[key].(type) {
	case []byte:
		return value
	case string:
		if decoded, err := base64.StdEncoding.DecodeString(value); err == nil {
			return decoded
		}
	}
	return nil
}

// Encode serializes params for queue storage. Byte values are carried as
// base64 strings.
func (p Params) Encode() (string, error) {
	normalized := make(map[string]any, len(p))
	for key, value := range p {
		if raw, ok := value.([]byte); ok {
			normalized[key] = base64.StdEncoding.EncodeToString(raw)
			continue
		}
		normalized[key] = value
	}
	data, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("encode params: %w", err)
	}
	return string(data), nil
}

// DecodeParams deserializes params from queue storage.
func DecodeParams(payload string) (Params, error) {
	if strings.TrimSpace(payload) == "" {
		return Params{}, nil
	}
	var params Params
	if err := json.Unmarshal([]byte(payload), &params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	return params, nil
}

// Identity derives a stable hash from the task name and a canonical
// serialization of the params, with keys sorted. Equal submissions hash
// equally, which opt-in deduplication relies on.
func Identity(taskName string, params Params) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(taskName)
	for _, key := range keys {
		b.WriteByte('\x00')
		b.WriteString(key)
		b.WriteByte('=')
		writeCanonicalValue(&b, params[key])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func writeCanonicalValue(b *strings.Builder, value any) {
	switch v := value.(type) {
	case []byte:
		sum := sha256.Sum256(v)
		b.WriteString("bytes:")
		b.WriteString(hex.EncodeToString(sum[:]))
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			fmt.Fprintf(b, "%v", v)
			return
		}
		b.Write(encoded)
	}
}
