package tts

import (
	"context"
	"path"
)

// SynthesisRequest holds the parameters for text-to-speech generation.
type SynthesisRequest struct {
	Input    string
	Language string // BCP-47 style code, e.g. "en"
	Voice    string
	Speed    float64
}

// SynthesisResult holds the generated audio and its content type.
type SynthesisResult struct {
	Audio       []byte
	ContentType string // "audio/mpeg" or "audio/wav"
}

// Provider is the interface for text-to-speech backends.
type Provider interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	Name() string
}

var extensions = map[string]string{
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
}

// ExtensionFor maps an audio content type to the stored file suffix.
func ExtensionFor(contentType string) string {
	if ext, ok := extensions[contentType]; ok {
		return ext
	}
	return ".mp3"
}

// ContentTypeFor is the inverse of ExtensionFor, keyed on a filename.
func ContentTypeFor(name string) string {
	ext := path.Ext(name)
	for ct, e := range extensions {
		if e == ext {
			return ct
		}
	}
	return "application/octet-stream"
}
