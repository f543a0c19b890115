package tts

import (
	"fmt"

	"github.com/nikhilbhutani/voicenews/internal/config"
)

// New builds the configured speech provider.
func New(cfg config.TTSConfig) (Provider, error) {
	switch cfg.Backend {
	case "gtts", "":
		return NewGoogleTTS(GoogleTTSConfig{BaseURL: cfg.GTTSBaseURL}), nil
	case "openai":
		return NewOpenAITTS(OpenAITTSConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Voice:   cfg.OpenAIVoice,
		}), nil
	case "local":
		return NewPiper(cfg.LocalBinPath, cfg.LocalModel), nil
	default:
		return nil, fmt.Errorf("unknown tts backend %q", cfg.Backend)
	}
}
