package summarize

import (
	"fmt"

	"github.com/nikhilbhutani/voicenews/internal/config"
	"github.com/nikhilbhutani/voicenews/internal/llm"
)

// New builds the adapter for the configured summarization backend.
func New(cfg config.SummarizerConfig, llmCfg config.LLMConfig) (*Adapter, error) {
	var c Capability
	switch cfg.Backend {
	case "huggingface", "":
		c = NewHuggingFace(HuggingFaceConfig{
			Token:   cfg.HFToken,
			BaseURL: cfg.HFBaseURL,
			Model:   cfg.HFModel,
		})
	case "llm":
		c = NewLLM(llm.NewGateway(llmCfg), llmCfg.DefaultProvider, llmCfg.DefaultModel)
	default:
		return nil, fmt.Errorf("unknown summarizer backend %q", cfg.Backend)
	}

	return NewAdapter(c, Options{
		WordThreshold: cfg.WordThreshold,
		MinLength:     cfg.MinLength,
		Timeout:       cfg.Timeout,
	}), nil
}
