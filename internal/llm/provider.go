package llm

import (
	"context"
	"time"
)

// Completion is a single-turn prompt: one instruction and one input text.
type Completion struct {
	Provider    string // empty selects the gateway default
	Model       string
	System      string
	Input       string
	Temperature float64
	MaxTokens   int
}

type Result struct {
	Provider     string
	Model        string
	Text         string
	InputTokens  int
	OutputTokens int
	Latency      time.Duration
}

// Provider is a chat model backend (OpenAI, Anthropic, Ollama).
type Provider interface {
	Complete(ctx context.Context, c Completion) (*Result, error)
	Name() string
}

// Gateway picks a provider per completion and handles retry and fallback.
type Gateway interface {
	Complete(ctx context.Context, c Completion) (*Result, error)
	Providers() []string
}
