package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikhilbhutani/voicenews/internal/llm"
)

const summaryPrompt = "You summarize news articles. Reply with the summary only, in plain prose, " +
	"at least %d words and never longer than the original text."

// LLM summarizes through the chat model gateway; deterministic requests run at temperature 0.
type LLM struct {
	gateway  llm.Gateway
	provider string
	model    string
}

func NewLLM(gateway llm.Gateway, provider, model string) *LLM {
	return &LLM{gateway: gateway, provider: provider, model: model}
}

func (l *LLM) Name() string { return "llm" }

func (l *LLM) Summarize(ctx context.Context, req Request) (string, error) {
	c := llm.Completion{
		Provider:  l.provider,
		Model:     l.model,
		System:    fmt.Sprintf(summaryPrompt, req.MinLength),
		Input:     req.Text,
		MaxTokens: 512,
	}
	if !req.Deterministic {
		c.Temperature = 0.7
	}

	res, err := l.gateway.Complete(ctx, c)
	if err != nil {
		return "", err
	}
	summary := strings.TrimSpace(res.Text)
	if summary == "" {
		return "", fmt.Errorf("%s returned an empty summary", res.Provider)
	}
	return summary, nil
}
