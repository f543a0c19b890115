package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/voicenews/internal/config"
)

type fakeProvider struct {
	name     string
	failures int
	calls    int
	reply    string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Complete(ctx context.Context, c Completion) (*Result, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("upstream busy")
	}
	return &Result{Provider: f.name, Model: c.Model, Text: f.reply}, nil
}

func TestGateway_RetriesThenSucceeds(t *testing.T) {
	p := &fakeProvider{name: "openai", failures: 2, reply: "ok"}
	g := newGateway(config.LLMConfig{DefaultProvider: "openai", MaxRetries: 2}, 0, p)

	res, err := g.Complete(context.Background(), Completion{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, 3, p.calls)
}

func TestGateway_GivesUpAfterRetries(t *testing.T) {
	p := &fakeProvider{name: "openai", failures: 10}
	g := newGateway(config.LLMConfig{DefaultProvider: "openai", MaxRetries: 1}, 0, p)

	_, err := g.Complete(context.Background(), Completion{Model: "m"})
	assert.ErrorContains(t, err, "2 attempts failed")
	assert.Equal(t, 2, p.calls)
}

func TestGateway_FallsBack(t *testing.T) {
	primary := &fakeProvider{name: "openai", failures: 10}
	fallback := &fakeProvider{name: "ollama", reply: "from fallback"}
	g := newGateway(config.LLMConfig{DefaultProvider: "openai", FallbackProvider: "ollama", MaxRetries: 1}, 0, primary, fallback)

	res, err := g.Complete(context.Background(), Completion{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", res.Provider)
	assert.Equal(t, 2, primary.calls)
	assert.Equal(t, []string{"ollama", "openai"}, g.Providers())
}

// modelProvider only serves its own model name.
type modelProvider struct {
	fakeProvider
	model string
	seen  []string
}

func (m *modelProvider) Complete(ctx context.Context, c Completion) (*Result, error) {
	m.seen = append(m.seen, c.Model)
	if c.Model != m.model {
		return nil, fmt.Errorf("model %q not found", c.Model)
	}
	return m.fakeProvider.Complete(ctx, c)
}

func TestGateway_FallbackUsesFallbackModel(t *testing.T) {
	primary := &modelProvider{fakeProvider: fakeProvider{name: "openai", failures: 10}, model: "gpt-4o-mini"}
	fallback := &modelProvider{fakeProvider: fakeProvider{name: "anthropic", reply: "summary"}, model: "claude-3-5-haiku-latest"}
	g := newGateway(config.LLMConfig{
		DefaultProvider:  "openai",
		FallbackProvider: "anthropic",
		FallbackModel:    "claude-3-5-haiku-latest",
	}, 0, primary, fallback)

	res, err := g.Complete(context.Background(), Completion{Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "summary", res.Text)
	assert.Equal(t, "claude-3-5-haiku-latest", res.Model)
	assert.Equal(t, []string{"gpt-4o-mini"}, primary.seen)
	assert.Equal(t, []string{"claude-3-5-haiku-latest"}, fallback.seen)
}

func TestGateway_UnknownProvider(t *testing.T) {
	g := newGateway(config.LLMConfig{DefaultProvider: "anthropic"}, 0)

	_, err := g.Complete(context.Background(), Completion{Model: "m"})
	assert.ErrorContains(t, err, "not configured")
	assert.Empty(t, g.Providers())
}

func TestGateway_StopsOnCancelledContext(t *testing.T) {
	p := &fakeProvider{name: "openai", failures: 10}
	g := newGateway(config.LLMConfig{DefaultProvider: "openai", FallbackProvider: "ollama", MaxRetries: 3}, 0, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Complete(ctx, Completion{Model: "m"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, p.calls)
}
