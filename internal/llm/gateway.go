package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nikhilbhutani/voicenews/internal/config"
)

type gateway struct {
	providers map[string]Provider
	primary   string
	fallback  string
	fbModel   string
	retries   int
	backoff   time.Duration
}

// NewGateway registers a provider for every configured credential.
func NewGateway(cfg config.LLMConfig) Gateway {
	var providers []Provider
	if cfg.OpenAIKey != "" {
		providers = append(providers, NewOpenAIProvider(cfg.OpenAIKey))
	}
	if cfg.AnthropicKey != "" {
		providers = append(providers, NewAnthropicProvider(cfg.AnthropicKey))
	}
	if cfg.OllamaURL != "" {
		providers = append(providers, NewOllamaProvider(cfg.OllamaURL))
	}
	return newGateway(cfg, 500*time.Millisecond, providers...)
}

func newGateway(cfg config.LLMConfig, backoff time.Duration, providers ...Provider) *gateway {
	g := &gateway{
		providers: make(map[string]Provider, len(providers)),
		primary:   cfg.DefaultProvider,
		fallback:  cfg.FallbackProvider,
		fbModel:   cfg.FallbackModel,
		retries:   cfg.MaxRetries,
		backoff:   backoff,
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

func (g *gateway) Providers() []string {
	names := make([]string, 0, len(g.providers))
	for name := range g.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *gateway) Complete(ctx context.Context, c Completion) (*Result, error) {
	name := c.Provider
	if name == "" {
		name = g.primary
	}

	res, err := g.attempt(ctx, name, c)
	if err == nil || ctx.Err() != nil || g.fallback == "" || g.fallback == name {
		return res, err
	}

	slog.Warn("llm provider failed, using fallback",
		"primary", name,
		"fallback", g.fallback,
		"error", err,
	)
	if g.fbModel != "" {
		c.Model = g.fbModel
	}
	return g.attempt(ctx, g.fallback, c)
}

// attempt calls one provider up to retries+1 times with quadratic backoff.
func (g *gateway) attempt(ctx context.Context, name string, c Completion) (*Result, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("llm provider %q not configured", name)
	}

	var lastErr error
	for i := 0; i <= g.retries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i*i) * g.backoff):
			}
			slog.Debug("retrying llm call", "provider", name, "attempt", i)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := p.Complete(ctx, c)
		if err == nil {
			return res, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%s: %d attempts failed: %w", name, g.retries+1, lastErr)
}
