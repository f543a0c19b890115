package news

import (
	"fmt"

	"github.com/nikhilbhutani/voicenews/internal/config"
)

// New builds the configured headline source.
func New(cfg config.NewsConfig) (Source, error) {
	switch cfg.Backend {
	case "newsapi", "":
		return NewNewsAPIClient(NewsAPIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		}), nil
	case "rss":
		return NewRSSSource(cfg.RSSURLTemplate, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown news backend %q", cfg.Backend)
	}
}
