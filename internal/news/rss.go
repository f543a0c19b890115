package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/nikhilbhutani/voicenews/internal/models"
	"github.com/nikhilbhutani/voicenews/pkg/textutil"
)

// RSSSource reads per-category topic feeds. URLTemplate contains one %s,
// replaced by the upper-case category (TECHNOLOGY, BUSINESS, ...).
type RSSSource struct {
	urlTemplate string
	parser      *gofeed.Parser
}

func NewRSSSource(urlTemplate string, timeout time.Duration) *RSSSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: timeout}
	p.UserAgent = "voicenews/1.0"
	return &RSSSource{urlTemplate: urlTemplate, parser: p}
}

func (s *RSSSource) Name() string { return "rss" }

func (s *RSSSource) FetchHeadlines(ctx context.Context, q Query) ([]models.Article, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	feedURL := fmt.Sprintf(s.urlTemplate, strings.ToUpper(q.Category.Query()))
	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, httpErr.StatusCode)
		}
		if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamMalformed, err)
		}
		return nil, classify(ctx, err)
	}

	articles := make([]models.Article, 0, q.PageSize)
	for _, item := range feed.Items {
		if len(articles) == q.PageSize {
			break
		}
		a := models.Article{Title: strings.TrimSpace(item.Title)}
		if desc := textutil.StripHTML(item.Description); desc != "" {
			a.Description = &desc
		}
		articles = append(articles, a)
	}
	return articles, nil
}
