package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nikhilbhutani/voicenews/internal/models"
)

// NewsAPIConfig holds configuration for the newsapi.org top-headlines endpoint.
type NewsAPIConfig struct {
	APIKey  string
	BaseURL string // default: "https://newsapi.org/v2"
	Timeout time.Duration
}

// NewsAPIClient queries newsapi.org for top headlines by category.
type NewsAPIClient struct {
	cfg        NewsAPIConfig
	httpClient *http.Client
}

func NewNewsAPIClient(cfg NewsAPIConfig) *NewsAPIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://newsapi.org/v2"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &NewsAPIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *NewsAPIClient) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string            `json:"status"`
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Articles []json.RawMessage `json:"articles"`
}

type newsAPIArticle struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (c *NewsAPIClient) FetchHeadlines(ctx context.Context, q Query) ([]models.Article, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("category", q.Category.Query())
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	if q.Country != "" {
		params.Set("country", q.Country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/top-headlines?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(ctx, err)
	}

	var payload newsAPIResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && payload.Message != "" {
			return nil, fmt.Errorf("%w: status %d: %s (%s)", ErrUpstreamUnavailable, resp.StatusCode, payload.Message, payload.Code)
		}
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamMalformed, decodeErr)
	}
	if payload.Status == "error" {
		return nil, fmt.Errorf("%w: %s (%s)", ErrUpstreamUnavailable, payload.Message, payload.Code)
	}
	if payload.Articles == nil {
		return nil, fmt.Errorf("%w: missing articles", ErrUpstreamMalformed)
	}

	return normalize(payload.Articles)
}

// normalize keeps only title and description. A missing or null
// description stays nil so enrichment can tell it apart from "".
func normalize(raw []json.RawMessage) ([]models.Article, error) {
	articles := make([]models.Article, 0, len(raw))
	for i, r := range raw {
		var a newsAPIArticle
		if err := json.Unmarshal(r, &a); err != nil {
			return nil, fmt.Errorf("%w: article %d: %v", ErrUpstreamMalformed, i, err)
		}
		if a.Title == nil {
			return nil, fmt.Errorf("%w: article %d has no title", ErrUpstreamMalformed, i)
		}
		articles = append(articles, models.Article{
			Title:       *a.Title,
			Description: a.Description,
		})
	}
	return articles, nil
}
