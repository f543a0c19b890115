// Package pipeline composes preference lookup, headline fetch and optional
// enrichment into the list, summarize and speak operations.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/voicenews/internal/metrics"
	"github.com/nikhilbhutani/voicenews/internal/models"
	"github.com/nikhilbhutani/voicenews/internal/news"
	"github.com/nikhilbhutani/voicenews/internal/summarize"
	"github.com/nikhilbhutani/voicenews/internal/tts"
	"github.com/nikhilbhutani/voicenews/internal/workpool"
)

const (
	SummarizePageSize = 3
	SpeakPageSize     = 1
)

var (
	ErrNoFieldSelected = errors.New("no field selected")
	ErrNoArticles      = errors.New("no articles found")
	ErrNoContent       = errors.New("no content to convert")
)

// Preferences is the read side of the preference store.
type Preferences interface {
	Get(userID string) (models.Category, bool)
}

type Summarizer interface {
	Summarize(ctx context.Context, text *string) (string, summarize.Mode, error)
}

type Speaker interface {
	Synthesize(ctx context.Context, text, language string) (*models.AudioArtifact, error)
}

type Config struct {
	Country      string
	Language     string
	FetchTimeout time.Duration
}

type Service struct {
	prefs      Preferences
	source     news.Source
	summarizer Summarizer
	speaker    Speaker
	pool       *workpool.Pool
	metrics    *metrics.Metrics
	cfg        Config
}

func NewService(prefs Preferences, source news.Source, summarizer Summarizer, speaker Speaker, pool *workpool.Pool, m *metrics.Metrics, cfg Config) *Service {
	if pool == nil {
		pool = workpool.New(1)
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &Service{
		prefs:      prefs,
		source:     source,
		summarizer: summarizer,
		speaker:    speaker,
		pool:       pool,
		metrics:    m,
		cfg:        cfg,
	}
}

type ListResult struct {
	Field    models.Category  `json:"field"`
	Articles []models.Article `json:"articles"`
}

// SummaryError marks one article whose summary could not be produced.
// Index is the article's position in the fetched list.
type SummaryError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type SummarizeResult struct {
	Field     models.Category `json:"field"`
	Summaries []string        `json:"summaries"`
	Errors    []SummaryError  `json:"errors,omitempty"`
}

type SpeakResult struct {
	Field     models.Category `json:"field"`
	AudioFile string          `json:"audio_file"`
	AudioURL  string          `json:"audio_url"`
}

// List returns the user's headlines without enrichment.
func (s *Service) List(ctx context.Context, userID string, pageSize int) (res *ListResult, err error) {
	defer s.record("list", &err)

	if err := news.ValidatePageSize(pageSize); err != nil {
		return nil, err
	}
	field, err := s.resolve(userID)
	if err != nil {
		return nil, err
	}
	articles, err := s.fetch(ctx, field, pageSize)
	if err != nil {
		return nil, err
	}
	return &ListResult{Field: field, Articles: articles}, nil
}

type summaryOutcome struct {
	text string
	mode summarize.Mode
}

// Summarize fetches SummarizePageSize headlines and summarizes every
// description concurrently. Output keeps upstream order; articles with no
// description are left out silently and failed ones are reported in Errors.
func (s *Service) Summarize(ctx context.Context, userID string) (res *SummarizeResult, err error) {
	defer s.record("summarize", &err)

	field, err := s.resolve(userID)
	if err != nil {
		return nil, err
	}
	articles, err := s.fetch(ctx, field, SummarizePageSize)
	if err != nil {
		return nil, err
	}

	futures := make([]*workpool.Future[summaryOutcome], len(articles))
	for i, a := range articles {
		if !summarize.Eligible(a.Description) {
			continue
		}
		desc := a.Description
		futures[i] = workpool.Submit(ctx, s.pool, func(ctx context.Context) (summaryOutcome, error) {
			text, mode, err := s.summarizer.Summarize(ctx, desc)
			return summaryOutcome{text: text, mode: mode}, err
		})
	}

	res = &SummarizeResult{Field: field, Summaries: []string{}}
	for i, f := range futures {
		if f == nil {
			continue
		}
		out, err := f.Await(ctx)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			slog.Warn("article summary failed",
				"user_id", userID,
				"category", field,
				"index", i,
				"error", err,
			)
			s.metrics.Summary(string(summarize.ModeFailed))
			res.Errors = append(res.Errors, SummaryError{Index: i, Error: err.Error()})
			continue
		}
		s.metrics.Summary(string(out.mode))
		res.Summaries = append(res.Summaries, out.text)
	}
	return res, nil
}

// Speak converts the description of the user's top headline to audio.
func (s *Service) Speak(ctx context.Context, userID string) (res *SpeakResult, err error) {
	defer s.record("speak", &err)

	field, err := s.resolve(userID)
	if err != nil {
		return nil, err
	}
	articles, err := s.fetch(ctx, field, SpeakPageSize)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, ErrNoArticles
	}
	first := articles[0]
	if !first.HasText() {
		return nil, ErrNoContent
	}

	artifact, err := workpool.Run(ctx, s.pool, func(ctx context.Context) (*models.AudioArtifact, error) {
		return s.speaker.Synthesize(ctx, *first.Description, s.cfg.Language)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.AudioWritten()

	slog.Info("voice summary ready",
		"user_id", userID,
		"category", field,
		"file", artifact.Filename,
	)
	return &SpeakResult{Field: field, AudioFile: artifact.Filename, AudioURL: artifact.URL}, nil
}

func (s *Service) resolve(userID string) (models.Category, error) {
	field, ok := s.prefs.Get(userID)
	if !ok {
		return "", ErrNoFieldSelected
	}
	return field, nil
}

func (s *Service) fetch(ctx context.Context, field models.Category, pageSize int) ([]models.Article, error) {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	articles, err := workpool.Run(ctx, s.pool, func(ctx context.Context) ([]models.Article, error) {
		return s.source.FetchHeadlines(ctx, news.Query{
			Category: field,
			PageSize: pageSize,
			Country:  s.cfg.Country,
		})
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
		// A deadline hit while waiting on the pool is still an upstream timeout.
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(news.ErrUpstreamTimeout, err)
		}
		slog.Error("headline fetch failed",
			"source", s.source.Name(),
			"category", field,
			"error", err,
		)
	}
	s.metrics.UpstreamFetch(s.source.Name(), outcome, time.Since(start))
	return articles, err
}

func (s *Service) record(operation string, errp *error) {
	s.metrics.PipelineRequest(operation, Outcome(*errp))
}

// Outcome is a short label for an operation's result, used in metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoFieldSelected):
		return "no_field"
	case errors.Is(err, ErrNoArticles):
		return "no_articles"
	case errors.Is(err, ErrNoContent):
		return "no_content"
	case errors.Is(err, models.ErrInvalidCategory), errors.Is(err, news.ErrInvalidPageSize):
		return "invalid"
	case errors.Is(err, news.ErrUpstreamTimeout):
		return "upstream_timeout"
	case errors.Is(err, news.ErrUpstreamUnavailable), errors.Is(err, news.ErrUpstreamMalformed):
		return "upstream_error"
	case errors.Is(err, tts.ErrSynthesis):
		return "synthesis_error"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
