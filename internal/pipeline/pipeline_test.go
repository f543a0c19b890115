package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/voicenews/internal/models"
	"github.com/nikhilbhutani/voicenews/internal/news"
	"github.com/nikhilbhutani/voicenews/internal/preference"
	"github.com/nikhilbhutani/voicenews/internal/summarize"
	"github.com/nikhilbhutani/voicenews/internal/workpool"
)

type fakeSource struct {
	mu       sync.Mutex
	queries  []news.Query
	articles []models.Article
	err      error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchHeadlines(ctx context.Context, q news.Query) ([]models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.articles) > q.PageSize {
		return f.articles[:q.PageSize], nil
	}
	return f.articles, nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeCapability struct {
	calls atomic.Int32
	fail  map[string]bool
	delay map[string]time.Duration
}

func (f *fakeCapability) Name() string { return "fake" }

func (f *fakeCapability) Summarize(ctx context.Context, req summarize.Request) (string, error) {
	f.calls.Add(1)
	if d := f.delay[req.Text]; d > 0 {
		time.Sleep(d)
	}
	if f.fail[req.Text] {
		return "", errors.New("model unavailable")
	}
	return "summary of " + strings.Fields(req.Text)[0], nil
}

type fakeSpeaker struct {
	mu    sync.Mutex
	texts []string
	n     int
	err   error
}

func (f *fakeSpeaker) Synthesize(ctx context.Context, text, language string) (*models.AudioArtifact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.texts = append(f.texts, text)
	f.n++
	name := fmt.Sprintf("file-%d.mp3", f.n)
	return &models.AudioArtifact{Filename: name, URL: "http://host/audio/" + name}, nil
}

func ptr(s string) *string { return &s }

func long(word string) string {
	return strings.TrimSpace(strings.Repeat(word+" ", 50))
}

type fixture struct {
	prefs   *preference.Store
	source  *fakeSource
	model   *fakeCapability
	speaker *fakeSpeaker
	svc     *Service
}

func newFixture(t *testing.T, articles ...models.Article) *fixture {
	t.Helper()
	f := &fixture{
		prefs:   preference.NewStore(),
		source:  &fakeSource{articles: articles},
		model:   &fakeCapability{},
		speaker: &fakeSpeaker{},
	}
	adapter := summarize.NewAdapter(f.model, summarize.Options{})
	f.svc = NewService(f.prefs, f.source, adapter, f.speaker, workpool.New(4), nil, Config{Country: "us", Language: "en"})
	return f
}

func TestNoPreference_EarlyExitWithoutFetch(t *testing.T) {
	f := newFixture(t, models.Article{Title: "t", Description: ptr("d")})
	ctx := context.Background()

	_, err := f.svc.List(ctx, "ghost", 5)
	assert.ErrorIs(t, err, ErrNoFieldSelected)
	_, err = f.svc.Summarize(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNoFieldSelected)
	_, err = f.svc.Speak(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNoFieldSelected)

	assert.Equal(t, 0, f.source.calls())
}

func TestList_PassesPageSizeAndCategory(t *testing.T) {
	f := newFixture(t,
		models.Article{Title: "a", Description: ptr("x")},
		models.Article{Title: "b"},
	)
	require.NoError(t, f.prefs.Set("u", models.CategoryHealth))

	for _, size := range []int{1, 7, 10} {
		res, err := f.svc.List(context.Background(), "u", size)
		require.NoError(t, err)
		assert.Equal(t, models.CategoryHealth, res.Field)
	}

	require.Len(t, f.source.queries, 3)
	assert.Equal(t, news.Query{Category: models.CategoryHealth, PageSize: 1, Country: "us"}, f.source.queries[0])
	assert.Equal(t, 7, f.source.queries[1].PageSize)
	assert.Equal(t, 10, f.source.queries[2].PageSize)
}

func TestList_RejectsPageSizeBeforeFetch(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.prefs.Set("u", models.CategoryHealth))

	for _, size := range []int{0, 11} {
		_, err := f.svc.List(context.Background(), "u", size)
		assert.ErrorIs(t, err, news.ErrInvalidPageSize)
	}
	assert.Equal(t, 0, f.source.calls())
}

func TestList_SurfacesUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.source.err = fmt.Errorf("%w: status 500", news.ErrUpstreamUnavailable)
	require.NoError(t, f.prefs.Set("u", models.CategoryBusiness))

	res, err := f.svc.List(context.Background(), "u", 5)
	assert.ErrorIs(t, err, news.ErrUpstreamUnavailable)
	assert.Nil(t, res)
}

func TestSummarize_PolicyAndOrder(t *testing.T) {
	f := newFixture(t,
		models.Article{Title: "1", Description: ptr(long("alpha"))},
		models.Article{Title: "2"},
		models.Article{Title: "3", Description: ptr("short and sweet")},
		models.Article{Title: "4", Description: ptr(long("delta"))},
	)
	f.model.delay = map[string]time.Duration{long("alpha"): 30 * time.Millisecond}
	require.NoError(t, f.prefs.Set("u", models.CategoryTechnology))

	res, err := f.svc.Summarize(context.Background(), "u")
	require.NoError(t, err)

	assert.Equal(t, SummarizePageSize, f.source.queries[0].PageSize)
	assert.Equal(t, []string{"summary of alpha", "short and sweet"}, res.Summaries)
	assert.Empty(t, res.Errors)
	assert.Equal(t, int32(1), f.model.calls.Load())
}

func TestSummarize_OneFailureDoesNotAbortOthers(t *testing.T) {
	f := newFixture(t,
		models.Article{Title: "1", Description: ptr(long("alpha"))},
		models.Article{Title: "2", Description: ptr(long("beta"))},
		models.Article{Title: "3", Description: ptr(long("gamma"))},
	)
	f.model.fail = map[string]bool{long("beta"): true}
	require.NoError(t, f.prefs.Set("u", models.CategorySports))

	res, err := f.svc.Summarize(context.Background(), "u")
	require.NoError(t, err)

	assert.Equal(t, []string{"summary of alpha", "summary of gamma"}, res.Summaries)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Contains(t, res.Errors[0].Error, "summarization failed")
}

func TestSummarize_EmptyDescriptionKeptVerbatim(t *testing.T) {
	f := newFixture(t,
		models.Article{Title: "1", Description: ptr("")},
		models.Article{Title: "2", Description: ptr("short text")},
		models.Article{Title: "3"},
	)
	require.NoError(t, f.prefs.Set("u", models.CategoryEntertainment))

	res, err := f.svc.Summarize(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"", "short text"}, res.Summaries)
	assert.Empty(t, res.Errors)
	assert.Equal(t, int32(0), f.model.calls.Load())
}

func TestSummarize_AllAbsentGivesEmptyList(t *testing.T) {
	f := newFixture(t, models.Article{Title: "1"}, models.Article{Title: "2"})
	require.NoError(t, f.prefs.Set("u", models.CategorySports))

	res, err := f.svc.Summarize(context.Background(), "u")
	require.NoError(t, err)
	assert.NotNil(t, res.Summaries)
	assert.Empty(t, res.Summaries)
}

func TestSpeak(t *testing.T) {
	t.Run("synthesizes first article", func(t *testing.T) {
		f := newFixture(t,
			models.Article{Title: "1", Description: ptr("first story")},
			models.Article{Title: "2", Description: ptr("second story")},
		)
		require.NoError(t, f.prefs.Set("u", models.CategoryEntertainment))

		res, err := f.svc.Speak(context.Background(), "u")
		require.NoError(t, err)
		assert.Equal(t, SpeakPageSize, f.source.queries[0].PageSize)
		assert.Equal(t, models.CategoryEntertainment, res.Field)
		assert.Equal(t, "file-1.mp3", res.AudioFile)
		assert.Equal(t, "http://host/audio/file-1.mp3", res.AudioURL)
		assert.Equal(t, []string{"first story"}, f.speaker.texts)
	})

	t.Run("no articles", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.prefs.Set("u", models.CategoryEntertainment))

		_, err := f.svc.Speak(context.Background(), "u")
		assert.ErrorIs(t, err, ErrNoArticles)
		assert.Empty(t, f.speaker.texts)
	})

	t.Run("absent description", func(t *testing.T) {
		f := newFixture(t, models.Article{Title: "only a title"})
		require.NoError(t, f.prefs.Set("u", models.CategoryEntertainment))

		_, err := f.svc.Speak(context.Background(), "u")
		assert.ErrorIs(t, err, ErrNoContent)
		assert.Empty(t, f.speaker.texts)
	})

	t.Run("synthesis failure", func(t *testing.T) {
		f := newFixture(t, models.Article{Title: "1", Description: ptr("text")})
		f.speaker.err = errors.New("engine down")
		require.NoError(t, f.prefs.Set("u", models.CategoryEntertainment))

		_, err := f.svc.Speak(context.Background(), "u")
		assert.ErrorContains(t, err, "engine down")
	})
}

func TestFetchTimeoutIsUpstreamTimeout(t *testing.T) {
	prefs := preference.NewStore()
	require.NoError(t, prefs.Set("u", models.CategoryHealth))

	// A single busy slot forces the fetch to wait past its deadline.
	pool := workpool.New(1)
	started, release := make(chan struct{}), make(chan struct{})
	busy := workpool.Submit(context.Background(), pool, func(ctx context.Context) (struct{}, error) {
		close(started)
		<-release
		return struct{}{}, nil
	})
	<-started
	defer func() {
		close(release)
		busy.Await(context.Background())
	}()

	svc := NewService(prefs, &fakeSource{}, nil, nil, pool, nil, Config{FetchTimeout: 20 * time.Millisecond})
	_, err := svc.List(context.Background(), "u", 5)
	assert.ErrorIs(t, err, news.ErrUpstreamTimeout)
	assert.Equal(t, "upstream_timeout", Outcome(err))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "no_field", Outcome(ErrNoFieldSelected))
	assert.Equal(t, "no_content", Outcome(ErrNoContent))
	assert.Equal(t, "invalid", Outcome(fmt.Errorf("x: %w", news.ErrInvalidPageSize)))
	assert.Equal(t, "upstream_error", Outcome(news.ErrUpstreamMalformed))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}
