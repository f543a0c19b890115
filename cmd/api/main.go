package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/voicenews/internal/api"
	"github.com/nikhilbhutani/voicenews/internal/api/handlers"
	"github.com/nikhilbhutani/voicenews/internal/config"
	"github.com/nikhilbhutani/voicenews/internal/metrics"
	"github.com/nikhilbhutani/voicenews/internal/news"
	"github.com/nikhilbhutani/voicenews/internal/pipeline"
	"github.com/nikhilbhutani/voicenews/internal/preference"
	"github.com/nikhilbhutani/voicenews/internal/queue"
	"github.com/nikhilbhutani/voicenews/internal/storage"
	"github.com/nikhilbhutani/voicenews/internal/summarize"
	"github.com/nikhilbhutani/voicenews/internal/tts"
	"github.com/nikhilbhutani/voicenews/internal/workpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Server.SlogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Redis backs the purge queue only; the API serves without it.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, admin purge will fail until it is reachable", "error", err)
	}
	defer rdb.Close()

	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	source, err := news.New(cfg.News)
	if err != nil {
		slog.Error("news source", "error", err)
		os.Exit(1)
	}
	summarizer, err := summarize.New(cfg.Summarizer, cfg.LLM)
	if err != nil {
		slog.Error("summarizer", "error", err)
		os.Exit(1)
	}
	voice, err := tts.New(cfg.TTS)
	if err != nil {
		slog.Error("tts provider", "error", err)
		os.Exit(1)
	}
	store, err := storage.New(cfg.Audio)
	if err != nil {
		slog.Error("audio storage", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	prefs := preference.NewStore()
	synth := tts.NewSynthesizer(voice, store, tts.SynthesizerConfig{
		PublicBaseURL: cfg.Server.PublicBaseURL,
		Timeout:       cfg.TTS.Timeout,
	})
	svc := pipeline.NewService(prefs, source, summarizer, synth, workpool.New(cfg.Worker.PoolSize), m, pipeline.Config{
		Country:      cfg.News.Country,
		Language:     cfg.TTS.Language,
		FetchTimeout: cfg.News.Timeout,
	})

	router := api.NewRouter(api.Deps{
		Prefs:    prefs,
		Pipeline: svc,
		Storage:  store,
		Queue:    queueClient,
		Metrics:  m,
		Checks: map[string]handlers.Checker{
			"redis":   handlers.CheckFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
			"storage": store,
		},
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"addr", cfg.Addr(),
			"news", source.Name(),
			"summarizer", summarizer.Backend(),
			"tts", synth.Backend(),
			"storage", store.Name(),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
