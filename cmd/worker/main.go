package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/voicenews/internal/config"
	"github.com/nikhilbhutani/voicenews/internal/metrics"
	"github.com/nikhilbhutani/voicenews/internal/queue"
	"github.com/nikhilbhutani/voicenews/internal/queue/workers"
	"github.com/nikhilbhutani/voicenews/internal/retention"
	"github.com/nikhilbhutani/voicenews/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Server.SlogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.ValidateWorker(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	store, err := storage.New(cfg.Audio)
	if err != nil {
		slog.Error("audio storage", "error", err)
		os.Exit(1)
	}

	redisOpt := queue.RedisOpt(cfg.Redis)
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Logger:      newAsynqLogger(logger),
	})

	registry := queue.NewHandlersRegistry()

	m := metrics.New()
	purgeWorker := workers.NewPurgeWorker(retention.NewPurger(store, cfg.Audio.Retention, m))
	registry.Register(queue.TypeAudioPurge, asynq.HandlerFunc(purgeWorker.ProcessTask))

	var scheduler *asynq.Scheduler
	if cfg.Audio.Retention > 0 {
		task, err := queue.NewAudioPurgeTask(queue.AudioPurgePayload{Trigger: "schedule"})
		if err != nil {
			slog.Error("build purge task", "error", err)
			os.Exit(1)
		}
		scheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Logger: newAsynqLogger(logger)})
		entryID, err := scheduler.Register(cfg.Audio.PurgeSchedule, task)
		if err != nil {
			slog.Error("register purge schedule", "schedule", cfg.Audio.PurgeSchedule, "error", err)
			os.Exit(1)
		}
		if err := scheduler.Start(); err != nil {
			slog.Error("scheduler error", "error", err)
			os.Exit(1)
		}
		slog.Info("audio purge scheduled",
			"entry_id", entryID,
			"schedule", cfg.Audio.PurgeSchedule,
			"retention", cfg.Audio.Retention.String(),
		)
	} else {
		slog.Info("audio retention disabled, no purge scheduled")
	}

	var metricsSrv *http.Server
	if cfg.Worker.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsSrv = &http.Server{Addr: cfg.Worker.MetricsAddr, Handler: mux, ReadTimeout: 10 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency, "storage", store.Name())
	if err := srv.Start(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down worker...")
	if scheduler != nil {
		scheduler.Shutdown()
	}
	srv.Shutdown()
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		metricsSrv.Shutdown(ctx)
	}
	slog.Info("worker stopped")
}
