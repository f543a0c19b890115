package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"SERVER_HOST", "SERVER_PORT", "PUBLIC_BASE_URL", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"NEWS_BACKEND", "NEWS_API_KEY", "NEWS_API_BASE_URL", "NEWS_COUNTRY", "NEWS_TIMEOUT", "NEWS_RSS_URL_TEMPLATE",
	"SUMMARIZER_BACKEND", "HF_API_TOKEN", "HF_BASE_URL", "HF_SUMMARY_MODEL",
	"SUMMARY_WORD_THRESHOLD", "SUMMARY_MIN_LENGTH", "SUMMARY_TIMEOUT",
	"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OLLAMA_URL",
	"LLM_DEFAULT_PROVIDER", "LLM_DEFAULT_MODEL", "LLM_FALLBACK_PROVIDER", "LLM_FALLBACK_MODEL", "LLM_MAX_RETRIES",
	"TTS_BACKEND", "TTS_LANGUAGE", "TTS_GTTS_BASE_URL", "TTS_OPENAI_BASE_URL", "TTS_OPENAI_MODEL",
	"TTS_OPENAI_VOICE", "TTS_LOCAL_PIPER_BIN", "TTS_LOCAL_PIPER_MODEL", "TTS_TIMEOUT",
	"AUDIO_STORAGE", "AUDIO_DIR", "SUPABASE_URL", "SUPABASE_SERVICE_KEY", "AUDIO_BUCKET",
	"AUDIO_RETENTION", "AUDIO_PURGE_SCHEDULE", "WORKER_POOL_SIZE", "WORKER_CONCURRENCY", "WORKER_METRICS_ADDR",
}

// clearEnv blanks every variable so a developer's .env or shell cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvVars {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Server.PublicBaseURL)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "newsapi", cfg.News.Backend)
	assert.Equal(t, "us", cfg.News.Country)
	assert.Equal(t, 10*time.Second, cfg.News.Timeout)
	assert.Equal(t, "huggingface", cfg.Summarizer.Backend)
	assert.Equal(t, "sshleifer/distilbart-cnn-12-6", cfg.Summarizer.HFModel)
	assert.Equal(t, 40, cfg.Summarizer.WordThreshold)
	assert.Equal(t, 25, cfg.Summarizer.MinLength)
	assert.Equal(t, "gtts", cfg.TTS.Backend)
	assert.Equal(t, "en", cfg.TTS.Language)
	assert.Equal(t, "local", cfg.Audio.Storage)
	assert.Equal(t, "audio", cfg.Audio.Dir)
	assert.Equal(t, 7*24*time.Hour, cfg.Audio.Retention)
	assert.Equal(t, 8, cfg.Worker.PoolSize)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("PUBLIC_BASE_URL", "https://news.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("NEWS_TIMEOUT", "3s")
	t.Setenv("SUMMARY_WORD_THRESHOLD", "60")
	t.Setenv("AUDIO_RETENTION", "0")
	t.Setenv("TTS_BACKEND", "openai")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://news.example.com", cfg.Server.PublicBaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 3*time.Second, cfg.News.Timeout)
	assert.Equal(t, 60, cfg.Summarizer.WordThreshold)
	assert.Equal(t, time.Duration(0), cfg.Audio.Retention)
	assert.Equal(t, "openai", cfg.TTS.Backend)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SERVER_PORT", "eighty"},
		{"NEWS_TIMEOUT", "soon"},
		{"WORKER_POOL_SIZE", "many"},
		{"AUDIO_RETENTION", "1 week"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	assert.ErrorContains(t, err, "NEWS_API_KEY")

	cfg.News.APIKey = "key"
	assert.NoError(t, cfg.Validate())

	cfg.TTS.Backend = "local"
	assert.ErrorContains(t, cfg.Validate(), "TTS_LOCAL_PIPER_MODEL")
	cfg.TTS.LocalModel = "/models/en.onnx"
	assert.NoError(t, cfg.Validate())

	cfg.Audio.Storage = "supabase"
	assert.ErrorContains(t, cfg.Validate(), "SUPABASE_URL")

	cfg.Audio.Storage = "s3"
	assert.ErrorContains(t, cfg.Validate(), "AUDIO_STORAGE")

	cfg.Audio.Storage = "local"
	cfg.News.Backend = "rss"
	cfg.News.RSSURLTemplate = "https://example.com/feed"
	assert.ErrorContains(t, cfg.Validate(), "NEWS_RSS_URL_TEMPLATE")

	cfg.News.Backend = "newsapi"
	cfg.Summarizer.Backend = "gpt"
	assert.ErrorContains(t, cfg.Validate(), "SUMMARIZER_BACKEND")

	cfg.Summarizer.Backend = "llm"
	cfg.LLM.FallbackProvider = "anthropic"
	assert.ErrorContains(t, cfg.Validate(), "LLM_FALLBACK_MODEL")
	cfg.LLM.FallbackModel = "claude-3-5-haiku-latest"
	assert.NoError(t, cfg.Validate())
}

func TestValidateWorker(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	// The worker never talks to the news source.
	assert.Error(t, cfg.Validate())
	assert.NoError(t, cfg.ValidateWorker())

	cfg.Audio.Storage = "supabase"
	assert.ErrorContains(t, cfg.ValidateWorker(), "SUPABASE_URL")
	cfg.Audio.SupabaseURL = "https://x.supabase.co"
	cfg.Audio.SupabaseKey = "key"
	assert.NoError(t, cfg.ValidateWorker())

	cfg.Worker.Concurrency = 0
	assert.ErrorContains(t, cfg.ValidateWorker(), "WORKER_CONCURRENCY")
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ServerConfig{LogLevel: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, ServerConfig{LogLevel: "warning"}.SlogLevel())
	assert.Equal(t, slog.LevelError, ServerConfig{LogLevel: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, ServerConfig{LogLevel: "chatty"}.SlogLevel())
}
