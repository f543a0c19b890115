package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	News       NewsConfig
	Summarizer SummarizerConfig
	LLM        LLMConfig
	TTS        TTSConfig
	Audio      AudioConfig
	Worker     WorkerConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	PublicBaseURL string
	LogLevel      string
	CORSOrigins   []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type NewsConfig struct {
	Backend        string // "newsapi" or "rss"
	APIKey         string
	BaseURL        string
	Country        string
	Timeout        time.Duration
	RSSURLTemplate string // %s is replaced with the upper-case topic
}

type SummarizerConfig struct {
	Backend       string // "huggingface" or "llm"
	HFToken       string
	HFBaseURL     string
	HFModel       string
	WordThreshold int
	MinLength     int
	Timeout       time.Duration
}

type LLMConfig struct {
	OpenAIKey        string
	AnthropicKey     string
	OllamaURL        string
	DefaultProvider  string
	DefaultModel     string
	FallbackProvider string
	FallbackModel    string // model name understood by FallbackProvider
	MaxRetries       int
}

type TTSConfig struct {
	Backend       string // "gtts", "openai" or "local"
	Language      string
	GTTSBaseURL   string
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAIVoice   string
	LocalBinPath  string // default: "piper"
	LocalModel    string // required when backend=local
	Timeout       time.Duration
}

type AudioConfig struct {
	Storage       string // "local" or "supabase"
	Dir           string
	SupabaseURL   string
	SupabaseKey   string
	Bucket        string
	Retention     time.Duration // 0 disables purging
	PurgeSchedule string
}

type WorkerConfig struct {
	PoolSize    int
	Concurrency int
	MetricsAddr string // worker /metrics listener, empty disables
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getEnvInt("SERVER_PORT", 8000)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	newsTimeout, err := getEnvDuration("NEWS_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid NEWS_TIMEOUT: %w", err)
	}

	threshold, err := getEnvInt("SUMMARY_WORD_THRESHOLD", 40)
	if err != nil {
		return nil, fmt.Errorf("invalid SUMMARY_WORD_THRESHOLD: %w", err)
	}

	minLength, err := getEnvInt("SUMMARY_MIN_LENGTH", 25)
	if err != nil {
		return nil, fmt.Errorf("invalid SUMMARY_MIN_LENGTH: %w", err)
	}

	summaryTimeout, err := getEnvDuration("SUMMARY_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SUMMARY_TIMEOUT: %w", err)
	}

	maxRetries, err := getEnvInt("LLM_MAX_RETRIES", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM_MAX_RETRIES: %w", err)
	}

	ttsTimeout, err := getEnvDuration("TTS_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid TTS_TIMEOUT: %w", err)
	}

	retention, err := getEnvDuration("AUDIO_RETENTION", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIO_RETENTION: %w", err)
	}

	poolSize, err := getEnvInt("WORKER_POOL_SIZE", 8)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_POOL_SIZE: %w", err)
	}

	concurrency, err := getEnvInt("WORKER_CONCURRENCY", 2)
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_CONCURRENCY: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "0.0.0.0"),
			Port:          port,
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://127.0.0.1:8000"), "/"),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			CORSOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		News: NewsConfig{
			Backend:        getEnv("NEWS_BACKEND", "newsapi"),
			APIKey:         getEnv("NEWS_API_KEY", ""),
			BaseURL:        getEnv("NEWS_API_BASE_URL", "https://newsapi.org/v2"),
			Country:        getEnv("NEWS_COUNTRY", "us"),
			Timeout:        newsTimeout,
			RSSURLTemplate: getEnv("NEWS_RSS_URL_TEMPLATE", "https://news.google.com/rss/headlines/section/topic/%s?hl=en-US&gl=US&ceid=US:en"),
		},
		Summarizer: SummarizerConfig{
			Backend:       getEnv("SUMMARIZER_BACKEND", "huggingface"),
			HFToken:       getEnv("HF_API_TOKEN", ""),
			HFBaseURL:     getEnv("HF_BASE_URL", "https://api-inference.huggingface.co/models"),
			HFModel:       getEnv("HF_SUMMARY_MODEL", "sshleifer/distilbart-cnn-12-6"),
			WordThreshold: threshold,
			MinLength:     minLength,
			Timeout:       summaryTimeout,
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:        getEnv("OLLAMA_URL", ""),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", "gpt-4o-mini"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			FallbackModel:    getEnv("LLM_FALLBACK_MODEL", ""),
			MaxRetries:       maxRetries,
		},
		TTS: TTSConfig{
			Backend:       getEnv("TTS_BACKEND", "gtts"),
			Language:      getEnv("TTS_LANGUAGE", "en"),
			GTTSBaseURL:   getEnv("TTS_GTTS_BASE_URL", "https://translate.google.com"),
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("TTS_OPENAI_BASE_URL", ""),
			OpenAIModel:   getEnv("TTS_OPENAI_MODEL", "tts-1"),
			OpenAIVoice:   getEnv("TTS_OPENAI_VOICE", "alloy"),
			LocalBinPath:  getEnv("TTS_LOCAL_PIPER_BIN", "piper"),
			LocalModel:    getEnv("TTS_LOCAL_PIPER_MODEL", ""),
			Timeout:       ttsTimeout,
		},
		Audio: AudioConfig{
			Storage:       getEnv("AUDIO_STORAGE", "local"),
			Dir:           getEnv("AUDIO_DIR", "audio"),
			SupabaseURL:   getEnv("SUPABASE_URL", ""),
			SupabaseKey:   getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:        getEnv("AUDIO_BUCKET", "audio"),
			Retention:     retention,
			PurgeSchedule: getEnv("AUDIO_PURGE_SCHEDULE", "@every 1h"),
		},
		Worker: WorkerConfig{
			PoolSize:    poolSize,
			Concurrency: concurrency,
			MetricsAddr: getEnv("WORKER_METRICS_ADDR", ":9091"),
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (s ServerConfig) SlogLevel() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *Config) Validate() error {
	var problems []string

	switch c.News.Backend {
	case "newsapi":
		if c.News.APIKey == "" {
			problems = append(problems, "NEWS_API_KEY is required for NEWS_BACKEND=newsapi")
		}
	case "rss":
		if !strings.Contains(c.News.RSSURLTemplate, "%s") {
			problems = append(problems, "NEWS_RSS_URL_TEMPLATE must contain %s")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown NEWS_BACKEND %q", c.News.Backend))
	}

	switch c.Summarizer.Backend {
	case "huggingface", "llm":
	default:
		problems = append(problems, fmt.Sprintf("unknown SUMMARIZER_BACKEND %q", c.Summarizer.Backend))
	}

	if fb := c.LLM.FallbackProvider; fb != "" && fb != c.LLM.DefaultProvider && c.LLM.FallbackModel == "" {
		problems = append(problems, "LLM_FALLBACK_MODEL is required when LLM_FALLBACK_PROVIDER differs from LLM_DEFAULT_PROVIDER")
	}

	switch c.TTS.Backend {
	case "gtts", "openai":
	case "local":
		if c.TTS.LocalModel == "" {
			problems = append(problems, "TTS_LOCAL_PIPER_MODEL is required for TTS_BACKEND=local")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown TTS_BACKEND %q", c.TTS.Backend))
	}

	problems = append(problems, c.audioProblems()...)

	if c.Worker.PoolSize <= 0 {
		problems = append(problems, "WORKER_POOL_SIZE must be positive")
	}

	return joinProblems(problems)
}

// ValidateWorker checks only what the purge worker uses.
func (c *Config) ValidateWorker() error {
	problems := c.audioProblems()
	if c.Worker.Concurrency <= 0 {
		problems = append(problems, "WORKER_CONCURRENCY must be positive")
	}
	return joinProblems(problems)
}

func (c *Config) audioProblems() []string {
	switch c.Audio.Storage {
	case "local":
	case "supabase":
		if c.Audio.SupabaseURL == "" || c.Audio.SupabaseKey == "" {
			return []string{"SUPABASE_URL and SUPABASE_SERVICE_KEY are required for AUDIO_STORAGE=supabase"}
		}
	default:
		return []string{fmt.Sprintf("unknown AUDIO_STORAGE %q", c.Audio.Storage)}
	}
	return nil
}

func joinProblems(problems []string) error {
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
