package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	AIAPIKey       string
	LLMBaseURL     string
	LLMModelName   string
	LLMTemperature float32
	LLMTimeout     time.Duration
	// LLMRateLimit is the maximum model requests per second; 0 disables throttling.
	LLMRateLimit float64

	// EmbeddingBaseURL enables query embedding when set.
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingCacheSize int

	DBPath     string
	CorpusPath string

	// QdrantURL enables embedding hydration from Qdrant when set.
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	TopK              int
	MaxContextChars   int
	ContextTruncation string
	// MinScore is nil when no threshold is configured.
	MinScore     *float64
	HybridWeight float64

	OCRLanguage string
	APIPort     string
	LogLevel    slog.Level
	LogFormat   string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		AIAPIKey:           getEnv("AI_API_KEY", ""),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://aiproxy.sanand.workers.dev/openai/v1"),
		LLMModelName:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		DBPath:             getEnv("DB_PATH", "./data/threadqa.db"),
		CorpusPath:         getEnv("CORPUS_PATH", ""),
		QdrantURL:          getEnv("QDRANT_URL", ""),
		QdrantAPIKey:       getEnv("QDRANT_API_KEY", ""),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "subthreads"),
		ContextTruncation:  strings.ToLower(getEnv("CONTEXT_TRUNCATION", "skip")),
		OCRLanguage:        getEnv("OCR_LANGUAGE", "eng"),
		APIPort:            getEnv("API_PORT", "8000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.AIAPIKey == "" {
		return nil, fmt.Errorf("AI_API_KEY is required")
	}

	temperature, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.7"), 32)
	if err != nil {
		return nil, fmt.Errorf("LLM_TEMPERATURE must be a number: %w", err)
	}
	if temperature < 0 || temperature > 2 {
		return nil, fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	cfg.LLMTemperature = float32(temperature)

	if cfg.LLMTimeout, err = time.ParseDuration(getEnv("LLM_TIMEOUT", "60s")); err != nil {
		return nil, fmt.Errorf("LLM_TIMEOUT must be a duration: %w", err)
	}
	if cfg.LLMTimeout < 0 {
		return nil, fmt.Errorf("LLM_TIMEOUT must not be negative")
	}

	if cfg.LLMRateLimit, err = strconv.ParseFloat(getEnv("LLM_RATE_LIMIT", "0"), 64); err != nil {
		return nil, fmt.Errorf("LLM_RATE_LIMIT must be a number: %w", err)
	}

	if cfg.EmbeddingCacheSize, err = strconv.Atoi(getEnv("EMBEDDING_CACHE_SIZE", "256")); err != nil {
		return nil, fmt.Errorf("EMBEDDING_CACHE_SIZE must be a valid integer: %w", err)
	}
	if cfg.EmbeddingCacheSize < 0 {
		return nil, fmt.Errorf("EMBEDDING_CACHE_SIZE must not be negative")
	}

	if cfg.TopK, err = strconv.Atoi(getEnv("TOP_K", "5")); err != nil {
		return nil, fmt.Errorf("TOP_K must be a valid integer: %w", err)
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("TOP_K must be greater than 0")
	}

	// 0 disables the context budget.
	if cfg.MaxContextChars, err = strconv.Atoi(getEnv("MAX_CONTEXT_CHARS", "12000")); err != nil {
		return nil, fmt.Errorf("MAX_CONTEXT_CHARS must be a valid integer: %w", err)
	}

	if cfg.ContextTruncation != "skip" && cfg.ContextTruncation != "truncate" {
		return nil, fmt.Errorf("CONTEXT_TRUNCATION must be \"skip\" or \"truncate\", got %q", cfg.ContextTruncation)
	}

	if v := getEnv("MIN_SCORE", ""); v != "" {
		minScore, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("MIN_SCORE must be a number: %w", err)
		}
		cfg.MinScore = &minScore
	}

	if cfg.HybridWeight, err = strconv.ParseFloat(getEnv("HYBRID_WEIGHT", "0.5"), 64); err != nil {
		return nil, fmt.Errorf("HYBRID_WEIGHT must be a number: %w", err)
	}
	if cfg.HybridWeight < 0 || cfg.HybridWeight > 1 {
		return nil, fmt.Errorf("HYBRID_WEIGHT must be between 0 and 1")
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", cfg.LogFormat)
	}

	// Create the database directory if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// NewLogger builds a logger writing to w with the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: c.LogLevel,
	}
	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
