package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envVars = []string{
	"AI_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "LLM_TEMPERATURE", "LLM_TIMEOUT", "LLM_RATE_LIMIT",
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL", "EMBEDDING_CACHE_SIZE",
	"DB_PATH", "CORPUS_PATH", "QDRANT_URL", "QDRANT_API_KEY", "QDRANT_COLLECTION",
	"TOP_K", "MAX_CONTEXT_CHARS", "CONTEXT_TRUNCATION", "MIN_SCORE", "HYBRID_WEIGHT",
	"OCR_LANGUAGE", "API_PORT", "LOG_LEVEL", "LOG_FORMAT",
}

// isolateEnv clears every config variable for the test and moves into a
// temp directory so no .env file is picked up.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "data", "threadqa.db"))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(*testing.T)
		wantErr     bool
		checkConfig func(*testing.T, *Config)
	}{
		{
			name:     "missing AI_API_KEY",
			setupEnv: func(t *testing.T) {},
			wantErr:  true,
		},
		{
			name: "default values for optional fields",
			setupEnv: func(t *testing.T) {
				t.Setenv("AI_API_KEY", "secret")
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.AIAPIKey != "secret" {
					t.Errorf("AIAPIKey = %q", cfg.AIAPIKey)
				}
				if cfg.LLMBaseURL != "http://aiproxy.sanand.workers.dev/openai/v1" {
					t.Errorf("LLMBaseURL = %q", cfg.LLMBaseURL)
				}
				if cfg.LLMModelName != "gpt-4o-mini" {
					t.Errorf("LLMModelName = %q", cfg.LLMModelName)
				}
				if cfg.LLMTemperature != 0.7 {
					t.Errorf("LLMTemperature = %v", cfg.LLMTemperature)
				}
				if cfg.LLMTimeout != 60*time.Second {
					t.Errorf("LLMTimeout = %v", cfg.LLMTimeout)
				}
				if cfg.LLMRateLimit != 0 {
					t.Errorf("LLMRateLimit = %v", cfg.LLMRateLimit)
				}
				if cfg.EmbeddingBaseURL != "" || cfg.QdrantURL != "" || cfg.CorpusPath != "" {
					t.Errorf("optional integrations should be disabled by default")
				}
				if cfg.QdrantCollection != "subthreads" {
					t.Errorf("QdrantCollection = %q", cfg.QdrantCollection)
				}
				if cfg.TopK != 5 {
					t.Errorf("TopK = %d", cfg.TopK)
				}
				if cfg.MaxContextChars != 12000 {
					t.Errorf("MaxContextChars = %d", cfg.MaxContextChars)
				}
				if cfg.ContextTruncation != "skip" {
					t.Errorf("ContextTruncation = %q", cfg.ContextTruncation)
				}
				if cfg.MinScore != nil {
					t.Errorf("MinScore = %v, want nil", *cfg.MinScore)
				}
				if cfg.HybridWeight != 0.5 {
					t.Errorf("HybridWeight = %v", cfg.HybridWeight)
				}
				if cfg.OCRLanguage != "eng" {
					t.Errorf("OCRLanguage = %q", cfg.OCRLanguage)
				}
				if cfg.APIPort != "8000" {
					t.Errorf("APIPort = %q", cfg.APIPort)
				}
				if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
					t.Errorf("logging = %v/%q", cfg.LogLevel, cfg.LogFormat)
				}
			},
		},
		{
			name: "custom optional values",
			setupEnv: func(t *testing.T) {
				t.Setenv("AI_API_KEY", "secret")
				t.Setenv("LLM_BASE_URL", "http://custom:9090/v1")
				t.Setenv("LLM_MODEL", "custom-model")
				t.Setenv("LLM_TEMPERATURE", "0.2")
				t.Setenv("LLM_TIMEOUT", "5s")
				t.Setenv("LLM_RATE_LIMIT", "2.5")
				t.Setenv("TOP_K", "8")
				t.Setenv("MAX_CONTEXT_CHARS", "0")
				t.Setenv("CONTEXT_TRUNCATION", "Truncate")
				t.Setenv("MIN_SCORE", "0.25")
				t.Setenv("HYBRID_WEIGHT", "1")
				t.Setenv("LOG_LEVEL", "debug")
				t.Setenv("LOG_FORMAT", "JSON")
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.LLMBaseURL != "http://custom:9090/v1" || cfg.LLMModelName != "custom-model" {
					t.Errorf("LLM = %q/%q", cfg.LLMBaseURL, cfg.LLMModelName)
				}
				if cfg.LLMTemperature != float32(0.2) {
					t.Errorf("LLMTemperature = %v", cfg.LLMTemperature)
				}
				if cfg.LLMTimeout != 5*time.Second {
					t.Errorf("LLMTimeout = %v", cfg.LLMTimeout)
				}
				if cfg.LLMRateLimit != 2.5 {
					t.Errorf("LLMRateLimit = %v", cfg.LLMRateLimit)
				}
				if cfg.TopK != 8 || cfg.MaxContextChars != 0 {
					t.Errorf("TopK/MaxContextChars = %d/%d", cfg.TopK, cfg.MaxContextChars)
				}
				if cfg.ContextTruncation != "truncate" {
					t.Errorf("ContextTruncation = %q", cfg.ContextTruncation)
				}
				if cfg.MinScore == nil || *cfg.MinScore != 0.25 {
					t.Errorf("MinScore = %v", cfg.MinScore)
				}
				if cfg.HybridWeight != 1 {
					t.Errorf("HybridWeight = %v", cfg.HybridWeight)
				}
				if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
					t.Errorf("logging = %v/%q", cfg.LogLevel, cfg.LogFormat)
				}
			},
		},
		{
			name: "invalid TOP_K",
			setupEnv: func(t *testing.T) {
				t.Setenv("AI_API_KEY", "secret")
				t.Setenv("TOP_K", "many")
			},
			wantErr: true,
		},
		{
			name: "zero TOP_K",
			setupEnv: func(t *testing.T) {
				t.Setenv("AI_API_KEY", "secret")
				t.Setenv("TOP_K", "0")
			},
			wantErr: true,
		},
		{
			name: "invalid LLM_TIMEOUT",
			setupEnv: func(t *testing.T) {
				t.Setenv("AI_API_KEY", "secret")
				t.Setenv("LLM_TIMEOUT", "soon")
			},
			wantErr: true,
		},
		{
			name: "temperature out of range",
			setupEnv: func(t *testing.T) {
				t.Setenv("AI_API_KEY", "secret")
				t.Setenv("LLM_TEMPERATURE", "3")
			},
			wantErr: true,
		},
		{
			name: "unknown truncation policy",
			setupEnv: func(t *testing.T) {
				t.Setenv("AI_API_KEY", "secret")
				t.Setenv("CONTEXT_TRUNCATION", "drop")
			},
			wantErr: true,
		},
		{
			name: "invalid MIN_SCORE",
			setupEnv: func(t *testing.T) {
				t.Setenv("AI_API_KEY", "secret")
				t.Setenv("MIN_SCORE", "high")
			},
			wantErr: true,
		},
		{
			name: "hybrid weight out of range",
			setupEnv: func(t *testing.T) {
				t.Setenv("AI_API_KEY", "secret")
				t.Setenv("HYBRID_WEIGHT", "1.5")
			},
			wantErr: true,
		},
		{
			name: "invalid LOG_LEVEL",
			setupEnv: func(t *testing.T) {
				t.Setenv("AI_API_KEY", "secret")
				t.Setenv("LOG_LEVEL", "loud")
			},
			wantErr: true,
		},
		{
			name: "invalid LOG_FORMAT",
			setupEnv: func(t *testing.T) {
				t.Setenv("AI_API_KEY", "secret")
				t.Setenv("LOG_FORMAT", "xml")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateEnv(t)
			tt.setupEnv(t)

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if cfg == nil {
				t.Fatal("Load() returned nil config")
			}
			if tt.checkConfig != nil {
				tt.checkConfig(t, cfg)
			}
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	isolateEnv(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("AI_API_KEY=from-dotenv\nTOP_K=3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	// Variables already set take precedence over the file.
	t.Setenv("TOP_K", "9")
	// godotenv only fills unset variables, so clear the key entirely.
	os.Unsetenv("AI_API_KEY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AIAPIKey != "from-dotenv" {
		t.Errorf("AIAPIKey = %q, want from-dotenv", cfg.AIAPIKey)
	}
	if cfg.TopK != 9 {
		t.Errorf("TopK = %d, want 9", cfg.TopK)
	}
}

func TestLoad_CreatesDataDirectory(t *testing.T) {
	isolateEnv(t)

	dbPath := filepath.Join(t.TempDir(), "test", "db.db")
	t.Setenv("AI_API_KEY", "secret")
	t.Setenv("DB_PATH", dbPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Errorf("Load() should create data directory: %v", err)
	}
	if cfg.DBPath != dbPath {
		t.Errorf("Load() DBPath = %v, want %v", cfg.DBPath, dbPath)
	}
}

func TestConfig_NewLogger(t *testing.T) {
	tests := []struct {
		name   string
		format string
		level  slog.Level
		want   string
	}{
		{"text", "text", slog.LevelInfo, "msg=hello"},
		{"json", "json", slog.LevelInfo, `"msg":"hello"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := &Config{LogFormat: tt.format, LogLevel: tt.level}
			logger := cfg.NewLogger(&buf)

			logger.Debug("hidden")
			logger.Info("hello")

			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("log output %q does not contain %q", out, tt.want)
			}
			if strings.Contains(out, "hidden") {
				t.Errorf("debug message logged at info level: %q", out)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue string
		want         string
	}{
		{"env var set", "set-value", "default", "set-value"},
		{"empty env var uses default", "", "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_VAR", tt.value)
			if got := getEnv("TEST_ENV_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", "TEST_ENV_VAR", tt.defaultValue, got, tt.want)
			}
		})
	}
}
