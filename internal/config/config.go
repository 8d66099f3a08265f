package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// AI provider configuration
	AIProvider            string // "google" (default), "openai"
	GeminiAPIKey          string
	GeminiModel           string
	GoogleEmbeddingsModel string
	OpenAIAPIKey          string
	OpenAIModel           string
	OpenAIEmbeddingsModel string
	GeminiTier            string

	// Per-call and per-request deadlines
	ProviderTimeout time.Duration
	RequestTimeout  time.Duration

	// Chunking
	MaxChunkSize int
	ChunkOverlap int

	// Bounded concurrency for embedding calls during corpus load
	EmbedConcurrency int

	// Chat session eviction
	SessionTTL    time.Duration
	SessionSweep  time.Duration
	MaxSessions   int

	// Tracing
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		AIProvider:            getEnv("AI_PROVIDER", "google"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIEmbeddingsModel: getEnv("OPENAI_EMBEDDINGS_MODEL", "text-embedding-3-small"),
		GeminiTier:            getEnv("GEMINI_TIER", "free"),

		ProviderTimeout: time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 20)) * time.Second,
		RequestTimeout:  time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,

		MaxChunkSize: getEnvInt("MAX_CHUNK_SIZE", 800),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 50),

		EmbedConcurrency: getEnvInt("EMBED_CONCURRENCY", 3),

		SessionTTL:   time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		SessionSweep: time.Duration(getEnvInt("SESSION_SWEEP_MINUTES", 10)) * time.Minute,
		MaxSessions:  getEnvInt("MAX_SESSIONS", 10000),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	switch cfg.AIProvider {
	case "google":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required - set it in .env file")
		}
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER: %s", cfg.AIProvider)
	}

	if cfg.ChunkOverlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than MAX_CHUNK_SIZE (%d)",
			cfg.ChunkOverlap, cfg.MaxChunkSize)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
