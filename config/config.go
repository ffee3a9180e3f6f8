package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is built once at process start and handed to every component.
// Nothing outside this package reads the environment directly.
type Config struct {
	ServerAddr string

	// Postgres
	PGHost   string
	PGPort   int
	PGUser   string
	PGPass   string
	PGDBName string

	// Model endpoint (OpenAI-compatible; set base URL + API version for Azure)
	OpenAIKey        string
	OpenAIBaseURL    string
	OpenAIAPIVersion string
	ChatModel        string
	EmbedModel       string
	EmbedDimensions  int
	MaxRetries       int
	RetryDelay       time.Duration

	// Retrieval
	TopK           int
	FallbackMin    int // below this many filtered hits, retry unrestricted
	EvidenceTokens int // token budget for the evidence set

	// Request deadlines. Completion calls dominate the budget.
	RequestTimeout  time.Duration
	EmbedTimeout    time.Duration
	CompleteTimeout time.Duration

	// Loader
	SourceDir      string
	ArchiveDir     string
	BadDir         string
	MonitoringTime time.Duration
	ChunkSize      int
	ChunkOverlap   int
	ConverterURL   string // docling-style PDF converter; empty disables PDF ingestion
	CropTop        float64
	CropBottom     float64
}

// Load reads configuration from environment variables, applying defaults for
// everything but the credentials.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		PGHost:   getEnv("PG_HOST", "localhost"),
		PGPort:   getEnvInt("PG_PORT", 5432),
		PGUser:   os.Getenv("PG_USER"),
		PGPass:   os.Getenv("PG_PASS"),
		PGDBName: getEnv("PG_DB_NAME", "legalrag"),

		OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		OpenAIAPIVersion: getEnv("OPENAI_API_VERSION", "2024-02-15-preview"),
		ChatModel:        getEnv("OPENAI_CHAT_MODEL", "gpt-4.1"),
		EmbedModel:       getEnv("OPENAI_EMBED_MODEL", "text-embedding-3-large"),
		EmbedDimensions:  getEnvInt("EMBED_DIMENSIONS", 3072),
		MaxRetries:       getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:       getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),

		TopK:           getEnvInt("RETRIEVE_TOP_K", 5),
		FallbackMin:    getEnvInt("RETRIEVE_FALLBACK_MIN", 2),
		EvidenceTokens: getEnvInt("EVIDENCE_TOKEN_BUDGET", 6000),

		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 90*time.Second),
		EmbedTimeout:    getEnvDuration("EMBED_TIMEOUT", 15*time.Second),
		CompleteTimeout: getEnvDuration("COMPLETE_TIMEOUT", 60*time.Second),

		SourceDir:      getEnv("LOADER_SOURCE_DIR", "./landing"),
		ArchiveDir:     getEnv("LOADER_ARCHIVE_DIR", "./archive"),
		BadDir:         getEnv("LOADER_BAD_DIR", "./bad"),
		MonitoringTime: getEnvDuration("LOADER_MONITORING_TIME", 5*time.Second),
		ChunkSize:      getEnvInt("CHUNK_SIZE", 2000),
		ChunkOverlap:   getEnvInt("CHUNK_OVERLAP", 200),
		ConverterURL:   os.Getenv("CONVERTER_URL"),
		CropTop:        getEnvFloat("PDF_CROP_TOP", 0),
		CropBottom:     getEnvFloat("PDF_CROP_BOTTOM", 0),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("RETRIEVE_TOP_K must be positive, got %d", c.TopK)
	}
	if c.FallbackMin > c.TopK {
		return fmt.Errorf("RETRIEVE_FALLBACK_MIN (%d) must not exceed RETRIEVE_TOP_K (%d)", c.FallbackMin, c.TopK)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// PostgresDSN assembles the connection string the way the server expects it.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.PGHost, c.PGPort, c.PGUser, c.PGPass, c.PGDBName)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
