package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	LyricastAPIKey string

	// Deck export service
	DeckServiceURL    string
	DeckServiceAPIKey string

	// AI lyrics cleanup (optional; empty key disables cleanup)
	OpenAIAPIKey   string
	OpenAIModel    string
	CleanupTimeout time.Duration

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Order resolution
	ReuseVerse bool

	// Job state
	JobTTL time.Duration

	// PDF extraction
	PDFTwoColumn         bool
	PDFFallbackPdftotext bool
}

func Load() Config {
	// Local development convenience; missing .env is fine.
	godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8091"),

		LyricastAPIKey: os.Getenv("LYRICAST_API_KEY"),

		DeckServiceURL:    envOr("DECK_SERVICE_URL", "http://localhost:8080"),
		DeckServiceAPIKey: os.Getenv("DECK_SERVICE_API_KEY"),

		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    envOr("OPENAI_MODEL", "gpt-4o-mini"),
		CleanupTimeout: envDuration("CLEANUP_TIMEOUT", 15*time.Second),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		ReuseVerse: envBool("REUSE_VERSE", false),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFTwoColumn:         envBool("PDF_TWO_COLUMN", true),
		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.CleanupTimeout <= 0 {
		cfg.CleanupTimeout = 15 * time.Second
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.LyricastAPIKey == "" {
		return fmt.Errorf("LYRICAST_API_KEY is required")
	}
	if c.DeckServiceAPIKey == "" {
		return fmt.Errorf("DECK_SERVICE_API_KEY is required")
	}
	// OPENAI_API_KEY is deliberately optional: cleanup degrades to a
	// no-op rather than blocking startup.
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
