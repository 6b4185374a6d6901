package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	VendexAPIKey string

	// AI extraction
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	VisionModel   string
	MaxChunkChars int
	ChunkDelay    time.Duration

	// OCR
	OCREnabled    bool
	TesseractPath string
	PdftoppmPath  string
	OCRMaxProcs   int

	// Vendor directory hand-off (optional)
	StoreURL    string
	StoreAPIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		VendexAPIKey: os.Getenv("VENDEX_API_KEY"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:         envOr("OPENAI_MODEL", "gpt-4o-mini"),
		VisionModel:   envOr("OPENAI_VISION_MODEL", "gpt-4o"),
		MaxChunkChars: envInt("MAX_CHUNK_CHARS", 12000),
		ChunkDelay:    envDuration("CHUNK_DELAY", 500*time.Millisecond),

		OCREnabled:    envBool("OCR_ENABLED", true),
		TesseractPath: envOr("TESSERACT_PATH", "tesseract"),
		PdftoppmPath:  envOr("PDFTOPPM_PATH", "pdftoppm"),
		OCRMaxProcs:   envInt("OCR_MAX_PROCS", 2),

		StoreURL:    os.Getenv("STORE_URL"),
		StoreAPIKey: os.Getenv("STORE_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = 12000
	}
	if cfg.OCRMaxProcs <= 0 {
		cfg.OCRMaxProcs = 2
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.VendexAPIKey == "" {
		return fmt.Errorf("VENDEX_API_KEY is required")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.StoreURL != "" && c.StoreAPIKey == "" {
		return fmt.Errorf("STORE_API_KEY is required when STORE_URL is set")
	}
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
