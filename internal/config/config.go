package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

type Config struct {
	Host string
	Port string

	// Persistence
	StoreDriver     string
	StorePath       string
	PersistDebounce time.Duration

	// Drop read workers
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// Upload limits
	MaxUploadBytes int64

	// HTTP surface
	APIKey      string
	CORSOrigins []string

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	driver := strings.ToLower(envOr("PROMARK_STORE_DRIVER", DriverFile))

	cfg := Config{
		Host: envOr("PROMARK_HOST", "127.0.0.1"),
		Port: envOr("PORT", "8091"),

		StoreDriver:     driver,
		StorePath:       envOr("PROMARK_STORE_PATH", defaultStorePath(driver)),
		PersistDebounce: envDuration("PROMARK_PERSIST_DEBOUNCE", 250*time.Millisecond),

		WorkerCount:  envInt("PROMARK_WORKER_COUNT", 2),
		MaxQueueSize: envInt("PROMARK_MAX_QUEUE_SIZE", 16),
		JobTTL:       envDuration("PROMARK_JOB_TTL", 10*time.Minute),

		MaxUploadBytes: envInt64("PROMARK_MAX_UPLOAD_BYTES", 10485760), // 10MB

		APIKey:      os.Getenv("PROMARK_API_KEY"),
		CORSOrigins: envList("PROMARK_CORS_ORIGINS", []string{"http://localhost:5173"}),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.PersistDebounce < 0 {
		cfg.PersistDebounce = 0
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 16
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 10 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}

	return cfg
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Host, is.Host),
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.StoreDriver, validation.Required, validation.In(DriverFile, DriverSQLite)),
		validation.Field(&c.StorePath, validation.Required),
		// Min skips zero values, so Required catches them.
		validation.Field(&c.WorkerCount, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxQueueSize, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
	)
}

func defaultStorePath(driver string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	name := "document.yaml"
	if driver == DriverSQLite {
		name = "document.db"
	}
	return filepath.Join(dir, "promark", name)
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

func envList(key string, fallback []string) []string {
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
