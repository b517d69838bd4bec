package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // keep a stray .env out of the way
	for _, key := range []string{
		"PORT", "PROMARK_HOST", "PROMARK_STORE_DRIVER", "PROMARK_STORE_PATH", "PROMARK_PERSIST_DEBOUNCE",
		"PROMARK_WORKER_COUNT", "PROMARK_MAX_QUEUE_SIZE", "PROMARK_MAX_UPLOAD_BYTES",
		"PROMARK_JOB_TTL", "PROMARK_API_KEY", "PROMARK_CORS_ORIGINS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8091" {
		t.Errorf("expected port %q, got %q", "8091", cfg.Port)
	}
	if cfg.Addr() != "127.0.0.1:8091" {
		t.Errorf("expected loopback address, got %q", cfg.Addr())
	}
	if cfg.StoreDriver != DriverFile {
		t.Errorf("expected driver %q, got %q", DriverFile, cfg.StoreDriver)
	}
	if filepath.Base(cfg.StorePath) != "document.yaml" {
		t.Errorf("expected default store file document.yaml, got %q", cfg.StorePath)
	}
	if cfg.PersistDebounce != 250*time.Millisecond {
		t.Errorf("expected 250ms debounce, got %s", cfg.PersistDebounce)
	}
	if cfg.WorkerCount != 2 || cfg.MaxQueueSize != 16 {
		t.Errorf("unexpected worker defaults: %d/%d", cfg.WorkerCount, cfg.MaxQueueSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROMARK_STORE_DRIVER", "SQLite")
	t.Setenv("PROMARK_STORE_PATH", "")
	t.Setenv("PROMARK_WORKER_COUNT", "-3")
	t.Setenv("PROMARK_PERSIST_DEBOUNCE", "0s")
	t.Setenv("PROMARK_CORS_ORIGINS", "http://a.test, ,http://b.test")

	cfg := Load()
	if cfg.StoreDriver != DriverSQLite {
		t.Errorf("expected driver %q, got %q", DriverSQLite, cfg.StoreDriver)
	}
	if !strings.HasSuffix(cfg.StorePath, "document.db") {
		t.Errorf("expected sqlite default path, got %q", cfg.StorePath)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected non-positive worker count to fall back to 2, got %d", cfg.WorkerCount)
	}
	if cfg.PersistDebounce != 0 {
		t.Errorf("expected zero debounce, got %s", cfg.PersistDebounce)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins: %v", cfg.CORSOrigins)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.StoreDriver = "redis" }},
		{"empty path", func(c *Config) { c.StorePath = "" }},
		{"bad port", func(c *Config) { c.Port = "http" }},
		{"no workers", func(c *Config) { c.WorkerCount = 0 }},
		{"negative workers", func(c *Config) { c.WorkerCount = -1 }},
		{"no queue", func(c *Config) { c.MaxQueueSize = 0 }},
		{"no upload limit", func(c *Config) { c.MaxUploadBytes = 0 }},
	}
	for _, tt := range tests {
		cfg := Config{
			Port:           "8091",
			StoreDriver:    DriverFile,
			StorePath:      "doc.yaml",
			WorkerCount:    1,
			MaxQueueSize:   1,
			MaxUploadBytes: 1,
		}
		tt.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestValidate_Accepts(t *testing.T) {
	cfg := Config{
		Host:           "127.0.0.1",
		Port:           "8091",
		StoreDriver:    DriverSQLite,
		StorePath:      "doc.db",
		WorkerCount:    1,
		MaxQueueSize:   1,
		MaxUploadBytes: 1,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
