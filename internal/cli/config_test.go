package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gi-bielefeld/scj-carp/pkg/errors"
	"github.com/gi-bielefeld/scj-carp/pkg/pipeline"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("loadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `threads = 4
size_threshold = 50
context_len = 1000
strict_overlap = true

[cache]
backend = "none"
ttl = "1h"
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Threads != 4 || cfg.SizeThreshold != 50 || cfg.ContextLen != 1000 || !cfg.StrictOverlap {
		t.Errorf("loadConfig() = %+v", cfg)
	}
	if cfg.Cache.Backend != backendNone {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, backendNone)
	}
	if ttl, _ := cfg.cacheTTL(); ttl != time.Hour {
		t.Errorf("cacheTTL() = %v, want 1h", ttl)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Cache.RedisAddr != DefaultConfig().Cache.RedisAddr {
		t.Errorf("Cache.RedisAddr = %q, want default", cfg.Cache.RedisAddr)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "threads = \n"},
		{"unknown key", "colour = \"red\"\n"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n"},
		{"bad ttl", "[cache]\nttl = \"soon\"\n"},
		{"negative threads", "threads = -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.toml", tt.content)
			_, err := loadConfig(path)
			if !errors.Is(err, errors.ErrCodeInvalidOption) {
				t.Errorf("loadConfig() error = %v, want INVALID_OPTION", err)
			}
		})
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := writeConfig(path, DefaultConfig(), false); err != nil {
		t.Fatalf("writeConfig() error = %v", err)
	}
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("round trip = %+v, want %+v", cfg, DefaultConfig())
	}

	if err := writeConfig(path, DefaultConfig(), false); !errors.Is(err, errors.ErrCodeInvalidOption) {
		t.Errorf("writeConfig() over existing file error = %v, want INVALID_OPTION", err)
	}
	if err := writeConfig(path, DefaultConfig(), true); err != nil {
		t.Errorf("writeConfig(force) error = %v", err)
	}
}

func TestDefaultConfigMatchesPipeline(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Threads != pipeline.DefaultThreads || cfg.ContextLen != pipeline.DefaultContextLen {
		t.Errorf("DefaultConfig() = %+v, want pipeline defaults", cfg)
	}
	if ttl, err := cfg.cacheTTL(); err != nil || ttl != pipeline.DefaultCacheTTL {
		t.Errorf("cacheTTL() = %v, %v, want %v", ttl, err, pipeline.DefaultCacheTTL)
	}
}

func TestPaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_CACHE_HOME", dir)

	if got, _ := configPath(); got != filepath.Join(dir, "carp", "config.toml") {
		t.Errorf("configPath() = %q", got)
	}
	if got, _ := cacheDir(); got != filepath.Join(dir, "carp") {
		t.Errorf("cacheDir() = %q", got)
	}
}
