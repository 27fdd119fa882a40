package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/FocuswithJustin/synopsis/core/errors"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Ingest.BatchSize != 500 {
		t.Errorf("BatchSize = %d, want 500", cfg.Ingest.BatchSize)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", cfg.Addr())
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "synopsis.yaml")
	data := `
store:
  path: /var/lib/synopsis/data.db
server:
  port: 9090
  cache_ttl: 30s
ingest:
  batch_size: 250
log:
  format: text
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Path != "/var/lib/synopsis/data.db" {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Server.Port != 9090 || cfg.Server.CacheTTL != 30*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unset field lost its default: %v", cfg.Server.ReadTimeout)
	}
	if cfg.Ingest.BatchSize != 250 || cfg.Log.Format != "text" {
		t.Errorf("Ingest = %+v, Log = %+v", cfg.Ingest, cfg.Log)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), ""); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path, "")
	var perr *errors.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("error = %v, want ParseError", err)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("SYNOPSIS_PORT=7070\nSYNOPSIS_LOG_LEVEL=DEBUG\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("SYNOPSIS_PORT")
		os.Unsetenv("SYNOPSIS_LOG_LEVEL")
	})

	cfg, err := Load("", path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7070 || cfg.Log.Level != "debug" {
		t.Errorf("Port = %d, Level = %q", cfg.Server.Port, cfg.Log.Level)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := applyEnv(cfg, envMap(map[string]string{
		"SYNOPSIS_STORE_PATH":      ":memory:",
		"SYNOPSIS_HOST":            "0.0.0.0",
		"SYNOPSIS_CACHE_TTL":       "1m",
		"SYNOPSIS_BATCH_SIZE":      "100",
		"SYNOPSIS_PROGRESS":        "false",
		"SYNOPSIS_MIN_CONTAINMENT": "3",
		"SYNOPSIS_LOG_FORMAT":      "TEXT",
		"SYNOPSIS_RATE_LIMIT":      "120",
		"SYNOPSIS_API_KEY":         "0123456789abcdef",
	}))
	if err != nil {
		t.Fatalf("applyEnv() error = %v", err)
	}
	if cfg.Store.Path != ":memory:" || cfg.Server.Host != "0.0.0.0" || cfg.Server.CacheTTL != time.Minute {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Ingest.BatchSize != 100 || cfg.Ingest.Progress || cfg.Resolver.MinContainment != 3 {
		t.Errorf("Ingest = %+v, Resolver = %+v", cfg.Ingest, cfg.Resolver)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
	if cfg.Server.RateLimit != 120 || cfg.Server.RateBurst != 10 || cfg.Server.APIKey != "0123456789abcdef" {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"SYNOPSIS_PORT":            "eighty",
		"SYNOPSIS_READ_TIMEOUT":    "soon",
		"SYNOPSIS_BATCH_SIZE":      "many",
		"SYNOPSIS_PROGRESS":        "maybe",
		"SYNOPSIS_MIN_CONTAINMENT": "x",
		"SYNOPSIS_RATE_BURST":      "lots",
	}
	for k, v := range tests {
		t.Run(k, func(t *testing.T) {
			err := applyEnv(Default(), envMap(map[string]string{k: v}))
			var verr *errors.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error = %v, want ValidationError", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"batch size zero", func(c *Config) { c.Ingest.BatchSize = 0 }},
		{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
		{"negative cache ttl", func(c *Config) { c.Server.CacheTTL = -time.Second }},
		{"short api key", func(c *Config) { c.Server.APIKey = "short" }},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *errors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want ValidationError", err)
			}
			if verr.Field == "" {
				t.Error("ValidationError.Field should name the offending field")
			}
		})
	}
}
