// Package config loads settings from defaults, an optional YAML file, an
// optional .env file and SYNOPSIS_* environment variables, in that order of
// increasing precedence. Command-line flags are applied by the caller.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/synopsis/core/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SYNOPSIS_"

// Config holds all runtime settings.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Resolver ResolverConfig `yaml:"resolver"`
	Log      LogConfig      `yaml:"log"`
}

// StoreConfig holds document store settings.
type StoreConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeout      time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout     time.Duration `yaml:"write_timeout" validate:"gt=0"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown" validate:"gte=0"`
	CacheTTL         time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	// RateLimit is requests per minute per client; 0 disables limiting.
	RateLimit int `yaml:"rate_limit" validate:"gte=0"`
	RateBurst int `yaml:"rate_burst" validate:"gte=0"`
	// APIKey, when set, is required in the X-API-Key header.
	APIKey string `yaml:"api_key" validate:"omitempty,min=16"`
}

// IngestConfig holds batch ingestion settings.
type IngestConfig struct {
	BatchSize int  `yaml:"batch_size" validate:"min=1,max=10000"`
	Progress  bool `yaml:"progress"`
}

// ResolverConfig holds entity resolver settings.
type ResolverConfig struct {
	MinContainment int `yaml:"min_containment" validate:"gte=0"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Path: "synopsis.db"},
		Server: ServerConfig{
			Host:             "127.0.0.1",
			Port:             8080,
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     30 * time.Second,
			GracefulShutdown: 10 * time.Second,
			CacheTTL:         5 * time.Minute,
			RateBurst:        10,
		},
		Ingest: IngestConfig{BatchSize: 500, Progress: true},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Load builds a configuration. path names an optional YAML file; envFile
// names an optional .env file whose variables are loaded into the process
// environment without overriding ones already set. Missing files given
// explicitly are errors; an empty name skips that layer.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewIO("read", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewParse("yaml", path, err.Error())
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, errors.NewIO("load", envFile, err)
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok || len(verrs) == 0 {
			return errors.Wrap(err, "validate config")
		}
		fe := verrs[0]
		return &errors.ValidationError{
			Field:   fe.Namespace(),
			Message: fmt.Sprintf("failed %q constraint (value %v)", fe.Tag(), fe.Value()),
			Err:     err,
		}
	}
	return nil
}

// applyEnv applies SYNOPSIS_* overrides read through lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	if v, ok := get("STORE_PATH"); ok {
		cfg.Store.Path = v
	}
	if v, ok := get("HOST"); ok {
		cfg.Server.Host = v
	}
	if v, ok := get("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidation(EnvPrefix+"PORT", err.Error())
		}
		cfg.Server.Port = port
	}
	for name, dst := range map[string]*time.Duration{
		"READ_TIMEOUT":      &cfg.Server.ReadTimeout,
		"WRITE_TIMEOUT":     &cfg.Server.WriteTimeout,
		"GRACEFUL_SHUTDOWN": &cfg.Server.GracefulShutdown,
		"CACHE_TTL":         &cfg.Server.CacheTTL,
	} {
		if v, ok := get(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return errors.NewValidation(EnvPrefix+name, err.Error())
			}
			*dst = d
		}
	}
	for name, dst := range map[string]*int{
		"RATE_LIMIT": &cfg.Server.RateLimit,
		"RATE_BURST": &cfg.Server.RateBurst,
	} {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.NewValidation(EnvPrefix+name, err.Error())
			}
			*dst = n
		}
	}
	if v, ok := get("API_KEY"); ok {
		cfg.Server.APIKey = v
	}
	if v, ok := get("BATCH_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidation(EnvPrefix+"BATCH_SIZE", err.Error())
		}
		cfg.Ingest.BatchSize = n
	}
	if v, ok := get("PROGRESS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.NewValidation(EnvPrefix+"PROGRESS", err.Error())
		}
		cfg.Ingest.Progress = b
	}
	if v, ok := get("MIN_CONTAINMENT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidation(EnvPrefix+"MIN_CONTAINMENT", err.Error())
		}
		cfg.Resolver.MinContainment = n
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := get("LOG_FORMAT"); ok {
		cfg.Log.Format = strings.ToLower(v)
	}
	return nil
}
