// Package config loads pipeline configuration from YAML with environment
// overrides, then validates the result against an embedded CUE schema so
// that a bad config fails before any network or database work begins.
//
// Precedence, lowest to highest: defaults, YAML file, .env file,
// process environment (DRUGSFDA_* variables).
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config holds every tunable of a pipeline run.
type Config struct {
	// BaseURL is the archive download location.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// DatabasePath is the SQLite destination file.
	DatabasePath string `yaml:"database_path" json:"database_path"`

	// HTTPTimeoutSeconds bounds each download attempt.
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds" json:"http_timeout_seconds"`

	// Retries is the number of additional download attempts after the first.
	Retries int `yaml:"retries" json:"retries"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		BaseURL:            "https://www.fda.gov/media/89850/download",
		DatabasePath:       "drugsfda.db",
		HTTPTimeoutSeconds: 120,
		Retries:            3,
		LogLevel:           "info",
	}
}

// Load builds a validated Config. path may be empty, in which case only
// defaults and environment overrides apply. A missing .env file is fine;
// a missing explicit YAML file is not.
func Load(path string) (Config, error) {
	cfg := Default()

	// Best-effort .env overlay into the process environment.
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate unifies the config with the embedded CUE schema and requires
// every field to be concrete and in range.
func Validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config: compile schema: %w", err)
	}

	value := ctx.Encode(cfg)
	if err := value.Err(); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// HTTPTimeout returns the per-attempt download timeout as a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// SlogLevel maps the configured level name to a slog level. The schema
// guarantees the name is one of the four known levels.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DRUGSFDA_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("DRUGSFDA_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("DRUGSFDA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DRUGSFDA_HTTP_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: DRUGSFDA_HTTP_TIMEOUT_SECONDS: %w", err)
		}
		cfg.HTTPTimeoutSeconds = n
	}
	if v := os.Getenv("DRUGSFDA_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: DRUGSFDA_RETRIES: %w", err)
		}
		cfg.Retries = n
	}
	return nil
}
