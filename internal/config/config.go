// Package config manages acpctl configuration using koanf/v2.
//
// Supports YAML files, environment variables, and CLI flags, in the same
// defaults-then-file-then-env layering the teacher's internal/config
// builds for its own daemon.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete acpctl configuration.
type Config struct {
	Metrics  MetricsConfig  `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
	KeyStore KeyStoreConfig `koanf:"keystore"`
	Session  SessionConfig  `koanf:"session"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address for the metrics endpoint (e.g., ":9100").
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint (e.g., "/metrics").
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// KeyStoreConfig selects and configures the KeyStore capability.
type KeyStoreConfig struct {
	// Dir is the directory backing a file-based keystore. Empty means
	// an in-memory keystore (keys do not survive process exit).
	Dir string `koanf:"dir"`
}

// SessionConfig holds default session parameters. They are loaded and
// validated, but no acpctl command reads them: commands that take a key
// ID use their own --key-id flag.
type SessionConfig struct {
	// DefaultKeyID is the default session key ID; it must be non-zero.
	DefaultKeyID uint32 `koanf:"default_key_id"`
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Metrics: MetricsConfig{
			Addr: ":9100",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		KeyStore: KeyStoreConfig{
			Dir: "",
		},
		Session: SessionConfig{
			DefaultKeyID: 1,
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for acpctl configuration.
// Variables are named ACPCTL_<section>_<key>, e.g., ACPCTL_METRICS_ADDR.
const envPrefix = "ACPCTL_"

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (ACPCTL_ prefix), and merges on top of
// DefaultConfig(). Missing fields inherit defaults. An empty path skips
// the file layer; a non-empty path that cannot be read is an error.
//
// Environment variable mapping:
//
//	ACPCTL_METRICS_ADDR       -> metrics.addr
//	ACPCTL_METRICS_PATH       -> metrics.path
//	ACPCTL_LOG_LEVEL          -> log.level
//	ACPCTL_LOG_FORMAT         -> log.format
//	ACPCTL_KEYSTORE_DIR       -> keystore.dir
//	ACPCTL_SESSION_DEFAULT_KEY_ID -> session.default_key_id
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// envKeyMapper transforms ACPCTL_METRICS_ADDR -> metrics.addr.
// Strips the ACPCTL_ prefix, lowercases, and replaces the first _ (the
// section separator) with ., so ACPCTL_SESSION_DEFAULT_KEY_ID maps to
// session.default_key_id.
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.Replace(s, "_", ".", 1)
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"metrics.addr":           defaults.Metrics.Addr,
		"metrics.path":           defaults.Metrics.Path,
		"log.level":              defaults.Log.Level,
		"log.format":             defaults.Log.Format,
		"keystore.dir":           defaults.KeyStore.Dir,
		"session.default_key_id": defaults.Session.DefaultKeyID,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	// ErrEmptyMetricsAddr indicates the metrics listen address is empty.
	ErrEmptyMetricsAddr = errors.New("metrics.addr must not be empty")

	// ErrInvalidDefaultKeyID indicates the default key ID is reserved (0).
	ErrInvalidDefaultKeyID = errors.New("session.default_key_id must be non-zero")
)

// Validate checks the configuration for logical errors.
// Returns the first validation error encountered.
func Validate(cfg *Config) error {
	if cfg.Metrics.Addr == "" {
		return ErrEmptyMetricsAddr
	}

	if cfg.Session.DefaultKeyID == 0 {
		return ErrInvalidDefaultKeyID
	}

	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the corresponding
// slog.Level. Unknown values default to slog.LevelInfo.
//
// Recognized values: "debug", "info", "warn", "error" (case-insensitive).
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
