// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"colident/internal/domain"
)

const (
	defaultMetaDBPath           = "colident_meta.sqlite"
	defaultRehydrateConcurrency = 4
	defaultReadConns            = 4
)

// Config holds the settings shared by the CLI commands.
type Config struct {
	MetaDBPath           string // path to the SQLite metastore
	LogLevel             string // log level: debug, info, warn, error (default "info")
	Env                  string // environment: "development" (default) or "production"
	RehydrateConcurrency int    // tables decoded in parallel on load (default 4)
	ReadConns            int    // read pool size (default 4)

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		MetaDBPath: os.Getenv("META_DB_PATH"),
		LogLevel:   os.Getenv("LOG_LEVEL"),
		Env:        os.Getenv("ENV"),
	}

	var err error
	if cfg.RehydrateConcurrency, err = parsePositiveInt(cfg, "REHYDRATE_CONCURRENCY", defaultRehydrateConcurrency); err != nil {
		return nil, err
	}
	if cfg.ReadConns, err = parsePositiveInt(cfg, "META_READ_CONNS", defaultReadConns); err != nil {
		return nil, err
	}

	// Defaults
	if cfg.MetaDBPath == "" {
		cfg.MetaDBPath = defaultMetaDBPath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !validLogLevel(cfg.LogLevel) {
		if cfg.IsProduction() {
			return nil, domain.ErrConfiguration("LOG_LEVEL %q is not one of debug, info, warn, error", cfg.LogLevel)
		}
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown LOG_LEVEL %q, using info", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// parsePositiveInt reads key as a positive integer. A malformed value falls
// back to def with a warning, or fails in production.
func parsePositiveInt(cfg *Config, key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err == nil && n > 0 {
		return n, nil
	}
	if cfg.IsProduction() {
		return 0, domain.ErrConfiguration("%s must be a positive integer, got %q", key, v)
	}
	cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%s=%q is not a positive integer, using %d", key, v, def))
	return def, nil
}

func validLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Variables already in the environment win.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes matching surrounding double or single quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
