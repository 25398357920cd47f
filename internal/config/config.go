// Package config loads and validates configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Data source names accepted in LEADERBOARD_SOURCE.
const (
	SourceOpenwork = "openwork"
	SourceDemo     = "demo"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	// Server settings.
	Port               int
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string

	// Data source settings.
	Source          string // "openwork", "demo" or "postgres"
	OpenworkURL     string
	OpenworkScale   float64 // Top of the reputation scale the remote API reports on.
	OpenworkTimeout time.Duration
	DatabaseURL     string // Only read when Source is "postgres".

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Operational settings.
	LogLevel string
	TUILog   string // File the terminal UI logs to; empty disables logging.
}

// Load reads configuration from environment variables with defaults.
// Malformed values are reported together rather than silently replaced.
func Load() (Config, error) {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	port, err := envInt("PORT", 8080)
	collect(err)
	readTimeout, err := envDuration("LEADERBOARD_READ_TIMEOUT", 15*time.Second)
	collect(err)
	writeTimeout, err := envDuration("LEADERBOARD_WRITE_TIMEOUT", 30*time.Second)
	collect(err)
	scale, err := envFloat("OPENWORK_REPUTATION_SCALE", 100)
	collect(err)
	timeout, err := envDuration("OPENWORK_TIMEOUT", 10*time.Second)
	collect(err)
	insecure, err := envBool("OTEL_EXPORTER_OTLP_INSECURE", false)
	collect(err)

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}

	cfg := Config{
		Port:               port,
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		Source:             strings.ToLower(envStr("LEADERBOARD_SOURCE", SourceOpenwork)),
		OpenworkURL:        envStr("OPENWORK_API_URL", "https://openwork.bot/api"),
		OpenworkScale:      scale,
		OpenworkTimeout:    timeout,
		DatabaseURL:        envStr("DATABASE_URL", ""),
		OTELEndpoint:       envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTELInsecure:       insecure,
		ServiceName:        envStr("OTEL_SERVICE_NAME", "agent-leaderboard"),
		LogLevel:           envStr("LEADERBOARD_LOG_LEVEL", "info"),
		TUILog:             envStr("LEADERBOARD_TUI_LOG", ""),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch c.Source {
	case SourceOpenwork:
		if c.OpenworkURL == "" {
			return fmt.Errorf("config: OPENWORK_API_URL is required for the openwork source")
		}
	case SourceDemo:
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres source")
		}
	default:
		return fmt.Errorf("config: LEADERBOARD_SOURCE=%q is not one of openwork, demo, postgres", c.Source)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT must be between 1 and 65535")
	}
	if c.OpenworkScale <= 0 {
		return fmt.Errorf("config: OPENWORK_REPUTATION_SCALE must be positive")
	}
	if c.OpenworkTimeout <= 0 {
		return fmt.Errorf("config: OPENWORK_TIMEOUT must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: LEADERBOARD_LOG_LEVEL=%q is not a valid level", c.LogLevel)
	}
	return lvl, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return "0.0.0.0:" + strconv.Itoa(c.Port)
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid number", key, v)
	}
	return f, nil
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}
