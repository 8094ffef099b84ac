package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Settings is the subset of the settings store used to resolve runtime configuration.
type Settings interface {
	Lookup(key string) (string, bool)
	String(key, def string) string
	Int(key string, def int) int
	Bool(key string, def bool) bool
}

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > Environment variables > Settings store > Defaults
type Config struct {
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// envConfig mirrors the environment variables understood by Load.
type envConfig struct {
	Port           string `env:"PORT"`
	RateLimitRPS   string `env:"RATE_LIMIT_RPS"`
	RateLimitBurst string `env:"RATE_LIMIT_BURST"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	Port           *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables > Settings store > Defaults
func Load(store Settings, overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if store != nil {
		if err := mergo.Merge(&cfg, settingsLayer(store), mergo.WithOverride); err != nil {
			return Config{}, fmt.Errorf("merge settings: %w", err)
		}
		applySettingsFlags(&cfg, store)
	}

	var envCfg envConfig
	if err := env.Parse(&envCfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := mergo.Merge(&cfg, envLayer(envCfg), mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("merge environment: %w", err)
	}
	applyEnvRateLimit(&cfg, envCfg)

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// settingsLayer reads the server.* keys. Unset or invalid values stay zero
// so the merge keeps the lower layer.
func settingsLayer(store Settings) Config {
	return Config{
		Port:                strings.TrimSpace(store.String("server.port", "")),
		ShutdownGracePeriod: durationSetting(store, "server.shutdownGracePeriod"),
		ReadHeaderTimeout:   durationSetting(store, "server.readHeaderTimeout"),
		WriteTimeout:        durationSetting(store, "server.writeTimeout"),
		IdleTimeout:         durationSetting(store, "server.idleTimeout"),
	}
}

func durationSetting(store Settings, key string) time.Duration {
	raw, ok := store.Lookup(key)
	if !ok {
		return 0
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

func applySettingsFlags(cfg *Config, store Settings) {
	// mergo skips zero values; false and 0 are meaningful here.
	cfg.EnableRequestLogging = store.Bool("server.requestLogging", cfg.EnableRequestLogging)

	if raw, ok := store.Lookup("server.rateLimit.rps"); ok {
		if value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}
	if burst := store.Int("server.rateLimit.burst", -1); burst >= 0 {
		cfg.RateLimitBurst = burst
	}
}

func envLayer(envCfg envConfig) Config {
	return Config{
		Port: strings.TrimSpace(envCfg.Port),
	}
}

func applyEnvRateLimit(cfg *Config, envCfg envConfig) {
	if rps := strings.TrimSpace(envCfg.RateLimitRPS); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(envCfg.RateLimitBurst); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil {
		port := strings.TrimSpace(*overrides.Port)
		if port == "" {
			return errors.New("port flag cannot be empty")
		}
		cfg.Port = port
	}

	if overrides.RateLimitRPS != nil {
		if *overrides.RateLimitRPS < 0 {
			return fmt.Errorf("rate-limit-rps must be >= 0, got %v", *overrides.RateLimitRPS)
		}
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil {
		if *overrides.RateLimitBurst < 0 {
			return fmt.Errorf("rate-limit-burst must be >= 0, got %d", *overrides.RateLimitBurst)
		}
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Port) == "" {
		return errors.New("port cannot be empty")
	}
	if cfg.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return errors.New("RATE_LIMIT_BURST must be >= 0")
	}
	return nil
}
