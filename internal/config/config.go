// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and the environment over those defaults.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Supported upstream providers.
const (
	ProviderFootballData = "football-data"
	ProviderAPIFootball  = "api-football"
)

// Default leagues per provider when none is configured.
const (
	DefaultFootballDataLeague = "PL"
	DefaultAPIFootballLeague  = "39"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// Provider selects the upstream: football-data or api-football.
	Provider string `koanf:"provider"`

	// League is the competition code (football-data) or numeric id (api-football).
	// Empty picks the provider's Premier League identifier.
	League string `koanf:"league"`

	// Season is the API-Football season start year; 0 derives it from the date.
	Season int `koanf:"season"`

	FootballDataURL   string `koanf:"football_data_url"`
	FootballDataToken string `koanf:"football_data_token"`
	APIFootballURL    string `koanf:"api_football_url"`
	APIFootballKey    string `koanf:"api_football_key"`

	// StandingsTTLMS and LiveTTLMS bound how long upstream data is served from cache.
	StandingsTTLMS int `koanf:"standings_ttl_ms"`
	LiveTTLMS      int `koanf:"live_ttl_ms"`

	// UpstreamTimeoutMS bounds every upstream request.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// StaticDir is served at the site root.
	StaticDir string `koanf:"static_dir"`

	// WarmIntervalSec refreshes the caches in the background; 0 disables it.
	WarmIntervalSec int `koanf:"warm_interval_sec"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":3000",
		Provider:          ProviderFootballData,
		StandingsTTLMS:    180_000,
		LiveTTLMS:         60_000,
		UpstreamTimeoutMS: 10_000,
		StaticDir:         "public",
	}
}

// ResolvedLeague returns League, or the provider default when it is empty.
func (c *Config) ResolvedLeague() string {
	if l := strings.TrimSpace(c.League); l != "" {
		return l
	}
	if c.Provider == ProviderAPIFootball {
		return DefaultAPIFootballLeague
	}
	return DefaultFootballDataLeague
}

// StandingsTTL returns the base standings cache window.
func (c *Config) StandingsTTL() time.Duration {
	return time.Duration(c.StandingsTTLMS) * time.Millisecond
}

// LiveTTL returns the live match cache window.
func (c *Config) LiveTTL() time.Duration {
	return time.Duration(c.LiveTTLMS) * time.Millisecond
}

// UpstreamTimeout returns the per-request upstream timeout.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// WarmInterval returns the cache warmer period; zero means disabled.
func (c *Config) WarmInterval() time.Duration {
	return time.Duration(c.WarmIntervalSec) * time.Second
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Provider {
	case ProviderFootballData:
	case ProviderAPIFootball:
		if _, err := strconv.Atoi(c.ResolvedLeague()); err != nil {
			return fmt.Errorf("%w: league must be a numeric id for %s", ErrInvalidConfig, c.Provider)
		}
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, c.Provider)
	}
	if c.StandingsTTLMS <= 0 || c.LiveTTLMS <= 0 {
		return fmt.Errorf("%w: cache ttls must be positive", ErrInvalidConfig)
	}
	if c.UpstreamTimeoutMS <= 0 {
		return fmt.Errorf("%w: upstream_timeout_ms must be positive", ErrInvalidConfig)
	}
	if c.WarmIntervalSec < 0 {
		return fmt.Errorf("%w: warm_interval_sec must not be negative", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}
