// Package config provides configuration management for the scanner service.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	yaml "gopkg.in/yaml.v3"
)

// Config represents the complete application configuration. Unset fields are
// filled from the default tags before validation.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Server      ServerConfig      `yaml:"server"`
	Chain       ChainConfig       `yaml:"chain"`
	Scan        ScanConfig        `yaml:"scan"`
}

// EnvironmentConfig defines the environment settings.
type EnvironmentConfig struct {
	LogLevel string `yaml:"log_level" default:"info"` // debug | info | warn | error
}

// ServerConfig defines HTTP service settings.
type ServerConfig struct {
	Port           int    `yaml:"port" default:"8080"`
	AuthToken      string `yaml:"auth_token"`
	RequestTimeout string `yaml:"request_timeout" default:"60s"`
}

// ChainConfig defines where the options chain table comes from.
// Exactly one of Path (CSV on disk) or URL (CSV over HTTP) must be set.
type ChainConfig struct {
	Path         string `yaml:"path"`
	URL          string `yaml:"url"`
	FetchTimeout string `yaml:"fetch_timeout" default:"30s"`
	MaxRetries   int    `yaml:"max_retries" default:"3"`
}

// ScanConfig defines the default scan thresholds. Requests may override any
// of them per call.
type ScanConfig struct {
	MinDTE        int     `yaml:"min_dte" default:"1"`
	MaxDTE        int     `yaml:"max_dte" default:"10"`
	MinCredit     float64 `yaml:"min_credit" default:"0.5"`
	ShortDeltaMin float64 `yaml:"short_delta_min" default:"0.2"`
	ShortDeltaMax float64 `yaml:"short_delta_max" default:"0.35"`
}

// Load reads and parses the configuration file from the specified path.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- configPath is a user-provided config file path
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var config Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks that all configuration values are valid and consistent.
func (c *Config) Validate() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("applying defaults: %w", err)
	}

	switch c.Environment.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("environment.log_level must be one of debug, info, warn, error")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if _, err := time.ParseDuration(c.Server.RequestTimeout); err != nil {
		return fmt.Errorf("server.request_timeout invalid: %w", err)
	}

	if c.Chain.Path == "" && c.Chain.URL == "" {
		return fmt.Errorf("one of chain.path or chain.url is required")
	}
	if c.Chain.Path != "" && c.Chain.URL != "" {
		return fmt.Errorf("chain.path and chain.url are mutually exclusive")
	}
	if _, err := time.ParseDuration(c.Chain.FetchTimeout); err != nil {
		return fmt.Errorf("chain.fetch_timeout invalid: %w", err)
	}
	if c.Chain.MaxRetries < 0 {
		return fmt.Errorf("chain.max_retries must be >= 0")
	}

	if c.Scan.MinDTE < 0 {
		return fmt.Errorf("scan.min_dte must be >= 0")
	}
	if c.Scan.MaxDTE < c.Scan.MinDTE {
		return fmt.Errorf("scan.max_dte (%d) must be >= scan.min_dte (%d)", c.Scan.MaxDTE, c.Scan.MinDTE)
	}
	if c.Scan.ShortDeltaMin < 0 || c.Scan.ShortDeltaMax > 1 {
		return fmt.Errorf("scan.short_delta bounds must be within [0,1]")
	}
	if c.Scan.ShortDeltaMin > c.Scan.ShortDeltaMax {
		return fmt.Errorf("scan.short_delta_min (%.2f) must be <= scan.short_delta_max (%.2f)",
			c.Scan.ShortDeltaMin, c.Scan.ShortDeltaMax)
	}

	return nil
}

// GetRequestTimeout returns the configured per-request timeout.
func (c *Config) GetRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.RequestTimeout)
	if err != nil {
		return 60 * time.Second // default
	}
	return d
}

// GetFetchTimeout returns the configured chain fetch timeout.
func (c *Config) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Chain.FetchTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
