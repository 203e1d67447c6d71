package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// Validate checks the loaded configuration for values the client cannot
// operate with. It returns an error describing the first failed check.
func Validate(cfg *Config) error {
	if err := validateAPI(&cfg.API); err != nil {
		return fmt.Errorf("api config: %w", err)
	}

	if err := validateHTTP(&cfg.HTTP); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := validateLog(&cfg.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	return nil
}

func validateAPI(cfg *APIConfig) error {
	if cfg.URL == "" {
		return fmt.Errorf("api url is required")
	}

	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid api url: %s", cfg.URL)
	}

	return nil
}

func validateHTTP(cfg *HTTPConfig) error {
	if cfg.Pool.MaxConnections <= 0 {
		return fmt.Errorf("max connections must be positive")
	}

	if cfg.Pool.MaxKeepalive < 0 || cfg.Pool.MaxKeepalive > cfg.Pool.MaxConnections {
		return fmt.Errorf("max keepalive must be between 0 and max connections (%d)", cfg.Pool.MaxConnections)
	}

	if cfg.Pool.KeepaliveExpiry <= 0 {
		return fmt.Errorf("keepalive expiry must be positive")
	}

	if cfg.Timeout.Connect <= 0 || cfg.Timeout.Read <= 0 || cfg.Timeout.Request <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}

	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative")
	}

	if cfg.Retry.JitterFactor < 0 || cfg.Retry.JitterFactor > 1 {
		return fmt.Errorf("jitter factor must be in [0.0, 1.0], got %v", cfg.Retry.JitterFactor)
	}

	for _, code := range cfg.Retry.ExtraCodes {
		if code < 100 || code > 599 {
			return fmt.Errorf("invalid extra retry status code: %d", code)
		}
	}

	return nil
}

func validateLog(cfg *LogConfig) error {
	if !slices.Contains(validLogLevels, cfg.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			cfg.Level, strings.Join(validLogLevels, ", "))
	}

	return nil
}
