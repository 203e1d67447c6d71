// Package config loads and validates the client configuration from defaults,
// an optional prefect.yaml file and PREFECT_-prefixed environment variables.
package config

import "time"

// Config represents the full client configuration. It is immutable after
// Load returns.
type Config struct {
	API  APIConfig  `koanf:"api" json:"api" yaml:"api" mapstructure:"api"`
	HTTP HTTPConfig `koanf:"http" json:"http" yaml:"http" mapstructure:"http"`
	Log  LogConfig  `koanf:"log" json:"log" yaml:"log" mapstructure:"log"`
}

// APIConfig holds the API endpoint and credentials.
type APIConfig struct {
	// URL is the fixed API root, e.g. https://api.prefect.cloud/api
	URL string `koanf:"url" json:"url" yaml:"url" mapstructure:"url"`
	// Key is the account API key sent as a bearer token
	Key string `koanf:"key" json:"-" yaml:"key" mapstructure:"key"`
}

// HTTPConfig holds transport settings: pool sizing, per-axis timeouts and
// retry behavior.
type HTTPConfig struct {
	Pool         PoolConfig    `koanf:"pool" json:"pool" yaml:"pool" mapstructure:"pool"`
	Timeout      TimeoutConfig `koanf:"timeout" json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	Retry        RetryConfig   `koanf:"retry" json:"retry" yaml:"retry" mapstructure:"retry"`
	CSRF         CSRFConfig    `koanf:"csrf" json:"csrf" yaml:"csrf" mapstructure:"csrf"`
	RaiseOnError bool          `koanf:"raiseonerror" json:"raiseonerror" yaml:"raiseonerror" mapstructure:"raiseonerror"`
}

// PoolConfig holds connection pool sizing. The keep-alive expiry should stay
// below the server's idle timeout so the client recycles connections first.
type PoolConfig struct {
	MaxConnections  int           `koanf:"maxconnections" json:"maxconnections" yaml:"maxconnections" mapstructure:"maxconnections"`
	MaxKeepalive    int           `koanf:"maxkeepalive" json:"maxkeepalive" yaml:"maxkeepalive" mapstructure:"maxkeepalive"`
	KeepaliveExpiry time.Duration `koanf:"keepaliveexpiry" json:"keepaliveexpiry" yaml:"keepaliveexpiry" mapstructure:"keepaliveexpiry"`
}

// TimeoutConfig holds per-axis timeouts.
type TimeoutConfig struct {
	Connect time.Duration `koanf:"connect" json:"connect" yaml:"connect" mapstructure:"connect"`
	Read    time.Duration `koanf:"read" json:"read" yaml:"read" mapstructure:"read"`
	Request time.Duration `koanf:"request" json:"request" yaml:"request" mapstructure:"request"`
}

// RetryConfig holds retry behavior settings.
type RetryConfig struct {
	// MaxRetries is the number of retries after the initial attempt
	MaxRetries int `koanf:"maxretries" json:"maxretries" yaml:"maxretries" mapstructure:"maxretries"`
	// JitterFactor spreads backoff delays; must be in [0.0, 1.0]
	JitterFactor float64 `koanf:"jitterfactor" json:"jitterfactor" yaml:"jitterfactor" mapstructure:"jitterfactor"`
	// ExtraCodes are retried in addition to the built-in set
	ExtraCodes []int `koanf:"extracodes" json:"extracodes" yaml:"extracodes" mapstructure:"extracodes"`
}

// CSRFConfig controls CSRF token management for mutating requests.
type CSRFConfig struct {
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" mapstructure:"level"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}
