package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigFile is the optional YAML file loaded from the working
// directory.
const DefaultConfigFile = "prefect.yaml"

// envPrefix namespaces the environment variables consumed by the client,
// e.g. PREFECT_API_KEY and PREFECT_API_URL.
const envPrefix = "PREFECT_"

// Load loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. The optional prefect.yaml file
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	return LoadFile(DefaultConfigFile)
}

// LoadFile loads configuration like Load but from the given YAML file path.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// The YAML file is optional
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// Environment variables take priority: PREFECT_API_KEY -> api.key
	if err := k.Load(envprovider.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"api.url": "https://api.prefect.cloud/api",
		"api.key": "",

		"http.pool.maxconnections":  16,
		"http.pool.maxkeepalive":    8,
		"http.pool.keepaliveexpiry": "25s",

		"http.timeout.connect": "60s",
		"http.timeout.read":    "60s",
		"http.timeout.request": "60s",

		"http.retry.maxretries":   5,
		"http.retry.jitterfactor": 0.2,

		"http.csrf.enabled": false,
		"http.raiseonerror": true,

		"log.level":  "info",
		"log.pretty": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
