// Package config loads billfold configuration from TOML.
// The file lives at $BILLFOLD_HOME/config.toml (default ~/.billfold);
// a missing file means defaults, and BILLFOLD_API_URL overrides the
// configured base URL.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full billfold configuration.
type Config struct {
	API      APIConfig      `toml:"api"`
	Callback CallbackConfig `toml:"callback"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

// APIConfig configures the invoicing backend transport.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// CallbackConfig configures the loopback OAuth callback server.
type CallbackConfig struct {
	Addr string `toml:"addr"`
}

// MetricsConfig gates the Prometheus /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			TimeoutSeconds: 30,
		},
		Callback: CallbackConfig{
			Addr: "127.0.0.1:9835",
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// Load reads the config file at path over the defaults. A missing file is
// not an error. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("BILLFOLD_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	return cfg, nil
}
