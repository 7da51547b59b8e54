// Package config handles loading taller.toml configuration files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/erazemk/taller/internal/httpclient"
	"github.com/erazemk/taller/internal/imaging"
)

// Config represents the taller.toml configuration file.
type Config struct {
	Server   Server   `toml:"server"`
	Upstream Upstream `toml:"upstream"`
	Photos   Photos   `toml:"photos"`
}

// Server contains listener, database and logging settings.
type Server struct {
	Addr string `toml:"addr"`
	DB   string `toml:"db"`
	// Log is an optional file that receives a copy of every log line.
	Log string `toml:"log"`
	// Debug enables debug-level logging.
	Debug bool `toml:"debug"`
}

// Upstream describes the service center API the server fronts.
type Upstream struct {
	BaseURL string   `toml:"base-url"`
	Timeout Duration `toml:"timeout"`
	// Headers are sent with every upstream request, e.g. an API key.
	Headers map[string]string `toml:"headers"`
}

// Photos contains photo processing settings.
type Photos struct {
	// MaxDimension is the longest side, in pixels, stored photos are
	// downscaled to.
	MaxDimension int `toml:"max-dimension"`
}

// Duration is a time.Duration written as a string like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr: ":8080",
			DB:   "taller.sqlite3",
		},
		Upstream: Upstream{
			Timeout: Duration{httpclient.DefaultTimeout},
		},
		Photos: Photos{
			MaxDimension: imaging.MaxDimension,
		},
	}
}

// Load reads the configuration at path on top of the defaults. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s: unknown key %s", path, undecoded[0])
	}

	cfg.Upstream.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Upstream.BaseURL), "/")
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that have no usable zero value.
func (c *Config) Validate() error {
	if c.Upstream.Timeout.Duration <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}
	if c.Photos.MaxDimension <= 0 {
		return fmt.Errorf("photos max-dimension must be positive")
	}
	return nil
}
