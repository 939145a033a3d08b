// Package config loads client configuration for zedis-go tools.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"zedis-go/libzedis"
)

// Duration is a time.Duration that unmarshals from TOML strings like
// "500ms" or "5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the client configuration.
type Config struct {
	Network     string   `toml:"network"`
	Address     string   `toml:"address"`
	Proxy       string   `toml:"proxy"`
	DialTimeout Duration `toml:"dial_timeout"`
	ReadTimeout Duration `toml:"read_timeout"`
	PreferRESP2 bool     `toml:"prefer_resp2"`
	LogLevel    string   `toml:"log_level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Network:     "tcp",
		Address:     "localhost:6379",
		DialTimeout: Duration{5 * time.Second},
		LogLevel:    "info",
	}
}

// Load reads a TOML config file, filling unset fields with defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the transport cannot dial.
func Validate(cfg Config) error {
	switch cfg.Network {
	case "tcp", "unix", "ws":
	default:
		return fmt.Errorf("config: unsupported network %q", cfg.Network)
	}
	if cfg.Address == "" {
		return fmt.Errorf("config: address is required")
	}
	if cfg.Proxy != "" && cfg.Network != "tcp" {
		return fmt.Errorf("config: proxy applies to tcp only")
	}
	return nil
}

// ClientOptions converts the configuration into dial options.
func (c Config) ClientOptions() libzedis.Options {
	return libzedis.Options{
		Network:     c.Network,
		Address:     c.Address,
		ProxyAddr:   c.Proxy,
		DialTimeout: c.DialTimeout.Duration,
		ReadTimeout: c.ReadTimeout.Duration,
		PreferRESP2: c.PreferRESP2,
	}
}
