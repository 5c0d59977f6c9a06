package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime settings for both the TUI and the proxy.
type Config struct {
	// SimulatorURL is where the TUI posts circuits. Usually the local proxy.
	SimulatorURL string `yaml:"simulator_url"`
	// UpstreamURL is where the proxy forwards circuits.
	UpstreamURL string        `yaml:"upstream_url"`
	Listen      string        `yaml:"listen"`
	Columns     int           `yaml:"columns"`
	Precision   int           `yaml:"precision"`
	Timeout     time.Duration `yaml:"timeout"`
	LogFile     string        `yaml:"log_file"`
	LogLevel    string        `yaml:"log_level"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		SimulatorURL: "http://127.0.0.1:8080/api/simulate",
		UpstreamURL:  "https://quantsimback.onrender.com/api/simulate",
		Listen:       ":8080",
		Columns:      DefaultColumns,
		Precision:    DefaultPrecision,
		Timeout:      DefaultTimeout,
		LogFile:      "qbloch.log",
		LogLevel:     "info",
	}
}

// LoadConfig reads path over the defaults, applies environment overrides
// and validates the result. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, cfg.Validate()
}

// applyEnv overrides fields from the environment. SIMULATOR_URL keeps the
// meaning it has for the web proxy: the upstream simulator.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("SIMULATOR_URL"); ok && v != "" {
		c.UpstreamURL = v
	}
	if v, ok := lookup("QBLOCH_SIMULATOR_URL"); ok && v != "" {
		c.SimulatorURL = v
	}
	if v, ok := lookup("QBLOCH_LISTEN"); ok && v != "" {
		c.Listen = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
}

// Validate checks the settings.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{"simulator_url": c.SimulatorURL, "upstream_url": c.UpstreamURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s %q must be an absolute URL", name, raw)
		}
	}
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.Columns < 1 || c.Columns > 64 {
		return fmt.Errorf("columns must be in [1, 64], got %d", c.Columns)
	}
	if c.Precision < 1 || c.Precision > 12 {
		return fmt.Errorf("precision must be in [1, 12], got %d", c.Precision)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
