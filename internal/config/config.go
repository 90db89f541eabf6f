// Package config loads the perfmon configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default paths and serve settings.
const (
	DefaultReportsDir = "reports"
	DefaultLedgerPath = "data/history.json"
	DefaultOutputDir  = "public"
	DefaultListenAddr = ":8080"
)

// Config holds all perfmon settings.
type Config struct {
	// ReportsDir is the directory the collector drops raw artifacts into.
	ReportsDir string `yaml:"reports_dir"`

	// LedgerPath is the history ledger file, the sole system of record.
	LedgerPath string `yaml:"ledger_path"`

	// OutputDir is where the rendered dashboard and artifact copies go.
	OutputDir string `yaml:"output_dir"`

	// Serve configures the built-in HTTP server for the output tree.
	Serve ServeConfig `yaml:"serve"`
}

// ServeConfig holds settings for `perfmon serve`.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `yaml:"addr"`

	// Watch rebuilds the dashboard whenever the reports directory changes.
	Watch bool `yaml:"watch"`
}

// Load reads the config file at path. A missing file yields the defaults;
// a file that exists but does not parse is an error. Missing fields are
// filled with defaults before validation.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ReportsDir: DefaultReportsDir,
		LedgerPath: DefaultLedgerPath,
		OutputDir:  DefaultOutputDir,
		Serve: ServeConfig{
			Addr: DefaultListenAddr,
		},
	}
}

func validate(cfg *Config) error {
	if cfg.ReportsDir == "" {
		return fmt.Errorf("reports_dir must not be empty")
	}
	if cfg.LedgerPath == "" {
		return fmt.Errorf("ledger_path must not be empty")
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if cfg.Serve.Addr == "" {
		return fmt.Errorf("serve.addr must not be empty")
	}
	return nil
}
