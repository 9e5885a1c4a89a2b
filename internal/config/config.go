// Package config loads the engine configuration from a YAML file.
// Everything the runtime needs is carried in the Config value handed to
// the constructors; nothing reads ambient environment state.
package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// HTTPConfig configures the REST listener
type HTTPConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	Port       int    `yaml:"port"`
}

// EphemerisConfig selects the ephemeris precision mode. DataDir points at
// the VSOP87 data files; when empty or unreadable the provider runs on
// its built-in analytic series. AllowFallback permits that even for
// strict-mode requests.
type EphemerisConfig struct {
	DataDir       string `yaml:"data_dir"`
	AllowFallback bool   `yaml:"allow_fallback"`
}

// RefDataConfig selects where the reference tables come from
type RefDataConfig struct {
	// Source is "embedded" (built-in tables), "csv" (directory of CSV
	// files) or "sqlite" (a reference .db file).
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
}

// Config is the full engine configuration
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Ephemeris EphemerisConfig `yaml:"ephemeris"`
	RefData   RefDataConfig   `yaml:"refdata"`
}

// Default returns the configuration used when no file is given: listen
// everywhere on 8080, analytic ephemeris, embedded reference tables.
func Default() *Config {
	return &Config{
		HTTP:    HTTPConfig{ListenAddr: "0.0.0.0", Port: 8080},
		RefData: RefDataConfig{Source: "embedded"},
	}
}

// Load reads a YAML configuration file and applies defaults for any
// omitted values.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.UnmarshalStrict(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the cross-field constraints defaults cannot express
func (c *Config) Validate() error {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = "0.0.0.0"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	switch c.RefData.Source {
	case "", "embedded":
		c.RefData.Source = "embedded"
	case "csv", "sqlite":
		if c.RefData.Path == "" {
			return fmt.Errorf("refdata.source %q requires refdata.path", c.RefData.Source)
		}
	default:
		return fmt.Errorf("unsupported refdata.source %q (use embedded, csv or sqlite)", c.RefData.Source)
	}
	return nil
}
