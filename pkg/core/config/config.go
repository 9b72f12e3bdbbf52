package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the server configuration, read from a YAML file with
// environment overrides on top. All fields have workable defaults so
// the server starts with no file at all.
type Config struct {
	Addr          string `yaml:"addr"`
	DatabasePath  string `yaml:"database_path"`
	SessionSecret string `yaml:"session_secret"`
	CachePath     string `yaml:"cache_path"`
	KTablePath    string `yaml:"ktable_path"`
	WindowPath    string `yaml:"window_path"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Addr:         ":8080",
		DatabasePath: "bendcalc.db",
		CachePath:    "fingerprints.msgpack",
		WindowPath:   "window.json",
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BENDCALC_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("BENDCALC_DB"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("BENDCALC_SESSION_SECRET"); v != "" {
		c.SessionSecret = v
	}
	if v := os.Getenv("BENDCALC_CACHE"); v != "" {
		c.CachePath = v
	}
}
