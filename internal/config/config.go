// Package config loads the server's YAML defaults file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rezkam/kvs/engine"
)

// Config holds the defaults a binary falls back to when the corresponding
// flag wasn't passed on the command line.
type Config struct {
	DataDir  string      `yaml:"data_dir"`
	Addr     string      `yaml:"addr"`
	Engine   engine.Kind `yaml:"engine"`
	LogLevel string      `yaml:"log_level"`
}

// Default returns the hard-coded configuration used when no config file is
// present.
func Default() *Config {
	return &Config{
		DataDir:  ".",
		Addr:     "127.0.0.1:4000",
		Engine:   engine.KindUnspecified,
		LogLevel: "info",
	}
}

// Load reads path as YAML, with os.ExpandEnv applied to the raw bytes
// first so values like ${KVS_DATA_DIR} resolve from the environment. A
// missing file is not an error: it yields the hard-coded defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(raw))), cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}
