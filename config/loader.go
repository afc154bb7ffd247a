package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/c360/semkernel/errors"
)

// Load reads a YAML configuration file, overlays it on DefaultConfig, and
// validates the result. Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapInvalid(err, "config", "Load", "read config file")
	}
	return Parse(data)
}

// Parse decodes YAML configuration bytes over DefaultConfig and validates.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapInvalid(err, "config", "Parse", "decode yaml")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
