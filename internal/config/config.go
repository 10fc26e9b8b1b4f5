// Package config loads optional YAML settings for condgen. Flags win over
// the file; the file wins over built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Repo    string   `yaml:"repo"`
	Exclude []string `yaml:"exclude"`
	Report  string   `yaml:"report"`
	Write   bool     `yaml:"write"`
}

// Defaults mirror the flag defaults in cmd/condgen.
func Defaults() Config {
	return Config{
		Repo:    ".",
		Exclude: []string{`(^|/)(vendor|third_party|\.git|build|dist)/`},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults untouched.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ExcludeCSV renders exclude patterns in the comma-separated form the
// scanner takes.
func (c Config) ExcludeCSV() string {
	out := ""
	for i, p := range c.Exclude {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
