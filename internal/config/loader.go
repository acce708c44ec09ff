package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the file name searched for in the working directory.
const DefaultConfigFile = ".xsim.yaml"

// Environment variables that override the file.
const (
	EnvAPIURL   = "XSIM_API_URL"
	EnvLogLevel = "XSIM_LOG_LEVEL"
)

// ErrConfigNotFound is returned when an explicitly named file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// FindConfigFile searches for the configuration file in the following order:
// 1. configPath, when given
// 2. .xsim.yaml in the current directory
// 3. $XDG_CONFIG_HOME/xsim/config.yaml
//
// It returns "" when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	p := filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// LoadFile decodes path over the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user supplied config path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Load resolves, decodes, overrides from the environment, and validates the
// configuration. An explicit path that does not exist is an error; a missing
// default file is not.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()
	path := FindConfigFile(configPath)
	switch {
	case path != "":
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case configPath != "":
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
}
