// Package config handles global configuration and backing file resolution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/todo/config.yml.
type GlobalConfig struct {
	DBFile    string `yaml:"db_file,omitempty"`    // Backing file; relative paths resolve against the working directory
	IndexFile string `yaml:"index_file,omitempty"` // SQLite mirror; defaults to the backing file with a .db extension
	Human     bool   `yaml:"human,omitempty"`      // Default to human-readable output
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "todo"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Config keys accepted by Get and Set.
const (
	KeyDBFile    = "db-file"
	KeyIndexFile = "index-file"
	KeyHuman     = "human"
)

// ValidKeys lists the keys accepted by Get and Set, in display order.
var ValidKeys = []string{KeyDBFile, KeyIndexFile, KeyHuman}

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/todo/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	cfg.DBFile = ExpandPath(cfg.DBFile)
	cfg.IndexFile = ExpandPath(cfg.IndexFile)

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// Save writes the configuration to GlobalConfigPath, creating its directory.
func (c *GlobalConfig) Save() error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config location")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	globalConfigCache = c
	return nil
}

// Get returns the string form of a config value.
func (c *GlobalConfig) Get(key string) (string, error) {
	switch key {
	case KeyDBFile:
		return c.DBFile, nil
	case KeyIndexFile:
		return c.IndexFile, nil
	case KeyHuman:
		return strconv.FormatBool(c.Human), nil
	}
	return "", fmt.Errorf("unknown config key: %s (valid: %v)", key, ValidKeys)
}

// Set parses and stores a config value.
func (c *GlobalConfig) Set(key, value string) error {
	switch key {
	case KeyDBFile:
		c.DBFile = ExpandPath(value)
	case KeyIndexFile:
		c.IndexFile = ExpandPath(value)
	case KeyHuman:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %q is not a boolean", key, value)
		}
		c.Human = b
	default:
		return fmt.Errorf("unknown config key: %s (valid: %v)", key, ValidKeys)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
