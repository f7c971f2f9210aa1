// Package config provides configuration management for dirsync.
// It supports a YAML configuration file, environment variables, and sensible
// defaults. CLI flags take precedence over everything here.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/klauern/dirsync/internal/util"
)

// Config represents the complete dirsync configuration.
type Config struct {
	// Sync configures default synchronization behavior
	Sync SyncConfig `yaml:"sync"`

	// Log configures sync log persistence
	Log LogConfig `yaml:"log"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`
}

// SyncConfig holds synchronization settings.
type SyncConfig struct {
	// Workers is the hash worker pool size used while scanning.
	// Zero means one worker per CPU.
	Workers int `yaml:"workers"`
	// AutoResolve is the default conflict policy: "", "source" or "target".
	// Empty means prompt interactively.
	AutoResolve string `yaml:"auto_resolve"`
	// Confirm requires a final confirmation before a mutating run.
	Confirm bool `yaml:"confirm"`
}

// LogConfig holds sync log settings.
type LogConfig struct {
	// Dir is the directory where timestamped sync logs are written.
	// Empty means the current working directory.
	Dir string `yaml:"dir"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{
			Workers:     runtime.NumCPU(),
			AutoResolve: "",
			Confirm:     true,
		},
		Log: LogConfig{
			Dir: "",
		},
		Output: OutputConfig{
			Color:   "auto",
			Verbose: false,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file. The DIRSYNC_CONFIG
// environment variable overrides the default location.
func FilePath() string {
	if v := os.Getenv("DIRSYNC_CONFIG"); v != "" {
		return util.ExpandHome(v)
	}
	return filepath.Join(util.ConfigDir(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	cfg := Default()

	configPath := FilePath()
	// #nosec G304 - configPath is constructed from trusted config directory
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}

	// Parse YAML over defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern DIRSYNC_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	if v := os.Getenv("DIRSYNC_SYNC_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Sync.Workers = n
		}
	}
	if v := os.Getenv("DIRSYNC_SYNC_AUTO_RESOLVE"); v != "" {
		c.Sync.AutoResolve = v
	}
	if v := os.Getenv("DIRSYNC_SYNC_CONFIRM"); v != "" {
		c.Sync.Confirm = parseBool(v)
	}
	if v := os.Getenv("DIRSYNC_LOG_DIR"); v != "" {
		c.Log.Dir = util.ExpandHome(v)
	}
	if v := os.Getenv("DIRSYNC_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("DIRSYNC_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}
}

// parseBool parses common boolean representations.
func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}
