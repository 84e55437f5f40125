package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dedupkit/deduper/pkg/utils"
)

// Config represents the application configuration
type Config struct {
	// Hashing
	BlockSize int `yaml:"block_size"` // bytes per hash block

	// Scanning
	MinFileSize     string   `yaml:"min_file_size"` // e.g. "1KB"; files below are ignored
	ExcludePatterns []string `yaml:"exclude_patterns"`

	// Retention
	Strategy   string `yaml:"strategy"`
	CopyPrefix string `yaml:"copy_prefix"` // file-name marker for "copy of" duplicates

	// Execution
	DryRun       bool `yaml:"dry_run"`
	Verify       bool `yaml:"verify"`
	ShowProgress bool `yaml:"show_progress"`
	Workers      int  `yaml:"workers"` // 0 = sequential signature computation

	// Safety
	MinRootDepth int `yaml:"min_root_depth"` // minimum path components for an unforced run

	// Logging
	Verbose   bool   `yaml:"verbose"`
	LogFormat string `yaml:"log_format"` // text or json
}

// Load loads configuration from a file, falling back to defaults when the
// file does not exist.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := GetDefault()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BlockSize <= 0 {
		return fmt.Errorf("block size must be > 0")
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}

	if c.MinRootDepth < 0 {
		return fmt.Errorf("min root depth must be >= 0")
	}

	if c.CopyPrefix == "" {
		return fmt.Errorf("copy prefix must not be empty")
	}

	if c.MinFileSize != "" {
		if _, err := utils.ParseSize(c.MinFileSize); err != nil {
			return fmt.Errorf("invalid min file size: %w", err)
		}
	}

	for _, pattern := range c.ExcludePatterns {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}

	return nil
}

// MinFileSizeBytes returns the parsed minimum file size, or 0 when unset.
func (c *Config) MinFileSizeBytes() int64 {
	if c.MinFileSize == "" {
		return 0
	}
	n, err := utils.ParseSize(c.MinFileSize)
	if err != nil {
		return 0
	}
	return n
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "deduper", "config.yaml"), nil
}
