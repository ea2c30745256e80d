package logger

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds logging configuration
type Config struct {
	Level          string `yaml:"level"`
	ConsoleEnabled bool   `yaml:"console_enabled"`
	Format         string `yaml:"format"`
	FileEnabled    bool   `yaml:"file_enabled"`
	FilePath       string `yaml:"file_path"`
	FileMaxSizeMB  int    `yaml:"file_max_size_mb"`
	FileMaxBackups int    `yaml:"file_max_backups"`
	FileMaxAgeDays int    `yaml:"file_max_age_days"`
}

// fileConfig wraps the Config for YAML parsing
type fileConfig struct {
	Logging *Config `yaml:"logging"`
}

// DefaultConfig returns the logging defaults used when no file is present.
func DefaultConfig() Config {
	return Config{
		Level:          "INFO",
		ConsoleEnabled: true,
		Format:         "text",
		FileEnabled:    false,
		FilePath:       "logs/floorpop.log",
		FileMaxSizeMB:  10,
		FileMaxBackups: 5,
		FileMaxAgeDays: 30,
	}
}

// Merge overlays the non-zero fields of other onto c.
// Booleans are taken as-is since YAML cannot express "unset" for them.
func (c Config) Merge(other Config) Config {
	if other.Level != "" {
		c.Level = other.Level
	}
	c.ConsoleEnabled = other.ConsoleEnabled
	if other.Format != "" {
		c.Format = other.Format
	}
	c.FileEnabled = other.FileEnabled
	if other.FilePath != "" {
		c.FilePath = other.FilePath
	}
	if other.FileMaxSizeMB > 0 {
		c.FileMaxSizeMB = other.FileMaxSizeMB
	}
	if other.FileMaxBackups > 0 {
		c.FileMaxBackups = other.FileMaxBackups
	}
	if other.FileMaxAgeDays > 0 {
		c.FileMaxAgeDays = other.FileMaxAgeDays
	}
	return c
}

// LoadConfig loads the logging block of a YAML file and applies
// environment variable overrides. A missing or unreadable file yields defaults.
func LoadConfig(configPath string) (Config, error) {
	config := DefaultConfig()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err == nil && fc.Logging != nil {
				config = config.Merge(*fc.Logging)
			}
		}
	}

	return ApplyEnv(config), nil
}

// ApplyEnv applies FLOORPOP_LOG_* environment overrides to config.
func ApplyEnv(config Config) Config {
	if level := os.Getenv("FLOORPOP_LOG_LEVEL"); level != "" {
		config.Level = level
	}
	if format := os.Getenv("FLOORPOP_LOG_FORMAT"); format != "" {
		config.Format = format
	}
	if fileEnabled := os.Getenv("FLOORPOP_LOG_FILE_ENABLED"); fileEnabled != "" {
		if enabled, err := strconv.ParseBool(fileEnabled); err == nil {
			config.FileEnabled = enabled
		}
	}
	if filePath := os.Getenv("FLOORPOP_LOG_FILE_PATH"); filePath != "" {
		config.FilePath = filePath
	}
	return config
}
