package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PMCCONFIG_"

// DefaultEnvFile is the dotenv file read when PMCCONFIG_ENV_FILE is unset.
const DefaultEnvFile = ".env"

// Config is the root configuration structure for pmcconfig.
// All configuration is optional; every field has a default.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Backup  BackupConfig  `yaml:"backup"`
	Display DisplayConfig `yaml:"display"`
	Journal JournalConfig `yaml:"journal"`

	// envErrs collects environment overrides that could not be parsed.
	envErrs []string
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string            `yaml:"level"`
	Format string            `yaml:"format"`
	Output string            `yaml:"output"`
	File   FileLoggingConfig `yaml:"file"`
}

// FileLoggingConfig contains file-based logging settings.
// Logs are written to a rotating file when Path is set.
type FileLoggingConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"max_size"`    // megabytes
	MaxBackups int    `yaml:"max_backups"` // files
	MaxAge     int    `yaml:"max_age"`     // days
	Compress   bool   `yaml:"compress"`
}

// BackupConfig controls the backup taken before a PMC file is overwritten.
type BackupConfig struct {
	Enabled bool   `yaml:"enabled"`
	Suffix  string `yaml:"suffix"`
}

// DisplayConfig controls operator output.
type DisplayConfig struct {
	// RealColumn is the column at which real values are aligned.
	RealColumn int `yaml:"real_column"`

	// Trace prints conversion calculations for get and set.
	Trace bool `yaml:"trace"`
}

// JournalConfig contains the change journal database settings.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"` // seconds
}

// Load builds the configuration.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values, when path is not empty
//  3. Dotenv file (PMCCONFIG_ENV_FILE, default ".env"), if it exists
//  4. Environment variables (override file values)
//
// Environment variables follow the pattern: PMCCONFIG_SECTION_KEY
// For example: PMCCONFIG_LOG_LEVEL, PMCCONFIG_JOURNAL_PATH
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := loadEnvFile(); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
			File: FileLoggingConfig{
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     28,
			},
		},
		Backup: BackupConfig{
			Enabled: true,
			Suffix:  ".backup",
		},
		Display: DisplayConfig{
			RealColumn: 32,
			Trace:      true,
		},
		Journal: JournalConfig{
			Enabled:     false,
			Path:        "./pmcconfig-journal.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
	}
}

// loadEnvFile loads the dotenv file into the process environment.
// Variables already set are not overwritten. A missing file is not an error.
func loadEnvFile() error {
	path := os.Getenv(EnvPrefix + "ENV_FILE")
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Logging
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_OUTPUT"); v != "" {
		cfg.Logging.Output = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		cfg.Logging.File.Path = v
	}

	// Backup
	cfg.envBool("BACKUP_ENABLED", &cfg.Backup.Enabled)
	if v := os.Getenv(EnvPrefix + "BACKUP_SUFFIX"); v != "" {
		cfg.Backup.Suffix = v
	}

	// Display
	cfg.envInt("DISPLAY_REAL_COLUMN", &cfg.Display.RealColumn)
	cfg.envBool("DISPLAY_TRACE", &cfg.Display.Trace)

	// Journal
	cfg.envBool("JOURNAL_ENABLED", &cfg.Journal.Enabled)
	if v := os.Getenv(EnvPrefix + "JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}
}

func (c *Config) envBool(key string, dst *bool) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		c.envErrs = append(c.envErrs, fmt.Sprintf("%s%s must be a boolean, got %q", EnvPrefix, key, v))
		return
	}
	*dst = b
}

func (c *Config) envInt(key string, dst *int) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		c.envErrs = append(c.envErrs, fmt.Sprintf("%s%s must be an integer, got %q", EnvPrefix, key, v))
		return
	}
	*dst = n
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	errs := append([]string(nil), c.envErrs...)

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, "logging.level must be debug, info, warn, or error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, "logging.format must be text or json")
	}
	switch c.Logging.Output {
	case "stdout", "stderr":
	default:
		errs = append(errs, "logging.output must be stdout or stderr")
	}
	if c.Logging.File.MaxSize < 0 || c.Logging.File.MaxBackups < 0 || c.Logging.File.MaxAge < 0 {
		errs = append(errs, "logging.file limits must not be negative")
	}

	if c.Backup.Enabled && c.Backup.Suffix == "" {
		errs = append(errs, "backup.suffix is required when backups are enabled")
	}

	const maxRealColumn = 200
	if c.Display.RealColumn < 1 || c.Display.RealColumn > maxRealColumn {
		errs = append(errs, "display.real_column must be between 1 and 200")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when the journal is enabled")
	}
	if c.Journal.BusyTimeout < 0 {
		errs = append(errs, "journal.busy_timeout must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetBusyTimeout returns the journal busy timeout as a Duration.
func (c *Config) GetBusyTimeout() time.Duration {
	return time.Duration(c.Journal.BusyTimeout) * time.Second
}
