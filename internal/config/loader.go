package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".linkgate"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the on-disk YAML configuration. All fields are
// optional; zero values mean "keep the current setting".
type File struct {
	// APIBaseURL overrides the scoring service address.
	APIBaseURL string `yaml:"api_base_url"`

	// TimeoutSeconds overrides the scoring request timeout.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// StaggerIntervalMillis overrides the initial scan pacing.
	StaggerIntervalMillis int `yaml:"stagger_interval_ms"`

	// MaxBodySize overrides the fetched page size limit, in bytes.
	MaxBodySize int64 `yaml:"max_body_size"`

	// UserAgent overrides the outbound User-Agent header.
	UserAgent string `yaml:"user_agent"`

	// LogFile enables rotated file logging.
	LogFile string `yaml:"log_file"`

	// StatsDir overrides the persistent stats directory.
	StatsDir string `yaml:"stats_dir"`

	// MetricsAddr exposes Prometheus metrics on the given address.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Apply merges the file's non-zero settings into cfg. CLI flags are
// expected to be applied after this, so flags win over the file.
func (f *File) Apply(cfg *Config) {
	if f.APIBaseURL != "" {
		cfg.APIBaseURL = f.APIBaseURL
	}
	if f.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(f.TimeoutSeconds) * time.Second
	}
	if f.StaggerIntervalMillis > 0 {
		cfg.StaggerInterval = time.Duration(f.StaggerIntervalMillis) * time.Millisecond
	}
	if f.MaxBodySize > 0 {
		cfg.MaxBodySize = f.MaxBodySize
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}
	if f.LogFile != "" {
		cfg.LogFilePath = f.LogFile
	}
	if f.StatsDir != "" {
		cfg.StatsDir = f.StatsDir
	}
	if f.MetricsAddr != "" {
		cfg.MetricsAddr = f.MetricsAddr
	}
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .linkgate in the current directory
// 3. Look for .linkgate in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	// If explicit path is provided, use it
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	// Check current directory
	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	// Check home directory
	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
