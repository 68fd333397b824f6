// Package config holds the runtime configuration for LinkGate. The
// Config struct is populated from CLI flags and an optional YAML file
// and passed through the application by dependency injection; there is
// no global configuration state.
package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultAPIBaseURL is the local scoring service address. The
	// backend binds port 8000 by default.
	DefaultAPIBaseURL = "http://127.0.0.1:8000"

	// DefaultTimeout is the transport timeout for scoring requests.
	// The engine itself imposes no timeout beyond this: a hung request
	// leaves its link in flight, which classifies as ALLOW.
	DefaultTimeout = 30 * time.Second

	// DefaultStaggerInterval is the per-index delay of the initial
	// scan. 100ms caps the burst rate at roughly ten requests per
	// second regardless of how many links the page carries.
	DefaultStaggerInterval = 100 * time.Millisecond

	// DefaultMaxBodySize limits how much of a fetched page is read.
	// 5MB covers any realistic HTML document.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent identifies LinkGate in HTTP requests.
	DefaultUserAgent = "LinkGate/1.0 (+https://github.com/linkgate/linkgate)"

	// AppName is the application name used for XDG directory paths.
	AppName = "linkgate"
)

// Config holds all runtime options.
//
// Design decision: We use a single flat struct instead of nested
// sub-structs. The number of options is manageable, and nesting would
// add complexity without benefit.
type Config struct {
	// APIBaseURL is the scoring service root.
	APIBaseURL string

	// Timeout is the transport timeout for each scoring request.
	Timeout time.Duration

	// StaggerInterval is the initial scan's per-index dispatch delay.
	StaggerInterval time.Duration

	// MaxBodySize limits the size of fetched page bodies.
	MaxBodySize int64

	// UserAgent is sent with every outbound request.
	UserAgent string

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// JSONReport selects JSON report output. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output.
	MarkdownReport bool

	// OutputPath writes the report to a file instead of stdout.
	OutputPath string

	// ConfigFilePath is an explicit configuration file path. Empty
	// means search the standard locations.
	ConfigFilePath string

	// LogFilePath enables rotated file logging when non-empty.
	LogFilePath string

	// StatsDir is the directory of the persistent stats snapshot.
	// Empty means the XDG data directory.
	StatsDir string

	// MetricsAddr exposes Prometheus metrics when non-empty, e.g.
	// "127.0.0.1:9091".
	MetricsAddr string
}

// Default returns a Config populated with the default values.
func Default() *Config {
	return &Config{
		APIBaseURL:      DefaultAPIBaseURL,
		Timeout:         DefaultTimeout,
		StaggerInterval: DefaultStaggerInterval,
		MaxBodySize:     DefaultMaxBodySize,
		UserAgent:       DefaultUserAgent,
	}
}

// Validate checks the configuration for contradictions and invalid
// values. It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return ErrNoAPIBaseURL
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.StaggerInterval < 0 {
		return ErrInvalidStaggerInterval
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// DataDir returns the directory for persistent state (the stats
// snapshot database). StatsDir wins when set; otherwise the XDG data
// home is used.
func (c *Config) DataDir() string {
	if c.StatsDir != "" {
		return c.StatsDir
	}
	return filepath.Join(xdg.DataHome, AppName)
}
