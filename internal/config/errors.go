package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). Callers can use
// errors.Is() for programmatic handling while the messages stay
// human-readable.
var (
	// ErrNoAPIBaseURL is returned when the scoring service address is
	// empty. Every operation needs the service.
	ErrNoAPIBaseURL = errors.New("no scoring service address: set --api or api_base_url in the config file")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidStaggerInterval is returned when the stagger interval
	// is negative. Zero is valid and disables pacing.
	ErrInvalidStaggerInterval = errors.New("invalid stagger interval: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Zero means use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrNoTarget is returned when a command that needs a target URL
	// or file receives none.
	ErrNoTarget = errors.New("no target specified: provide a page URL or file path")
)
