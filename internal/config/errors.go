package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoFiles is returned when no markdown files are given on the
	// command line.
	ErrNoFiles = errors.New("no files specified: provide markdown files, directories, or glob patterns")

	// ErrNoServer is returned when the wiki server URL is missing or not
	// an http(s) URL.
	ErrNoServer = errors.New("no server specified: set server in the config file, CONFSYNC_SERVER, or --server (must be an http(s) URL)")

	// ErrNoCredentials is returned when the account email or API token
	// is missing. Both are required for basic authentication.
	ErrNoCredentials = errors.New("missing credentials: set email and api_token in the config file or CONFSYNC_EMAIL / CONFSYNC_API_TOKEN")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingModes is returned when mutually exclusive sync modes
	// are combined, such as --force with --pull.
	ErrConflictingModes = errors.New("conflicting modes: --force and --pull cannot be used together")

	// ErrOverrideNeedsSingleFile is returned when --page or --title is
	// combined with more than one file. Both overrides bind to exactly
	// one document.
	ErrOverrideNeedsSingleFile = errors.New("--page and --title apply to a single file only")
)
