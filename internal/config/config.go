package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout is the per-request timeout for wiki API calls.
	// Cloud wiki instances occasionally take several seconds on page
	// updates with large bodies; 30 seconds is generous without hanging
	// a batch forever on a dead connection.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries for transient API
	// failures (network errors, 429, 5xx).
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base delay before the first retry.
	// Subsequent retries back off exponentially from this value.
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultBatchSize is the number of documents synced concurrently.
	// Cloud wiki APIs rate-limit aggressively; 4 keeps a typical batch
	// fast without tripping 429 responses.
	DefaultBatchSize = 4

	// DefaultImageDir is the directory, relative to each document, where
	// pulled images are stored.
	DefaultImageDir = "images"

	// AppName is the application name used for XDG directory paths.
	AppName = "confsync"
)

// Config holds all configuration options for confsync.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ConnectionConfig, SyncConfig) for simplicity. The number of
// options is manageable, and nesting would add complexity without
// significant benefit.
type Config struct {
	// Server is the wiki base URL, e.g. https://example.atlassian.net.
	// The REST API path is appended by the client.
	Server string

	// Email is the account email used for basic authentication.
	Email string

	// APIToken is the API token paired with Email. Never logged.
	APIToken string

	// Space is the space key for pages created without a resolvable
	// parent. Optional: pages created under a parent inherit its space.
	Space string

	// Timeout is the per-request timeout for wiki API calls.
	Timeout time.Duration

	// MaxRetries is the number of retries for transient API failures.
	MaxRetries int

	// RetryDelay is the base backoff delay between retries.
	RetryDelay time.Duration

	// BatchSize is the number of documents synced concurrently.
	BatchSize int

	// ImageDir is the directory, relative to each document, where pulled
	// images are written.
	ImageDir string

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .confsync in the current directory, the home
	// directory, and the XDG config directory.
	ConfigFilePath string

	// Files is the list of markdown files, directories, and glob
	// patterns to synchronize.
	Files []string

	// Create allows unlinked documents to create new remote pages.
	Create bool

	// Parent is the parent page for created pages: a page ID or URL.
	// Empty means infer from linked siblings, or create at top level.
	Parent string

	// Force overwrites the remote page on conflict and pushes even when
	// the document looks clean.
	Force bool

	// Pull replaces local content with the remote page.
	Pull bool

	// Status reports each document's drift classification without syncing.
	Status bool

	// Diff renders local content against remote without syncing.
	Diff bool

	// PageOverride syncs against an explicit page ID or URL instead of
	// the document's front matter. Single file only.
	PageOverride string

	// TitleOverride renames the remote page on push or create.
	// Single file only.
	TitleOverride string

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When set, the
	// report is written to this file in addition to stdout.
	ReportFile string

	// HistoryDir is the directory for the sync journal database.
	// When empty, the XDG data directory is used. Set NoHistory to skip
	// journaling entirely.
	HistoryDir string

	// NoHistory disables journaling of sync outcomes.
	NoHistory bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, batch
// size). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		BatchSize:  DefaultBatchSize,
		ImageDir:   DefaultImageDir,
	}
}

// XDGDataDir returns the XDG data directory for confsync.
// On Linux: ~/.local/share/confsync
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for confsync.
// On Linux: ~/.config/confsync
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any syncing begins.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Files) == 0 {
		return ErrNoFiles
	}

	if !strings.HasPrefix(c.Server, "http://") && !strings.HasPrefix(c.Server, "https://") {
		return ErrNoServer
	}

	if c.Email == "" || c.APIToken == "" {
		return ErrNoCredentials
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// Force resolves conflicts toward local, Pull toward remote; both at
	// once is contradictory. Status and Diff are inspection-only and may
	// combine with neither.
	if c.Force && c.Pull {
		return ErrConflictingModes
	}
	if (c.Status || c.Diff) && (c.Force || c.Pull) {
		return ErrConflictingModes
	}

	if (c.PageOverride != "" || c.TitleOverride != "") && len(c.Files) > 1 {
		return ErrOverrideNeedsSingleFile
	}

	return nil
}
