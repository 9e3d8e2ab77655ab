package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kemari/confsync/internal/model"
)

// Journal provides SQLite-based storage for sync run history.
//
// Design decision: We use a single database file for all documents
// rather than per-document state files. Cross-document queries ("what
// did the last batch do") stay cheap, and there is one file to back up.
type Journal struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Journal behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default journal options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Journal at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dir string, opts Options) (*Journal, error) {
	dbPath := filepath.Join(dir, "confsync.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("journal not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check journal path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := j.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// createTables creates the journal schema if it doesn't exist.
func (j *Journal) createTables() error {
	schema := `
	-- One row per document per put run
	CREATE TABLE IF NOT EXISTS syncs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file TEXT NOT NULL,
		page_id TEXT,
		action TEXT NOT NULL,
		from_version INTEGER,
		to_version INTEGER,
		error TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_syncs_file ON syncs(file);
	CREATE INDEX IF NOT EXISTS idx_syncs_page ON syncs(page_id);
	CREATE INDEX IF NOT EXISTS idx_syncs_timestamp ON syncs(timestamp);
	`

	_, err := j.db.ExecContext(context.Background(), schema)
	return err
}

// Entry is one recorded sync outcome.
type Entry struct {
	// ID is the unique identifier of the entry in the journal.
	ID int64

	// File is the local document path as it was given on the command line.
	File string

	// PageID is the remote page the document was linked to, if any.
	PageID string

	// Action is the recorded action name ("push", "pull", "create", ...).
	Action string

	// FromVersion is the remote version before the run.
	FromVersion int

	// ToVersion is the remote version after the run.
	ToVersion int

	// Error is the failure message, empty on success.
	Error string

	// Timestamp is when the outcome was recorded.
	Timestamp time.Time
}

// RecordSync appends one result to the journal.
func (j *Journal) RecordSync(ctx context.Context, res *model.SyncResult) (int64, error) {
	if res == nil {
		return 0, errors.New("nil result")
	}

	query := `
	INSERT INTO syncs (file, page_id, action, from_version, to_version, error)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := j.db.ExecContext(ctx, query,
		res.File,
		res.PageID,
		res.Action.String(),
		res.FromVersion,
		res.ToVersion,
		res.ErrorMessage,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record sync: %w", err)
	}

	return result.LastInsertId()
}

// RecordAll appends every result of a batch. Recording continues past
// individual failures so one bad row cannot lose the rest of the run.
func (j *Journal) RecordAll(ctx context.Context, results []*model.SyncResult) error {
	var firstErr error
	for _, res := range results {
		if _, err := j.RecordSync(ctx, res); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ListByFile retrieves entries for one document, most recent first.
// limit <= 0 means no limit.
func (j *Journal) ListByFile(ctx context.Context, file string, limit int) ([]Entry, error) {
	return j.list(ctx, "file = ?", file, limit)
}

// ListByPage retrieves entries for one remote page, most recent first.
// limit <= 0 means no limit.
func (j *Journal) ListByPage(ctx context.Context, pageID string, limit int) ([]Entry, error) {
	return j.list(ctx, "page_id = ?", pageID, limit)
}

// Recent retrieves the latest entries across all documents.
// limit <= 0 means no limit.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return j.list(ctx, "", nil, limit)
}

func (j *Journal) list(ctx context.Context, where string, arg any, limit int) ([]Entry, error) {
	query := `
	SELECT id, file, page_id, action, from_version, to_version, error, timestamp
	FROM syncs
	`
	args := make([]any, 0, 2)
	if where != "" {
		query += " WHERE " + where
		args = append(args, arg)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var pageID, errMsg sql.NullString
		var timestamp string

		if err := rows.Scan(&e.ID, &e.File, &pageID, &e.Action, &e.FromVersion, &e.ToVersion, &errMsg, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.PageID = pageID.String
		e.Error = errMsg.String
		e.Timestamp = parseTimestamp(timestamp)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
