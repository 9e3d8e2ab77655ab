package document

import "errors"

// Metadata errors returned by Load.
//
// Design decision: We use package-level sentinel errors so callers can
// use errors.Is() for programmatic handling while still getting
// human-readable messages. File-specific context is added by wrapping.
var (
	// ErrMalformedMetadata is returned when the embedded metadata block
	// exists but cannot be parsed as YAML, or when syncedVersion and
	// contentHash are inconsistently half-present. The two fields are
	// written atomically together, so one without the other means the
	// block was edited by hand or corrupted.
	ErrMalformedMetadata = errors.New("malformed sync metadata in front matter")

	// ErrEmptyDocument is returned when the document file has no content.
	ErrEmptyDocument = errors.New("document is empty")
)
