package wiki

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the remote store has no page or
// attachment matching the request. Callers use errors.Is to tell a
// dangling link apart from transport failures.
var ErrNotFound = errors.New("not found in remote store")

// VersionConflictError is returned when an update named a version that
// is no longer current, meaning someone else changed the page since it
// was last fetched. The update did not happen.
type VersionConflictError struct {
	// PageID is the page whose update was rejected.
	PageID string

	// ExpectedVersion is the version the update was based on.
	ExpectedVersion int
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("page %s changed remotely: update based on version %d was rejected",
		e.PageID, e.ExpectedVersion)
}

// APIError is returned for remote responses that do not map to a more
// specific error. The message is taken from the response body when the
// server provides one.
type APIError struct {
	// StatusCode is the HTTP status of the failed request.
	StatusCode int

	// Method and Path identify the failed request.
	Method string
	Path   string

	// Message is the server-provided error detail, possibly empty.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("remote API %s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote API %s %s: %d", e.Method, e.Path, e.StatusCode)
}
