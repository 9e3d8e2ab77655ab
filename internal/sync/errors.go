package sync

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotLinked is returned for documents without a pageId when creation
// was not requested. Nothing is mutated.
var ErrNotLinked = errors.New("document has no pageId in front matter (use --create to create a page)")

// ConflictError reports that a document and its remote page both
// changed since the last synchronization point. The sync did not
// happen; the operator resolves it with --force, --pull, or by hand.
type ConflictError struct {
	// File is the local document.
	File string

	// LocalChanged records that the local body or images drifted.
	LocalChanged bool

	// RemoteFrom is the version at the last sync; RemoteTo is the
	// version the remote page is at now.
	RemoteFrom int
	RemoteTo   int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: local and remote both changed (remote version %d -> %d); use --diff to inspect, --force to overwrite remote, or --pull to discard local changes",
		e.File, e.RemoteFrom, e.RemoteTo)
}

// ParentMismatchError reports that documents in a creation batch
// disagree on their parent page, so no page was created. An empty
// parent ID in the list means a sibling sits at the top level.
type ParentMismatchError struct {
	// Parents are the distinct parent page IDs observed.
	Parents []string
}

func (e *ParentMismatchError) Error() string {
	parents := make([]string, len(e.Parents))
	for i, p := range e.Parents {
		if p == "" {
			p = "(top level)"
		}
		parents[i] = p
	}
	return fmt.Sprintf("linked documents have different parents (%s); use --parent to choose one",
		strings.Join(parents, ", "))
}

// AssetSyncError reports a failed image upload or download. The
// document's front matter is left untouched so a re-run retries the
// asset cleanly.
type AssetSyncError struct {
	// Name is the image file name.
	Name string

	// Op is "upload" or "download".
	Op string

	Err error
}

func (e *AssetSyncError) Error() string {
	return fmt.Sprintf("%s of image %s failed: %v", e.Op, e.Name, e.Err)
}

func (e *AssetSyncError) Unwrap() error {
	return e.Err
}

// CreateError reports a failed page creation. The document remains
// unlinked.
type CreateError struct {
	// Title is the title the page would have had.
	Title string

	Err error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create page %q: %v", e.Title, e.Err)
}

func (e *CreateError) Unwrap() error {
	return e.Err
}
