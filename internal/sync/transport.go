package sync

import (
	"context"

	"github.com/kemari/confsync/internal/model"
)

// Transport is the remote store contract the engine depends on. The
// wiki.Client satisfies it; tests substitute an in-memory fake.
//
// Design decision: The engine consumes an interface rather than the
// concrete client because every sync decision is driven by remote
// state, and exercising the drift table requires scripting that state
// precisely. An httptest server could do it, but a fake transport keeps
// the scenarios readable.
type Transport interface {
	// FetchPage retrieves a page with body, version, parent, and space.
	FetchPage(ctx context.Context, pageID string) (*model.RemotePage, error)

	// CreatePage creates a page. An empty parentID means top level.
	CreatePage(ctx context.Context, title, parentID, body string, labels []string) (*model.RemotePage, error)

	// UpdatePage replaces title and body, conditioned on expectedVersion
	// still being current.
	UpdatePage(ctx context.Context, pageID string, expectedVersion int, title, body string) (*model.RemotePage, error)

	// GetLabels returns the page's labels.
	GetLabels(ctx context.Context, pageID string) ([]string, error)

	// SetLabels reconciles the page's labels to the desired set.
	SetLabels(ctx context.Context, pageID string, labels []string) error

	// Attachments lists the page's attachments.
	Attachments(ctx context.Context, pageID string) ([]model.RemoteAttachment, error)

	// UploadAttachment stores data under filename, overwriting an
	// existing attachment of the same name.
	UploadAttachment(ctx context.Context, pageID, filename string, data []byte) error

	// DownloadAttachment fetches the named attachment's content.
	DownloadAttachment(ctx context.Context, pageID, filename string) ([]byte, error)
}
