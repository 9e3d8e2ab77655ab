package model

import "regexp"

// RemotePage represents a wiki page as fetched from the remote store.
// The body is in the remote storage format, not markdown; conversion is
// handled by the mdconv package.
type RemotePage struct {
	// ID is the remote page identifier.
	ID string `json:"id"`

	// Version is the remote revision counter. It starts at 1 and increases
	// by one on every update.
	Version int `json:"version"`

	// Title is the page title.
	Title string `json:"title"`

	// Body is the page body in storage format.
	Body string `json:"body"`

	// Labels are the label names attached to the page.
	Labels []string `json:"labels,omitempty"`

	// ParentID is the direct ancestor page ID, or empty for a top-level page.
	ParentID string `json:"parentId,omitempty"`

	// SpaceKey identifies the space the page lives in.
	SpaceKey string `json:"spaceKey,omitempty"`
}

// RemoteAttachment represents a file attached to a remote page.
type RemoteAttachment struct {
	// ID is the attachment identifier, used for overwriting uploads.
	ID string `json:"id"`

	// Filename is the attachment title (the file name on the remote side).
	Filename string `json:"filename"`

	// DownloadPath is the server-relative download link reported by the API.
	DownloadPath string `json:"downloadPath,omitempty"`
}

// ImageReference is a local image embedded in a markdown body via
// an image link. Path is relative to the document's directory.
type ImageReference struct {
	// Alt is the alternative text of the image link.
	Alt string `json:"alt"`

	// Path is the image path exactly as written in the markdown source.
	Path string `json:"path"`
}

// Patterns for extracting a page ID from wiki URLs:
//
//	https://site.example.net/wiki/spaces/SPACE/pages/123456/Title
//	https://site.example.net/wiki/pages/viewpage.action?pageId=123456
var (
	pageIDDigits  = regexp.MustCompile(`^\d+$`)
	pageIDInPath  = regexp.MustCompile(`/pages/(\d+)`)
	pageIDInQuery = regexp.MustCompile(`pageId=(\d+)`)
)

// ParsePageRef extracts a page ID from a bare ID or a wiki URL.
// Unrecognized references are returned unchanged so the remote store can
// reject them with a proper not-found error.
func ParsePageRef(ref string) string {
	if pageIDDigits.MatchString(ref) {
		return ref
	}
	if m := pageIDInPath.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	if m := pageIDInQuery.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	return ref
}
