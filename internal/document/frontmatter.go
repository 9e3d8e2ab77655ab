package document

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Front matter field names. These are a persisted-state contract: external
// tools read these keys to decide whether a document has been synchronized,
// so they must not change casually.
const (
	keyPageID        = "pageId"
	keyTitle         = "title"
	keyLabels        = "labels"
	keySyncedVersion = "syncedVersion"
	keyContentHash   = "contentHash"
	keyImageHashes   = "imageHashes"
)

// frontMatterEnd matches the closing delimiter line of a front matter block.
var frontMatterEnd = regexp.MustCompile(`\n---[ \t]*\n`)

// FrontMatter is the sync metadata block embedded at the head of a
// local document.
//
// Invariants:
//   - PageID empty means the document is unlinked (never created remotely).
//   - SyncedVersion and ContentHash are written together after every
//     successful sync; one without the other is malformed metadata.
//     Remote versions start at 1, so a zero SyncedVersion means absent.
type FrontMatter struct {
	// PageID is the linked remote page identifier, or empty if unlinked.
	PageID string

	// Title is the page title as last synchronized.
	Title string

	// Labels is the label set applied to the remote page.
	Labels []string

	// SyncedVersion is the remote version at the last successful sync.
	SyncedVersion int

	// ContentHash is the digest of the body at the last successful sync.
	ContentHash string

	// ImageHashes maps local image file names to the digest recorded
	// when each image was last uploaded or downloaded.
	ImageHashes map[string]string

	// Extra holds operator-added front matter keys that confsync does not
	// recognize. They are preserved verbatim on rewrite so round-tripping
	// never silently drops them.
	Extra map[string]any
}

// Linked reports whether the document is linked to a remote page.
func (fm *FrontMatter) Linked() bool {
	return fm.PageID != ""
}

// Synced reports whether the document has completed at least one sync.
func (fm *FrontMatter) Synced() bool {
	return fm.SyncedVersion > 0 && fm.ContentHash != ""
}

// SetSyncPoint records a completed synchronization. Version and hash are
// always written together; this is the only way they are updated.
func (fm *FrontMatter) SetSyncPoint(version int, contentHash string) {
	fm.SyncedVersion = version
	fm.ContentHash = contentHash
}

// IsZero reports whether the front matter carries no data at all, in
// which case no metadata block is written.
func (fm *FrontMatter) IsZero() bool {
	return fm.PageID == "" && fm.Title == "" && len(fm.Labels) == 0 &&
		fm.SyncedVersion == 0 && fm.ContentHash == "" &&
		len(fm.ImageHashes) == 0 && len(fm.Extra) == 0
}

// parseFrontMatter splits content into its front matter block and body.
// Content without a front matter block yields an empty FrontMatter and
// the content unchanged. The body is returned exactly as found after the
// closing delimiter so rewrites preserve it byte-for-byte.
func parseFrontMatter(content string) (*FrontMatter, string, error) {
	fm := &FrontMatter{}
	// Only a first line of exactly --- opens a metadata block. A longer
	// dash run is a thematic break, and dashes followed by text are body.
	if !strings.HasPrefix(content, "---\n") {
		return fm, content, nil
	}

	loc := frontMatterEnd.FindStringIndex(content[3:])
	if loc == nil {
		// Opening delimiter without a closing one: treat the whole file
		// as body rather than guessing where metadata ends.
		return fm, content, nil
	}
	block := content[4 : loc[0]+3+1]
	body := content[loc[1]+3:]

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}

	for key, value := range raw {
		switch key {
		case keyPageID:
			fm.PageID = scalarString(value)
		case keyTitle:
			fm.Title = scalarString(value)
		case keyLabels:
			fm.Labels = stringList(value)
		case keySyncedVersion:
			v, ok := asInt(value)
			if !ok {
				return nil, "", fmt.Errorf("%w: %s is not an integer", ErrMalformedMetadata, keySyncedVersion)
			}
			fm.SyncedVersion = v
		case keyContentHash:
			fm.ContentHash = scalarString(value)
		case keyImageHashes:
			hashes, ok := stringMap(value)
			if !ok {
				return nil, "", fmt.Errorf("%w: %s is not a string mapping", ErrMalformedMetadata, keyImageHashes)
			}
			fm.ImageHashes = hashes
		default:
			if fm.Extra == nil {
				fm.Extra = make(map[string]any)
			}
			fm.Extra[key] = value
		}
	}

	// syncedVersion and contentHash are written atomically together; a
	// half-present pair means the block was edited by hand or corrupted.
	if (fm.SyncedVersion > 0) != (fm.ContentHash != "") {
		return nil, "", fmt.Errorf("%w: %s and %s must be present together",
			ErrMalformedMetadata, keySyncedVersion, keyContentHash)
	}

	return fm, body, nil
}

// renderFrontMatter serializes the front matter block, including the
// closing delimiter line. Known keys come first in a stable order, then
// preserved unrecognized keys sorted by name. Returns "" for zero matter.
func renderFrontMatter(fm *FrontMatter) (string, error) {
	if fm.IsZero() {
		return "", nil
	}

	root := &yaml.Node{Kind: yaml.MappingNode}

	appendKV := func(key string, value any, style yaml.Style) error {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		valNode := &yaml.Node{}
		if err := valNode.Encode(value); err != nil {
			return fmt.Errorf("encode front matter key %s: %w", key, err)
		}
		if style != 0 {
			valNode.Style = style
		}
		root.Content = append(root.Content, keyNode, valNode)
		return nil
	}

	if fm.PageID != "" {
		// Numeric page IDs are written as plain integers for readability.
		var id any = fm.PageID
		if n, err := strconv.Atoi(fm.PageID); err == nil {
			id = n
		}
		if err := appendKV(keyPageID, id, 0); err != nil {
			return "", err
		}
	}
	if fm.Title != "" {
		if err := appendKV(keyTitle, fm.Title, 0); err != nil {
			return "", err
		}
	}
	if len(fm.Labels) > 0 {
		if err := appendKV(keyLabels, fm.Labels, yaml.FlowStyle); err != nil {
			return "", err
		}
	}
	if fm.SyncedVersion > 0 {
		if err := appendKV(keySyncedVersion, fm.SyncedVersion, 0); err != nil {
			return "", err
		}
	}
	if fm.ContentHash != "" {
		if err := appendKV(keyContentHash, fm.ContentHash, 0); err != nil {
			return "", err
		}
	}
	if len(fm.ImageHashes) > 0 {
		if err := appendKV(keyImageHashes, fm.ImageHashes, 0); err != nil {
			return "", err
		}
	}

	extraKeys := make([]string, 0, len(fm.Extra))
	for key := range fm.Extra {
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		if err := appendKV(key, fm.Extra[key], 0); err != nil {
			return "", err
		}
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("marshal front matter: %w", err)
	}
	return "---\n" + string(out) + "---\n", nil
}

// scalarString renders a YAML scalar value as a string.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

// stringList coerces a YAML value into a list of strings. A single
// comma-separated string is accepted for hand-edited label lines.
func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(scalarString(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// stringMap coerces a YAML mapping into map[string]string.
func stringMap(v any) (map[string]string, bool) {
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(raw))
	for key, value := range raw {
		s, ok := value.(string)
		if !ok {
			return nil, false
		}
		out[key] = s
	}
	return out, true
}

// asInt coerces a YAML scalar into an int.
func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	default:
		return 0, false
	}
}
