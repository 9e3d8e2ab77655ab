package document

import (
	"errors"
	"strings"
	"testing"
)

// TestParseFrontMatter verifies metadata block detection and field parsing.
func TestParseFrontMatter(t *testing.T) {
	t.Parallel()

	t.Run("full block", func(t *testing.T) {
		t.Parallel()
		content := "---\n" +
			"pageId: 123456\n" +
			"title: Release Notes\n" +
			"labels: [api, docs]\n" +
			"syncedVersion: 5\n" +
			"contentHash: abc123\n" +
			"imageHashes:\n" +
			"    diagram.png: def456\n" +
			"---\n" +
			"# Release Notes\n"

		fm, body, err := parseFrontMatter(content)
		if err != nil {
			t.Fatalf("parseFrontMatter() error = %v", err)
		}
		if fm.PageID != "123456" {
			t.Errorf("PageID = %q, want %q", fm.PageID, "123456")
		}
		if fm.Title != "Release Notes" {
			t.Errorf("Title = %q, want %q", fm.Title, "Release Notes")
		}
		if len(fm.Labels) != 2 || fm.Labels[0] != "api" || fm.Labels[1] != "docs" {
			t.Errorf("Labels = %v, want [api docs]", fm.Labels)
		}
		if fm.SyncedVersion != 5 {
			t.Errorf("SyncedVersion = %d, want 5", fm.SyncedVersion)
		}
		if fm.ContentHash != "abc123" {
			t.Errorf("ContentHash = %q, want %q", fm.ContentHash, "abc123")
		}
		if fm.ImageHashes["diagram.png"] != "def456" {
			t.Errorf("ImageHashes = %v, want diagram.png entry", fm.ImageHashes)
		}
		if body != "# Release Notes\n" {
			t.Errorf("body = %q, want %q", body, "# Release Notes\n")
		}
	})

	t.Run("no front matter", func(t *testing.T) {
		t.Parallel()
		content := "# Just a heading\n\nSome text.\n"
		fm, body, err := parseFrontMatter(content)
		if err != nil {
			t.Fatalf("parseFrontMatter() error = %v", err)
		}
		if !fm.IsZero() {
			t.Errorf("expected zero front matter, got %+v", fm)
		}
		if body != content {
			t.Errorf("body = %q, want unchanged content", body)
		}
	})

	t.Run("unterminated block is body", func(t *testing.T) {
		t.Parallel()
		content := "---\npageId: 1\nno closing delimiter\n"
		fm, body, err := parseFrontMatter(content)
		if err != nil {
			t.Fatalf("parseFrontMatter() error = %v", err)
		}
		if !fm.IsZero() {
			t.Errorf("expected zero front matter, got %+v", fm)
		}
		if body != content {
			t.Errorf("body = %q, want unchanged content", body)
		}
	})

	t.Run("thematic break is body", func(t *testing.T) {
		t.Parallel()
		content := "----\n\nsection one\n\n---\nsection two\n"
		fm, body, err := parseFrontMatter(content)
		if err != nil {
			t.Fatalf("parseFrontMatter() error = %v", err)
		}
		if !fm.IsZero() {
			t.Errorf("expected zero front matter, got %+v", fm)
		}
		if body != content {
			t.Errorf("body = %q, want unchanged content", body)
		}
	})

	t.Run("dashes followed by text are body", func(t *testing.T) {
		t.Parallel()
		content := "--- draft notes\n\nsome text\n\n---\nmore text\n"
		fm, body, err := parseFrontMatter(content)
		if err != nil {
			t.Fatalf("parseFrontMatter() error = %v", err)
		}
		if !fm.IsZero() {
			t.Errorf("expected zero front matter, got %+v", fm)
		}
		if body != content {
			t.Errorf("body = %q, want unchanged content", body)
		}
	})

	t.Run("unrecognized keys preserved in Extra", func(t *testing.T) {
		t.Parallel()
		content := "---\npageId: 42\nauthor: alice\nreviewed: true\n---\nbody\n"
		fm, _, err := parseFrontMatter(content)
		if err != nil {
			t.Fatalf("parseFrontMatter() error = %v", err)
		}
		if fm.Extra["author"] != "alice" {
			t.Errorf("Extra[author] = %v, want alice", fm.Extra["author"])
		}
		if fm.Extra["reviewed"] != true {
			t.Errorf("Extra[reviewed] = %v, want true", fm.Extra["reviewed"])
		}
	})

	t.Run("labels as comma separated string", func(t *testing.T) {
		t.Parallel()
		content := "---\npageId: 1\nlabels: api, docs\n---\nbody\n"
		fm, _, err := parseFrontMatter(content)
		if err != nil {
			t.Fatalf("parseFrontMatter() error = %v", err)
		}
		if len(fm.Labels) != 2 || fm.Labels[0] != "api" || fm.Labels[1] != "docs" {
			t.Errorf("Labels = %v, want [api docs]", fm.Labels)
		}
	})

	t.Run("invalid yaml is malformed", func(t *testing.T) {
		t.Parallel()
		content := "---\npageId: [unclosed\n---\nbody\n"
		_, _, err := parseFrontMatter(content)
		if !errors.Is(err, ErrMalformedMetadata) {
			t.Errorf("error = %v, want ErrMalformedMetadata", err)
		}
	})

	t.Run("syncedVersion without contentHash is malformed", func(t *testing.T) {
		t.Parallel()
		content := "---\npageId: 1\nsyncedVersion: 3\n---\nbody\n"
		_, _, err := parseFrontMatter(content)
		if !errors.Is(err, ErrMalformedMetadata) {
			t.Errorf("error = %v, want ErrMalformedMetadata", err)
		}
	})

	t.Run("contentHash without syncedVersion is malformed", func(t *testing.T) {
		t.Parallel()
		content := "---\npageId: 1\ncontentHash: abc\n---\nbody\n"
		_, _, err := parseFrontMatter(content)
		if !errors.Is(err, ErrMalformedMetadata) {
			t.Errorf("error = %v, want ErrMalformedMetadata", err)
		}
	})
}

// TestRenderFrontMatter verifies serialization order and round-trip fidelity.
func TestRenderFrontMatter(t *testing.T) {
	t.Parallel()

	t.Run("zero matter renders nothing", func(t *testing.T) {
		t.Parallel()
		out, err := renderFrontMatter(&FrontMatter{})
		if err != nil {
			t.Fatalf("renderFrontMatter() error = %v", err)
		}
		if out != "" {
			t.Errorf("renderFrontMatter() = %q, want empty", out)
		}
	})

	t.Run("known keys in stable order", func(t *testing.T) {
		t.Parallel()
		fm := &FrontMatter{
			PageID:        "123",
			Title:         "Doc",
			Labels:        []string{"api", "docs"},
			SyncedVersion: 2,
			ContentHash:   "abc",
			ImageHashes:   map[string]string{"a.png": "h1"},
			Extra:         map[string]any{"author": "alice"},
		}
		out, err := renderFrontMatter(fm)
		if err != nil {
			t.Fatalf("renderFrontMatter() error = %v", err)
		}

		order := []string{"pageId", "title", "labels", "syncedVersion", "contentHash", "imageHashes", "author"}
		last := -1
		for _, key := range order {
			idx := strings.Index(out, key)
			if idx < 0 {
				t.Fatalf("output missing key %q:\n%s", key, out)
			}
			if idx < last {
				t.Errorf("key %q out of order:\n%s", key, out)
			}
			last = idx
		}
		if !strings.Contains(out, "[api, docs]") {
			t.Errorf("labels not in flow style:\n%s", out)
		}
		if !strings.HasPrefix(out, "---\n") || !strings.HasSuffix(out, "---\n") {
			t.Errorf("output not delimited:\n%s", out)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		fm := &FrontMatter{
			PageID:        "98765",
			Title:         "Getting Started",
			Labels:        []string{"guide"},
			SyncedVersion: 7,
			ContentHash:   Hash("body"),
			ImageHashes:   map[string]string{"shot.png": Hash("img")},
			Extra:         map[string]any{"owner": "platform-team"},
		}
		out, err := renderFrontMatter(fm)
		if err != nil {
			t.Fatalf("renderFrontMatter() error = %v", err)
		}

		got, body, err := parseFrontMatter(out + "body\n")
		if err != nil {
			t.Fatalf("parseFrontMatter() error = %v", err)
		}
		if body != "body\n" {
			t.Errorf("body = %q, want %q", body, "body\n")
		}
		if got.PageID != fm.PageID || got.Title != fm.Title ||
			got.SyncedVersion != fm.SyncedVersion || got.ContentHash != fm.ContentHash {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, fm)
		}
		if got.ImageHashes["shot.png"] != fm.ImageHashes["shot.png"] {
			t.Errorf("ImageHashes round trip mismatch: %v", got.ImageHashes)
		}
		if got.Extra["owner"] != "platform-team" {
			t.Errorf("Extra round trip mismatch: %v", got.Extra)
		}
	})
}
