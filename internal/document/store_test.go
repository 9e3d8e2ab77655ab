package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLoad verifies document loading and error cases.
func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("linked document", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "page.md")
		content := "---\npageId: 555\n---\n# Title\n\ntext\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		doc, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if doc.Matter.PageID != "555" {
			t.Errorf("PageID = %q, want %q", doc.Matter.PageID, "555")
		}
		if doc.Body != "# Title\n\ntext\n" {
			t.Errorf("Body = %q", doc.Body)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "nope.md"))
		if err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "empty.md")
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if !errors.Is(err, ErrEmptyDocument) {
			t.Errorf("error = %v, want ErrEmptyDocument", err)
		}
	})

	t.Run("malformed metadata names the file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.md")
		content := "---\nsyncedVersion: 2\n---\nbody\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if !errors.Is(err, ErrMalformedMetadata) {
			t.Fatalf("error = %v, want ErrMalformedMetadata", err)
		}
		if !strings.Contains(err.Error(), "bad.md") {
			t.Errorf("error %q does not name the file", err)
		}
	})
}

// TestSave verifies the rewrite cycle preserves the body and updates
// only the metadata block.
func TestSave(t *testing.T) {
	t.Parallel()

	t.Run("metadata updated, body untouched", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "page.md")
		body := "# Title\n\nodd  spacing\tand trailing space \n"
		content := "---\npageId: 777\n---\n" + body
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		doc, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		doc.Matter.SetSyncPoint(3, Hash(body))
		if err := doc.Save(); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		reloaded, err := Load(path)
		if err != nil {
			t.Fatalf("Load() after Save error = %v", err)
		}
		if reloaded.Body != body {
			t.Errorf("Body = %q, want byte-identical original", reloaded.Body)
		}
		if reloaded.Matter.SyncedVersion != 3 {
			t.Errorf("SyncedVersion = %d, want 3", reloaded.Matter.SyncedVersion)
		}
		if reloaded.Matter.ContentHash != Hash(body) {
			t.Errorf("ContentHash not persisted")
		}
	})

	t.Run("no stray temp files left behind", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := filepath.Join(dir, "page.md")
		if err := os.WriteFile(path, []byte("---\npageId: 1\n---\nx\n"), 0644); err != nil {
			t.Fatal(err)
		}

		doc, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if err := doc.Save(); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 || entries[0].Name() != "page.md" {
			names := make([]string, 0, len(entries))
			for _, e := range entries {
				names = append(names, e.Name())
			}
			t.Errorf("directory contents = %v, want only page.md", names)
		}
	})

	t.Run("file mode preserved", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "page.md")
		if err := os.WriteFile(path, []byte("---\npageId: 1\n---\nx\n"), 0600); err != nil {
			t.Fatal(err)
		}

		doc, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if err := doc.Save(); err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("mode = %v, want 0600", info.Mode().Perm())
		}
	})
}

// TestHash verifies digest stability and format.
func TestHash(t *testing.T) {
	t.Parallel()

	if Hash("a") == Hash("b") {
		t.Error("distinct inputs produced equal digests")
	}
	if Hash("a") != Hash("a") {
		t.Error("digest not deterministic")
	}
	if len(Hash("")) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(Hash("")))
	}
	if Hash("x") != HashBytes([]byte("x")) {
		t.Error("Hash and HashBytes disagree")
	}
}
