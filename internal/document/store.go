package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Document is a local markdown file split into its front matter and body.
type Document struct {
	// Path is the file the document was loaded from.
	Path string

	// Matter is the parsed sync metadata block, never nil after Load.
	Matter *FrontMatter

	// Body is the markdown content after the front matter, preserved
	// byte-for-byte across load/save cycles.
	Body string

	mode fs.FileMode
}

// Load reads and parses a markdown document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, path)
	}

	mode := fs.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	fm, body, err := parseFrontMatter(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Document{
		Path:   path,
		Matter: fm,
		Body:   body,
		mode:   mode,
	}, nil
}

// Save rewrites the document with its current front matter and body.
// The write goes through a temporary file in the same directory followed
// by a rename, so a crash mid-write cannot leave a half-written document.
func (d *Document) Save() error {
	block, err := renderFrontMatter(d.Matter)
	if err != nil {
		return err
	}
	content := block + d.Body

	dir := filepath.Dir(d.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, d.mode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, d.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// BodyHash returns the digest of the document's current body.
func (d *Document) BodyHash() string {
	return Hash(d.Body)
}

// Hash returns the hex-encoded SHA-256 digest of s. This is the digest
// recorded as contentHash in front matter; changing the algorithm would
// invalidate every previously synchronized document.
func Hash(s string) string {
	return HashBytes([]byte(s))
}

// HashBytes returns the hex-encoded SHA-256 digest of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
