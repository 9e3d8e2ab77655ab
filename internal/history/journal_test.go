package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/kemari/confsync/internal/model"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := j.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return j
}

func result(file, pageID string, action model.Action, from, to int, err error) *model.SyncResult {
	res := model.NewSyncResult(file)
	res.PageID = pageID
	res.FromVersion = from
	res.ToVersion = to
	return res.Finish(action, err)
}

// TestOpen verifies creation semantics.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates directory and database", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "nested", "state")
		j, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer j.Close() //nolint:errcheck

		if _, err := j.Recent(context.Background(), 1); err != nil {
			t.Errorf("Recent() on fresh journal error = %v", err)
		}
	})

	t.Run("refuses to create when disabled", func(t *testing.T) {
		t.Parallel()
		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("Open() succeeded on a missing journal with creation disabled")
		}
	})
}

// TestRecordAndList verifies round-tripping entries through the journal.
func TestRecordAndList(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	seed := []*model.SyncResult{
		result("docs/a.md", "100", model.ActionPush, 5, 6, nil),
		result("docs/b.md", "101", model.ActionPull, 0, 7, nil),
		result("docs/a.md", "100", model.ActionNoOp, 6, 6, nil),
		result("docs/c.md", "", model.ActionConflict, 3, 9, errors.New("local and remote both changed")),
	}
	for _, res := range seed {
		if _, err := j.RecordSync(ctx, res); err != nil {
			t.Fatalf("RecordSync(%s) error = %v", res.File, err)
		}
	}

	t.Run("by file, most recent first", func(t *testing.T) {
		t.Parallel()
		entries, err := j.ListByFile(ctx, "docs/a.md", 0)
		if err != nil {
			t.Fatalf("ListByFile() error = %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("got %d entries, want 2", len(entries))
		}
		if entries[0].Action != "in-sync" || entries[1].Action != "push" {
			t.Errorf("order = [%s %s], want newest first", entries[0].Action, entries[1].Action)
		}
		if entries[1].FromVersion != 5 || entries[1].ToVersion != 6 {
			t.Errorf("versions = %d -> %d, want 5 -> 6", entries[1].FromVersion, entries[1].ToVersion)
		}
	})

	t.Run("by page", func(t *testing.T) {
		t.Parallel()
		entries, err := j.ListByPage(ctx, "101", 0)
		if err != nil {
			t.Fatalf("ListByPage() error = %v", err)
		}
		if len(entries) != 1 || entries[0].File != "docs/b.md" {
			t.Errorf("entries = %+v, want single docs/b.md row", entries)
		}
	})

	t.Run("recent honors the limit", func(t *testing.T) {
		t.Parallel()
		entries, err := j.Recent(ctx, 2)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("got %d entries, want 2", len(entries))
		}
		if entries[0].File != "docs/c.md" {
			t.Errorf("newest entry = %s, want docs/c.md", entries[0].File)
		}
	})

	t.Run("failure message survives", func(t *testing.T) {
		t.Parallel()
		entries, err := j.ListByFile(ctx, "docs/c.md", 1)
		if err != nil {
			t.Fatalf("ListByFile() error = %v", err)
		}
		if len(entries) != 1 || entries[0].Error != "local and remote both changed" {
			t.Errorf("entries = %+v, want recorded error message", entries)
		}
	})

	t.Run("timestamps are populated", func(t *testing.T) {
		t.Parallel()
		entries, err := j.Recent(ctx, 1)
		if err != nil {
			t.Fatalf("Recent() error = %v", err)
		}
		if entries[0].Timestamp.IsZero() {
			t.Error("Timestamp is zero, want the insertion time")
		}
		if time.Since(entries[0].Timestamp) > time.Hour {
			t.Errorf("Timestamp = %v, implausibly old", entries[0].Timestamp)
		}
	})
}

// TestRecordAll verifies a whole batch is journaled.
func TestRecordAll(t *testing.T) {
	t.Parallel()

	j := openTestJournal(t)
	ctx := context.Background()

	results := []*model.SyncResult{
		result("a.md", "1", model.ActionPush, 1, 2, nil),
		result("b.md", "2", model.ActionCreate, 0, 1, nil),
	}
	if err := j.RecordAll(ctx, results); err != nil {
		t.Fatalf("RecordAll() error = %v", err)
	}

	entries, err := j.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d entries, want 2", len(entries))
	}
}
