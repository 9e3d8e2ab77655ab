package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kemari/confsync/internal/document"
	"github.com/kemari/confsync/internal/model"
)

// Plan is the resolved worklist for one put run: which documents are
// already linked, which need creation, and the parent any created pages
// will hang under.
type Plan struct {
	// Linked documents carry a pageId and go through drift
	// classification.
	Linked []string

	// Unlinked documents have no pageId. They are created when
	// requested and reported as unlinked otherwise.
	Unlinked []string

	// ParentID is the shared parent for created pages. Empty means top
	// level.
	ParentID string
}

// Files returns all planned documents, linked first, in input order.
func (p *Plan) Files() []string {
	files := make([]string, 0, len(p.Linked)+len(p.Unlinked))
	files = append(files, p.Linked...)
	files = append(files, p.Unlinked...)
	return files
}

// Expand resolves the command line's mix of files, directories, and
// glob patterns into a list of markdown files. Directories contribute
// their immediate *.md entries. Literal paths are kept even when
// missing so the per-document error names them.
func Expand(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		info, err := os.Stat(pattern)
		switch {
		case err == nil && info.IsDir():
			matches, err := filepath.Glob(filepath.Join(pattern, "*.md"))
			if err != nil {
				return nil, fmt.Errorf("expand %s: %w", pattern, err)
			}
			sort.Strings(matches)
			files = append(files, matches...)
		case strings.ContainsAny(pattern, "*?["):
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("expand %s: %w", pattern, err)
			}
			sort.Strings(matches)
			files = append(files, matches...)
		default:
			files = append(files, pattern)
		}
	}
	return files, nil
}

// BuildPlan splits files into linked and unlinked and, when unlinked
// documents will be created, resolves their shared parent up front.
// Parent resolution happens before any remote mutation: a mismatch
// fails the whole run with zero pages created.
func (s *Syncer) BuildPlan(ctx context.Context, files []string, opts Options) (*Plan, error) {
	plan := &Plan{}
	for _, file := range files {
		doc, err := document.Load(file)
		if err != nil {
			// Unreadable documents stay in the worklist so their error
			// is reported per document, not swallowed at planning time.
			plan.Linked = append(plan.Linked, file)
			continue
		}
		if doc.Matter.Linked() {
			plan.Linked = append(plan.Linked, file)
		} else {
			plan.Unlinked = append(plan.Unlinked, file)
		}
	}

	if len(plan.Unlinked) == 0 || !opts.Create {
		return plan, nil
	}

	if opts.ParentID != "" {
		plan.ParentID = model.ParsePageRef(opts.ParentID)
		return plan, nil
	}

	// Infer the parent from linked siblings: creations join the level
	// their siblings live on. Siblings at the top level ("" parent)
	// make top-level creation the inferred outcome, which is valid.
	parents := make(map[string]bool)
	for _, file := range plan.Linked {
		doc, err := document.Load(file)
		if err != nil {
			continue
		}
		page, err := s.transport.FetchPage(ctx, doc.Matter.PageID)
		if err != nil {
			return nil, fmt.Errorf("resolve parent from %s: %w", file, err)
		}
		parents[page.ParentID] = true
	}

	if len(parents) > 1 {
		distinct := make([]string, 0, len(parents))
		for p := range parents {
			distinct = append(distinct, p)
		}
		sort.Strings(distinct)
		return nil, &ParentMismatchError{Parents: distinct}
	}
	for p := range parents {
		plan.ParentID = p
	}
	return plan, nil
}
