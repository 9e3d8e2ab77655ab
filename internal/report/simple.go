package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/kemari/confsync/internal/model"
)

// SimpleWriter outputs human-readable text, one line per document.
//
// Design decision: We use plain text without ANSI colors because:
//  1. It works in all terminals without compatibility issues
//  2. It's easier to pipe to files or other tools
type SimpleWriter struct {
	baseWriter

	// verbose adds the per-document detail line when present.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the per-document detail output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders one line per result plus a batch summary.
func (w *SimpleWriter) Write(results []*model.SyncResult) (int, error) {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(w.formatResult(r))
	}
	if len(results) > 1 {
		fmt.Fprintf(&b, "\nProcessed %d document(s), %d failed\n",
			len(results), failures(results))
	}
	return io.WriteString(w.output, b.String())
}

func (w *SimpleWriter) formatResult(r *model.SyncResult) string {
	var b strings.Builder
	if !r.OK() {
		fmt.Fprintf(&b, "FAIL %s: %s\n", r.File, r.ErrorMessage)
		return b.String()
	}

	switch r.Action {
	case model.ActionPush:
		fmt.Fprintf(&b, "pushed %s (version %d -> %d)\n", r.File, r.FromVersion, r.ToVersion)
	case model.ActionPull:
		fmt.Fprintf(&b, "pulled version %d to %s\n", r.ToVersion, r.File)
	case model.ActionCreate:
		fmt.Fprintf(&b, "created page %s for %s\n", r.PageID, r.File)
	case model.ActionNoOp:
		fmt.Fprintf(&b, "%s: already in sync\n", r.File)
	case model.ActionStatus:
		fmt.Fprintf(&b, "%s: %s\n", r.File, r.Detail)
		return b.String()
	case model.ActionDiff:
		if r.Detail == "" {
			fmt.Fprintf(&b, "%s: no content differences\n", r.File)
		} else {
			fmt.Fprintf(&b, "diff for %s:\n%s\n", r.File, r.Detail)
		}
		return b.String()
	default:
		fmt.Fprintf(&b, "%s: %s\n", r.File, r.ActionName)
	}

	if w.verbose && r.Detail != "" {
		fmt.Fprintf(&b, "  %s\n", r.Detail)
	}
	return b.String()
}
