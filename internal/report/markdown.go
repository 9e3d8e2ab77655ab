package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/kemari/confsync/internal/model"
)

// MarkdownWriter outputs a shareable markdown summary of a put run.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation: type-safe tables and GitHub-flavored alerts
// without hand-assembled pipes and dashes.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the run summary in markdown format.
func (w *MarkdownWriter) Write(results []*model.SyncResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Sync Report")
	md.PlainText("")

	failed := failures(results)
	switch {
	case failed == len(results) && len(results) > 0:
		md.Warningf("All %d document(s) failed to synchronize.", failed)
	case failed > 0:
		md.Importantf("%d of %d document(s) failed to synchronize.", failed, len(results))
	default:
		md.Notef("All %d document(s) synchronized successfully.", len(results))
	}
	md.PlainText("")

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			"`" + r.File + "`",
			r.PageID,
			r.ActionName,
			versionRange(r),
			r.ErrorMessage,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Document", "Page", "Action", "Version", "Error"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}

// versionRange renders the version movement of one result.
func versionRange(r *model.SyncResult) string {
	switch {
	case r.FromVersion > 0 && r.ToVersion > 0 && r.FromVersion != r.ToVersion:
		return fmt.Sprintf("%d -> %d", r.FromVersion, r.ToVersion)
	case r.ToVersion > 0:
		return strconv.Itoa(r.ToVersion)
	default:
		return ""
	}
}
