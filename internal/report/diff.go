package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// UnifiedDiff renders a line-based diff between two texts in the
// familiar ---/+++ format. Returns "" when the texts are identical, so
// callers can report "no differences" distinctly.
func UnifiedDiff(aName, bName, a, b string) string {
	if a == b {
		return ""
	}

	dmp := diffmatchpatch.New()
	// Line mode: diff over line tokens, then expand back, so output is
	// whole added/removed lines rather than character twiddles.
	chars1, chars2, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lines)

	var out strings.Builder
	out.WriteString("--- " + aName + "\n")
	out.WriteString("+++ " + bName + "\n")
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range splitLines(d.Text) {
			out.WriteString(prefix + line + "\n")
		}
	}
	return strings.TrimRight(out.String(), "\n")
}

// splitLines splits text into lines without a trailing empty element.
func splitLines(text string) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	return lines
}
