// Package report renders the outcome of a put run.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: A shareable markdown summary
//
// Writers implement the Writer interface so the command layer can pick
// a format, or compose several with MultiWriter, without the result
// types knowing about presentation. The package also renders unified
// diffs for the --diff inspection mode.
package report
