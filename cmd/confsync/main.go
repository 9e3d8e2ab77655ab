// Package main provides the entry point for the confsync CLI.
//
// confsync keeps local markdown documents in sync with pages in a
// Confluence-style wiki. Documents carry their link to the remote page
// in YAML front matter; the put command pushes, pulls, or reports
// conflicts depending on which side changed.
//
// Usage:
//
//	confsync put docs/guide.md
//	confsync put --create --parent 123456 docs/
//
// See --help for all available options.
package main

// main is the entry point for confsync.
func main() {
	Execute()
}
