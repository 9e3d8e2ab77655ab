// Package sync is the engine that keeps local markdown documents
// consistent with their remote pages.
//
// Each document carries its own synchronization point in front matter:
// the remote version and content hash recorded after the last push or
// pull. Comparing the current local hash and the current remote version
// against that point classifies drift into exactly one of no-op, push,
// pull, or conflict; unlinked documents are routed to creation instead.
// The classification is computed once per document as a Decision and
// acted on by the Syncer, so the drift table lives in one place.
//
// Documents in a batch are independent. The Runner executes them with a
// bounded worker pool, and a failure in one never aborts its siblings.
// A document's front matter is rewritten only after the corresponding
// remote mutation is confirmed, so an interrupted run retries cleanly.
package sync
