// Package wiki is the REST client for the remote document store.
//
// The client speaks the content API: pages, attachments, and labels.
// Every mutation that races with concurrent editors is guarded by the
// remote's optimistic versioning; an update that names a stale version
// is rejected server-side and surfaces here as a VersionConflictError
// rather than being retried blindly.
//
// Transient failures (timeouts, 429, 5xx) are retried with exponential
// backoff up to a configured bound. Client errors other than 429 are
// never retried; resending a bad request cannot make it valid.
package wiki
