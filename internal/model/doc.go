// Package model defines the core data structures shared across confsync.
//
// This package contains the following main types:
//   - RemotePage: A wiki page as returned by the remote store
//   - RemoteAttachment: A file attached to a remote page
//   - ImageReference: A local image embedded in a markdown document
//   - SyncResult: The per-document outcome of a sync run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (wiki, sync, report, history) need these
// types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
