// Package history persists a journal of sync runs in SQLite.
//
// Every put outcome is recorded as one row: which file, which page,
// what action was taken, and the version transition. The journal is how
// "what happened to this document" questions get answered after the
// fact, without trusting the front matter of a file that may have been
// edited since.
package history
