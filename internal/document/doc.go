// Package document reads and writes local markdown documents and the
// sync metadata block embedded at their head.
//
// The front matter is the system of record for synchronization state:
// the linked page ID, the last synchronized remote version, the content
// hash recorded at that point, and the per-image hash map. A document
// with no pageId has never been created remotely.
//
// Saving is an explicit parse → mutate → atomic-rewrite cycle: the whole
// file is rewritten through a temporary file and rename so a crash
// mid-write cannot leave a half-written document. The body is preserved
// byte-for-byte; only the metadata block is regenerated.
package document
