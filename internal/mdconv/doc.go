// Package mdconv converts between markdown and the remote wiki's XHTML
// storage format.
//
// The conversion is deliberately asymmetric. Pushing renders markdown to
// XHTML and then rewrites fenced code blocks, [TOC] markers, and local
// image references into the wiki's macro vocabulary. Pulling reverses
// the macros with targeted rewrites first, then walks the remaining
// XHTML with a tokenizer to rebuild plain markdown.
//
// Round-tripping is stable for the supported constructs but not
// byte-exact for arbitrary input: the wiki editor normalizes markup, so
// the pull side aims for clean idiomatic markdown rather than perfect
// reconstruction.
package mdconv
