// Package combine concatenates per-file transcripts into one output.
//
// Files are ordered by SortKey: the run of digits that ends the file stem.
// Numbered files come first in ascending numeric order with ties broken by
// path; files without a numeric suffix follow in lexical path order.
//
// Text output precedes each file with a "\n\n --<stem>-- \n\n" title marker.
// SRT output places a "--<stem>--" line before each file's cues and
// renumbers all cues from 1, keeping timing lines unchanged. A file that
// cannot be read is logged and skipped.
package combine
