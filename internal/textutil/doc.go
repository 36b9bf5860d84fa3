// Package textutil holds the small string helpers shared by the scanner,
// the writer and the tagger: Unicode normalization and file-name
// sanitization for category folders.
package textutil
