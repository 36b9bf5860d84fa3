// Package frontmatter parses and rewrites the YAML front matter block at the
// top of Markdown notes.
//
// Only the top-level shape is interpreted: an ordered list of keys, each
// holding a scalar or a list. Entries that are not edited are written back
// byte for byte, so tagging a note never reformats its other metadata. The
// tags key is normalized to a block list whenever it changes.
package frontmatter
