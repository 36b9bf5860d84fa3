package frontmatter

import (
	"strconv"
	"strings"
)

const (
	delimiter = "---"
	bom       = "\ufeff"
)

// Entry is one top-level key with its value.
type Entry struct {
	Key    string
	Scalar string
	List   []string
	IsList bool

	// raw holds the original lines, terminators included. It is dropped when
	// the entry is edited so Render serializes the value instead.
	raw []string
}

// Values returns the entry as a list. A scalar yields its comma-separated
// parts; an empty scalar yields nil.
func (e Entry) Values() []string {
	if e.IsList {
		return e.List
	}
	var out []string
	for part := range strings.SplitSeq(e.Scalar, ",") {
		if part = unquote(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Document is a note split into front matter and body.
type Document struct {
	Entries []Entry
	Body    string

	present bool
	prefix  string
	newline string
}

// HasFrontMatter reports whether the document carries a front matter block.
func (d *Document) HasFrontMatter() bool {
	return d.present
}

// Lookup returns the entry for key.
func (d *Document) Lookup(key string) (Entry, bool) {
	if i := d.index(key); i >= 0 {
		return d.Entries[i], true
	}
	return Entry{}, false
}

// SetList replaces key with a block list, appending the key when absent.
// An empty list removes the key.
func (d *Document) SetList(key string, values []string) {
	i := d.index(key)
	if len(values) == 0 {
		if i >= 0 {
			d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
		}
		return
	}
	entry := Entry{Key: key, List: append([]string(nil), values...), IsList: true}
	if i >= 0 {
		d.Entries[i] = entry
	} else {
		d.Entries = append(d.Entries, entry)
	}
	d.present = true
}

func (d *Document) index(key string) int {
	for i, e := range d.Entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Parse splits content into front matter and body. Content without a
// leading "---" line, or with an unterminated block, has no front matter
// and is kept whole as the body.
func Parse(content string) *Document {
	doc := &Document{Body: content, newline: "\n"}
	rest := content
	if strings.HasPrefix(rest, bom) {
		doc.prefix = bom
		rest = rest[len(bom):]
	}

	lines := splitLines(rest)
	if len(lines) == 0 || trimEOL(lines[0]) != delimiter {
		doc.prefix = ""
		return doc
	}
	if strings.HasSuffix(lines[0], "\r\n") {
		doc.newline = "\r\n"
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if trimEOL(lines[i]) == delimiter {
			closing = i
			break
		}
	}
	if closing < 0 {
		doc.prefix = ""
		doc.newline = "\n"
		return doc
	}

	doc.present = true
	doc.Entries = parseEntries(lines[1:closing])
	doc.Body = strings.Join(lines[closing+1:], "")
	return doc
}

// Render serializes the document. A document whose front matter ended up
// empty is rendered as its body alone.
func (d *Document) Render() string {
	if !d.present || len(d.Entries) == 0 {
		return d.prefix + d.Body
	}
	nl := d.newline
	var b strings.Builder
	b.WriteString(d.prefix)
	b.WriteString(delimiter + nl)
	for _, e := range d.Entries {
		if e.raw != nil {
			for _, line := range e.raw {
				b.WriteString(line)
			}
			if last := e.raw[len(e.raw)-1]; !strings.HasSuffix(last, "\n") {
				b.WriteString(nl)
			}
			continue
		}
		b.WriteString(e.Key + ":")
		if e.IsList {
			b.WriteString(nl)
			for _, v := range e.List {
				b.WriteString("  - " + quote(v) + nl)
			}
			continue
		}
		if e.Scalar != "" {
			b.WriteString(" " + quote(e.Scalar))
		}
		b.WriteString(nl)
	}
	b.WriteString(delimiter + nl)
	b.WriteString(d.Body)
	return b.String()
}

func parseEntries(lines []string) []Entry {
	var entries []Entry
	for _, line := range lines {
		if key, value, ok := keyLine(line); ok {
			entries = append(entries, Entry{Key: key, Scalar: value, raw: []string{line}})
			continue
		}
		if len(entries) == 0 {
			// Comments or blank lines ahead of the first key.
			entries = append(entries, Entry{raw: []string{line}})
			continue
		}
		last := &entries[len(entries)-1]
		last.raw = append(last.raw, line)
	}
	for i := range entries {
		entries[i].decode()
	}
	return entries
}

func (e *Entry) decode() {
	if e.Key == "" {
		return
	}
	value := strings.TrimSpace(e.Scalar)
	switch {
	case value == "" && len(e.raw) > 1:
		var items []string
		for _, line := range e.raw[1:] {
			trimmed := strings.TrimSpace(trimEOL(line))
			item, ok := strings.CutPrefix(trimmed, "-")
			if !ok {
				continue
			}
			if item = unquote(strings.TrimSpace(item)); item != "" {
				items = append(items, item)
			}
		}
		e.List, e.IsList, e.Scalar = items, true, ""
	case strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]"):
		inner := strings.TrimSpace(value[1 : len(value)-1])
		var items []string
		if inner != "" {
			for part := range strings.SplitSeq(inner, ",") {
				if part = unquote(strings.TrimSpace(part)); part != "" {
					items = append(items, part)
				}
			}
		}
		e.List, e.IsList, e.Scalar = items, true, ""
	default:
		e.Scalar = unquote(value)
	}
}

// keyLine recognizes an unindented "key: value" line.
func keyLine(line string) (string, string, bool) {
	text := trimEOL(line)
	if text == "" || text[0] == ' ' || text[0] == '\t' || text[0] == '#' || text[0] == '-' {
		return "", "", false
	}
	key, value, ok := strings.Cut(text, ":")
	if !ok {
		return "", "", false
	}
	if value != "" && value[0] != ' ' && value[0] != '\t' {
		// "http://..." style scalars are not keys.
		return "", "", false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.SplitAfter(s, "\n")
}

func trimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}

func unquote(value string) string {
	if len(value) < 2 {
		return value
	}
	switch {
	case value[0] == '"' && value[len(value)-1] == '"':
		if s, err := strconv.Unquote(value); err == nil {
			return s
		}
		return value[1 : len(value)-1]
	case value[0] == '\'' && value[len(value)-1] == '\'':
		return strings.ReplaceAll(value[1:len(value)-1], "''", "'")
	}
	return value
}

func quote(value string) string {
	if needsQuote(value) {
		return strconv.Quote(value)
	}
	return value
}

func needsQuote(value string) bool {
	if value == "" || strings.TrimSpace(value) != value {
		return true
	}
	if strings.ContainsAny(value[:1], "[]{}&*!|>'\"%@`#,?:-") {
		return true
	}
	if strings.Contains(value, ": ") || strings.Contains(value, " #") {
		return true
	}
	switch strings.ToLower(value) {
	case "true", "false", "yes", "no", "null", "~", "on", "off":
		return true
	}
	return false
}
