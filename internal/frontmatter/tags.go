package frontmatter

import (
	"errors"
	"strings"

	"mediascribe/internal/textutil"
)

// TagsKey is the front matter key holding note tags.
const TagsKey = "tags"

// ErrEmptyTag is returned for a tag that is blank after normalization.
var ErrEmptyTag = errors.New("tag is empty")

// NormalizeTag trims whitespace and a leading '#' and returns the NFC form,
// so "#Crime" and "Crime" name the same tag.
func NormalizeTag(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	tag = strings.TrimSpace(strings.TrimLeft(tag, "#"))
	if tag == "" {
		return "", ErrEmptyTag
	}
	return textutil.NFC(tag), nil
}

// Tags returns the document's tags in order.
func (d *Document) Tags() []string {
	entry, ok := d.Lookup(TagsKey)
	if !ok {
		return nil
	}
	return entry.Values()
}

// HasTag reports whether tag is already present, ignoring a '#' prefix and
// Unicode normalization differences.
func (d *Document) HasTag(tag string) bool {
	want, err := NormalizeTag(tag)
	if err != nil {
		return false
	}
	for _, existing := range d.Tags() {
		if got, err := NormalizeTag(existing); err == nil && got == want {
			return true
		}
	}
	return false
}

// AddTag appends tag to the tags list. It reports false and leaves the
// document untouched when the tag is already there.
func (d *Document) AddTag(tag string) (bool, error) {
	normalized, err := NormalizeTag(tag)
	if err != nil {
		return false, err
	}
	if d.HasTag(normalized) {
		return false, nil
	}
	d.SetList(TagsKey, append(d.Tags(), normalized))
	return true, nil
}

// RemoveTag drops every occurrence of tag. An emptied tags list removes the
// key, and a front matter block left without keys is dropped.
func (d *Document) RemoveTag(tag string) (bool, error) {
	want, err := NormalizeTag(tag)
	if err != nil {
		return false, err
	}
	current := d.Tags()
	kept := make([]string, 0, len(current))
	for _, existing := range current {
		if got, err := NormalizeTag(existing); err == nil && got == want {
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) == len(current) {
		return false, nil
	}
	d.SetList(TagsKey, kept)
	return true, nil
}

// AddTag is a convenience wrapper returning the rewritten content.
func AddTag(content, tag string) (string, bool, error) {
	doc := Parse(content)
	changed, err := doc.AddTag(tag)
	if err != nil || !changed {
		return content, false, err
	}
	return doc.Render(), true, nil
}

// RemoveTag is a convenience wrapper returning the rewritten content.
func RemoveTag(content, tag string) (string, bool, error) {
	doc := Parse(content)
	changed, err := doc.RemoveTag(tag)
	if err != nil || !changed {
		return content, false, err
	}
	return doc.Render(), true, nil
}
