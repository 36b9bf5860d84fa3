package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a path segment.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is NFC-normalized and trimmed. Names that
// would resolve to the current or parent directory come back empty.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(NFC(name))
	if name == "" {
		return ""
	}
	out := strings.TrimSpace(fileNameReplacer.Replace(name))
	if out == "." || out == ".." {
		return ""
	}
	return out
}

// NFC returns value in Unicode normalization form C. macOS file systems hand
// out decomposed names, so comparisons against user input go through here.
func NFC(value string) string {
	return norm.NFC.String(value)
}
