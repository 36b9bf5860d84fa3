package logging

import (
	"path/filepath"
	"strings"
)

// FormatSubject builds the component/file prefix used in console output,
// e.g. "batch · lecture_03.m4a".
func FormatSubject(component, file string) string {
	component = strings.TrimSpace(component)
	file = strings.TrimSpace(file)
	if file != "" {
		file = filepath.Base(file)
	}
	switch {
	case component != "" && file != "":
		return component + " · " + file
	case component != "":
		return component
	default:
		return file
	}
}
