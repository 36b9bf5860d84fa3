package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"mediascribe/internal/services"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const labelWidth = 16

var statusStyles = map[statusKind]struct {
	label  string
	colors text.Colors
}{
	statusInfo:  {"info", text.Colors{text.FgBlue}},
	statusOK:    {"ok", text.Colors{text.FgGreen}},
	statusWarn:  {"warn", text.Colors{text.FgYellow}},
	statusError: {"error", text.Colors{text.FgRed, text.Bold}},
}

// renderStatusLine formats "  Label:  [kind] message". Only the bracketed
// kind is colored so long paths stay readable.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusInfo]
	}
	tag := "[" + style.label + "]"
	if colorize {
		tag = style.colors.Sprint(tag)
	}
	line := fmt.Sprintf("  %-*s %s", labelWidth, label+":", tag)
	if message != "" {
		line += " " + message
	}
	return line
}

func renderSectionHeader(title string, colorize bool) []string {
	title = strings.TrimSpace(title)
	rule := strings.Repeat("─", text.RuneWidthWithoutEscSequences(title))
	if colorize {
		title = text.Colors{text.Bold}.Sprint(title)
	}
	return []string{title, rule}
}

// kindFor returns statusOK for a zero count and kind otherwise.
func kindFor(count int, kind statusKind) statusKind {
	if count == 0 {
		return statusOK
	}
	return kind
}

func outcomeKind(outcome string) statusKind {
	switch outcome {
	case services.OutcomeWritten:
		return statusOK
	case services.OutcomeSkipped:
		return statusWarn
	case services.OutcomeFailed:
		return statusError
	default:
		return statusInfo
	}
}

func shouldColorize(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
