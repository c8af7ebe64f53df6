// Package ui holds the terminal output and prompt helpers. All styling
// lives here so the rest of the client stays free of ANSI concerns.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"prdpilot/pkg/types"
)

var out io.Writer = os.Stdout

// SetOutput redirects printed output, for tests.
func SetOutput(w io.Writer) {
	out = w
}

// Print writes to the configured output.
func Print(format string, v ...interface{}) {
	fmt.Fprintf(out, format, v...)
}

// IsTerminal reports whether stdin is an interactive terminal. The
// clarification loop refuses to start without one.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var (
	criticalBadge  = color.New(color.FgRed, color.Bold).SprintFunc()
	importantBadge = color.New(color.FgYellow).SprintFunc()
	optionalBadge  = color.New(color.FgCyan).SprintFunc()
	successMark    = color.New(color.FgGreen).SprintFunc()
	blockedMark    = color.New(color.Faint).SprintFunc()
	errorText      = color.New(color.FgRed).SprintFunc()
)

// PriorityBadge renders a colored tier label.
func PriorityBadge(p types.Priority) string {
	label := "[" + strings.ToUpper(string(p)) + "]"
	switch p {
	case types.PriorityCritical:
		return criticalBadge(label)
	case types.PriorityImportant:
		return importantBadge(label)
	case types.PriorityOptional:
		return optionalBadge(label)
	}
	return label
}

// StageMark renders a completion tick for a pipeline stage.
func StageMark(done bool) string {
	if done {
		return successMark("✔")
	}
	return blockedMark("·")
}

// Errorf prints an inline error message.
func Errorf(format string, v ...interface{}) {
	fmt.Fprintf(out, "%s\n", errorText(fmt.Sprintf(format, v...)))
}

var titleCaser = cases.Title(language.English)

// TitleCase capitalizes a section title for display. strings.Title is
// deprecated, hence x/text.
func TitleCase(s string) string {
	return titleCaser.String(s)
}
