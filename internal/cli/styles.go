// Package cli holds the terminal styling shared by the overdraw commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	primaryColor = lipgloss.Color("#D75F00") // overdrive orange
	accentColor  = lipgloss.Color("#FFAF00")
	mutedColor   = lipgloss.Color("#888888")
	textColor    = lipgloss.Color("#FFFFFF")
)

// Styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			MarginTop(1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	KeyStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor)
)

// PrintVersion prints the command name and version.
func PrintVersion(name, version string) {
	fmt.Println(TitleStyle.Render(name))
	fmt.Printf("%s %s\n", KeyStyle.Render("Version:"), ValueStyle.Render(version))
	fmt.Println()
}

// PrintError prints an error message to stderr.
func PrintError(message string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Error:"), message)
}

// Field is one row of a key-value summary.
type Field struct {
	Key   string
	Value string
}

// PrintSummary writes a titled key-value block with aligned keys.
func PrintSummary(w io.Writer, title string, fields []Field) {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.Key))
	}

	var sb strings.Builder
	sb.WriteString(SectionStyle.Render(title))
	sb.WriteString("\n")
	for _, f := range fields {
		sb.WriteString("  ")
		sb.WriteString(KeyStyle.Render(fmt.Sprintf("%-*s", width+1, f.Key+":")))
		sb.WriteString(" ")
		sb.WriteString(ValueStyle.Render(f.Value))
		sb.WriteString("\n")
	}
	fmt.Fprint(w, sb.String())
}
