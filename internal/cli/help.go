package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
)

// Help styles
var (
	helpDescStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Italic(true).
			MarginBottom(1)

	helpFlagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AA00")).
			Bold(true)

	helpArgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAAA")).
			Bold(true)

	helpDefaultStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true)
)

// StyledHelpPrinter returns a kong help printer that renders the usage,
// arguments and flags with the command palette.
func StyledHelpPrinter(title, description string) kong.HelpPrinter {
	return func(options kong.HelpOptions, ctx *kong.Context) error {
		var sb strings.Builder

		sb.WriteString(TitleStyle.Render(title))
		sb.WriteString("\n")
		sb.WriteString(helpDescStyle.Render(description))
		sb.WriteString("\n")

		sb.WriteString(SectionStyle.Render("Usage:"))
		sb.WriteString("\n  ")
		sb.WriteString(ctx.Model.Name + " " + ctx.Model.Summary())
		sb.WriteString("\n")

		if args := arguments(ctx); len(args) > 0 {
			sb.WriteString("\n")
			sb.WriteString(SectionStyle.Render("Arguments:"))
			sb.WriteString("\n")
			for _, arg := range args {
				sb.WriteString("  ")
				sb.WriteString(helpArgStyle.Render(arg.name))
				if arg.help != "" {
					sb.WriteString("  ")
					sb.WriteString(arg.help)
				}
				sb.WriteString("\n")
			}
		}

		if flags := flagRows(ctx); len(flags) > 0 {
			sb.WriteString("\n")
			sb.WriteString(SectionStyle.Render("Flags:"))
			sb.WriteString("\n")
			for _, f := range flags {
				sb.WriteString("  ")
				sb.WriteString(helpFlagStyle.Render(f.flags))
				if f.help != "" {
					sb.WriteString("  ")
					sb.WriteString(f.help)
				}
				if f.defaultVal != "" {
					sb.WriteString(" ")
					sb.WriteString(helpDefaultStyle.Render("(default: " + f.defaultVal + ")"))
				}
				sb.WriteString("\n")
			}
		}

		sb.WriteString("\n")
		fmt.Fprint(ctx.Stdout, sb.String())
		return nil
	}
}

type argument struct {
	name string
	help string
}

type flagRow struct {
	flags      string
	help       string
	defaultVal string
}

func arguments(ctx *kong.Context) []argument {
	var args []argument
	for _, arg := range ctx.Model.Node.Positional {
		args = append(args, argument{name: arg.Summary(), help: arg.Help})
	}
	return args
}

func flagRows(ctx *kong.Context) []flagRow {
	rows := []flagRow{{flags: "-h, --help", help: "Show context-sensitive help."}}

	for _, f := range ctx.Model.Node.Flags {
		if f.Name == "help" {
			continue
		}

		var names string
		if f.Short != 0 {
			names = fmt.Sprintf("-%c, --%s", f.Short, f.Name)
		} else {
			names = "--" + f.Name
		}
		if !f.IsBool() && f.PlaceHolder != "" {
			names += "=" + strings.ToUpper(f.PlaceHolder)
		}

		rows = append(rows, flagRow{
			flags:      names,
			help:       f.Help,
			defaultVal: f.Default,
		})
	}
	return rows
}
