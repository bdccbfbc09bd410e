package presentation

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/anpconf/internal/registry"
)

const (
	branchMid  = "├── "
	branchLast = "└── "
	indentMid  = "│   "
	indentLast = "    "

	// minValueWidth keeps narrow terminals from wrapping every character.
	minValueWidth = 20
)

// TreeOptions configures RenderTree.
type TreeOptions struct {
	// Width wraps long values; 0 disables wrapping.
	Width int
	// Plain disables colors.
	Plain bool
}

// RenderTree draws reg as a tree, one entry per line. Nested registries
// open a branch; values longer than the available width wrap at spaces,
// commas and dashes under their key.
func RenderTree(title string, reg *registry.Registry, opts TreeOptions) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(paint(opts.Plain, keyStyle, title))
		sb.WriteString("\n")
	}
	if reg != nil {
		renderEntries(&sb, reg, "", opts)
	}
	return sb.String()
}

func renderEntries(sb *strings.Builder, reg *registry.Registry, prefix string, opts TreeOptions) {
	entries := reg.Entries()
	for i, e := range entries {
		last := i == len(entries)-1
		branch, indent := branchMid, indentMid
		if last {
			branch, indent = branchLast, indentLast
		}

		sb.WriteString(paint(opts.Plain, branchStyle, prefix+branch))
		sb.WriteString(paint(opts.Plain, keyStyle, e.Key))

		if e.Kind == registry.KindRegistry {
			sb.WriteString("\n")
			renderEntries(sb, e.Reg, prefix+indent, opts)
			continue
		}

		sb.WriteString(" = ")
		lead := runewidth.StringWidth(prefix+branch+e.Key) + len(" = ")
		lines := wrapValue(e.Text, opts.Width-lead)
		style := valueStyle
		if e.Kind == registry.KindNumber {
			style = numberStyle
		}
		for j, line := range lines {
			if j > 0 {
				sb.WriteString("\n")
				sb.WriteString(paint(opts.Plain, branchStyle, prefix+indent))
				sb.WriteString(strings.Repeat(" ", lead-runewidth.StringWidth(prefix+indent)))
			}
			sb.WriteString(paint(opts.Plain, style, line))
		}
		sb.WriteString("\n")
	}
}

func wrapValue(text string, width int) []string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return []string{text}
	}
	if width < minValueWidth {
		width = minValueWidth
	}
	w := wordwrap.NewWriter(width)
	w.Breakpoints = []rune{'-', ','}
	_, _ = w.Write([]byte(text))
	_ = w.Close()
	return strings.Split(w.String(), "\n")
}
