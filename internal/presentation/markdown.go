package presentation

import (
	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/anpconf/internal/cut"
)

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Markdown renders markdown for the terminal.
type Markdown struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewMarkdown creates a renderer with the given wrap width and style
// ("dark", "light", "notty"). An empty style means "dark".
func NewMarkdown(width int, style string) (*Markdown, error) {
	if style == "" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Markdown{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (m *Markdown) Width() int {
	return m.width
}

// Render transforms markdown to styled terminal output.
func (m *Markdown) Render(markdown string) (string, error) {
	return m.renderer.Render(markdown)
}

// RenderCuts renders the markdown cut table under a heading.
func (m *Markdown) RenderCuts(title string, cuts []*cut.Item) (string, error) {
	doc := cut.AsMarkdown(cuts)
	if title != "" {
		doc = "## " + title + "\n\n" + doc
	}
	return m.Render(doc)
}
