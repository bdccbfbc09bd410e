package cut

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"
)

const minNameWidth = 4

func nameWidth(cuts []*Item) int {
	w := minNameWidth
	for _, c := range cuts {
		if c == nil {
			continue
		}
		w = max(w, runewidth.StringWidth(c.name))
	}
	return w
}

// AsLatex renders cuts as a two-column LaTeX table of names and
// definitions. A nil slice renders as "".
func AsLatex(cuts []*Item) string {
	if cuts == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\\resizebox{1.0\\textwidth}{!}{\n")
	sb.WriteString("\\begin{tabular}{|l|l|}\n")
	sb.WriteString("\\hline\n")
	sb.WriteString("Name & Definition\\\\\n")
	sb.WriteString("\\hline\n")

	w := nameWidth(cuts)
	for _, c := range cuts {
		if c == nil {
			continue
		}
		fmt.Fprintf(&sb, "%s & $%s$\\\\\n", runewidth.FillRight(c.name, w), strings.ReplaceAll(c.conf, "&", "\\&"))
	}

	sb.WriteString("\\hline\n")
	sb.WriteString("\\end{tabular}}\n")
	return sb.String()
}

// WriteLatex writes AsLatex(cuts) to path.
func WriteLatex(path string, cuts []*Item) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(AsLatex(cuts)), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// AsMarkdown renders cuts as a Markdown table with aligned name cells.
func AsMarkdown(cuts []*Item) string {
	w := nameWidth(cuts)

	var sb strings.Builder
	fmt.Fprintf(&sb, "| %s | Definition |\n", runewidth.FillRight("Name", w))
	fmt.Fprintf(&sb, "|%s|------------|\n", strings.Repeat("-", w+2))
	for _, c := range cuts {
		if c == nil {
			continue
		}
		conf := strings.ReplaceAll(c.conf, "|", "\\|")
		fmt.Fprintf(&sb, "| %s | `%s` |\n", runewidth.FillRight(c.name, w), conf)
	}
	return sb.String()
}
