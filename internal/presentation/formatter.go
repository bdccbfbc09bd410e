package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// ShortIDLength is the id prefix shown in build tables.
const ShortIDLength = 8

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	plain  bool
}

// NewFormatter creates a new formatter. plain disables colors.
func NewFormatter(writer io.Writer, plain bool) *Formatter {
	return &Formatter{
		writer: writer,
		plain:  plain,
	}
}

// FormatBuilds formats a list of builds as JSON
func (f *Formatter) FormatBuilds(builds []BuildDTO) error {
	return f.encode(builds)
}

// FormatBuild formats a single build as JSON
func (f *Formatter) FormatBuild(build BuildDTO) error {
	return f.encode(build)
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// BuildTable writes builds as an aligned table with short ids.
func (f *Formatter) BuildTable(builds []BuildDTO) error {
	header := []string{"ID", "CREATED", "KIND", "TOP ALG", "FILES", "JOB"}
	rows := make([][]string, 0, len(builds))
	for _, b := range builds {
		rows = append(rows, []string{
			shortID(b.ID),
			b.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			b.Kind,
			b.TopAlg,
			fmt.Sprint(len(b.Files)),
			b.Job,
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	if _, err := fmt.Fprintln(f.writer, paint(f.plain, headerStyle, joinCells(header, widths))); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintln(f.writer, joinCells(r, widths)); err != nil {
			return err
		}
	}
	return nil
}

func joinCells(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, c := range cells {
		if i == len(cells)-1 {
			padded[i] = c
			continue
		}
		padded[i] = runewidth.FillRight(c, widths[i])
	}
	return strings.Join(padded, "  ")
}

func shortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}
